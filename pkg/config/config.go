package config

import "time"

// Config is the root configuration structure for the Sentinel policy
// evaluation service.
type Config struct {
	// Evaluator configures the remote evaluation service clients.
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// Engine configures condition timeouts, concurrency, and retries.
	Engine EngineConfig `yaml:"engine"`

	// Policy configures the policy document source.
	Policy PolicyConfig `yaml:"policy"`

	// Audit configures the evaluation audit store.
	Audit AuditConfig `yaml:"audit"`

	// Metrics configures Prometheus metric naming.
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// EvaluatorConfig configures the HTTP clients for the remote evaluation
// service.
type EvaluatorConfig struct {
	// BaseURL is the evaluation service base URL.
	// Default: "http://localhost:8000".
	BaseURL string `yaml:"base_url"`

	// Timeout is the backstop HTTP client timeout. The per-condition
	// deadline in EngineConfig usually governs. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns bounds the connection pool. Default: 10.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost bounds per-host idle connections. Default: 10.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept. Default: 90s.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// EngineConfig configures the policy evaluation engine.
type EngineConfig struct {
	// ConditionTimeout is the deadline for each condition's remote call.
	// Default: 10s.
	ConditionTimeout time.Duration `yaml:"condition_timeout"`

	// MaxConcurrent bounds in-flight condition evaluations per call.
	// Default: 4.
	MaxConcurrent int `yaml:"max_concurrent"`

	// RetryUnavailable is the number of retries for unavailable
	// (connection/timeout) failures. An explicit 0 disables retries;
	// leaving it unset defaults to 1.
	RetryUnavailable *int `yaml:"retry_unavailable"`

	// RetryBackoff is the wait before a retry attempt. Default: 500ms.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// PolicyConfig configures the policy document source.
type PolicyConfig struct {
	// Path is the policy file or directory.
	// Default: "./policies".
	Path string `yaml:"path"`

	// Version is the policy schema version reported in evaluation
	// contexts. Default: "1.0.0".
	Version string `yaml:"version"`

	// Watch enables hot reload of policy files. Default: false.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the watcher's quiet period. Default: 100ms.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// AuditConfig configures the evaluation audit store.
type AuditConfig struct {
	// Enabled turns audit persistence on. An explicit false disables it;
	// leaving it unset defaults to true.
	Enabled *bool `yaml:"enabled"`

	// DBPath is the SQLite database file. Default: "./sentinel-audit.db".
	DBPath string `yaml:"db_path"`

	// RetentionDays is how long audit records are kept. Records older
	// than this are pruned. Default: 90.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the audit store size; the oldest records beyond
	// the cap are pruned. 0 disables the cap. Default: 0.
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables the
	// scheduler. Default: "0 3 * * *".
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig configures Prometheus metric naming.
type MetricsConfig struct {
	// Enabled turns metric collection on. An explicit false disables it;
	// leaving it unset defaults to true.
	Enabled *bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "sentinel".
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label. Default: "policy".
	Subsystem string `yaml:"subsystem"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info".
	Level string `yaml:"level"`

	// Format selects "json" or "text" output. Default: "json".
	Format string `yaml:"format"`
}
