package config

import "time"

// Default configuration values.
const (
	DefaultEvaluatorBaseURL = "http://localhost:8000"
	DefaultEvaluatorTimeout = 30 * time.Second
	DefaultConditionTimeout = 10 * time.Second
	DefaultMaxConcurrent    = 4
	DefaultRetryUnavailable = 1
	DefaultRetryBackoff     = 500 * time.Millisecond
	DefaultPolicyPath       = "./policies"
	DefaultPolicyVersion    = "1.0.0"
	DefaultAuditDBPath      = "./sentinel-audit.db"
	DefaultRetentionDays    = 90
	DefaultPruneSchedule    = "0 3 * * *"
	DefaultMetricsNamespace = "sentinel"
	DefaultMetricsSubsystem = "policy"
)

// NewDefault returns a configuration populated entirely with defaults.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Evaluator.BaseURL == "" {
		cfg.Evaluator.BaseURL = DefaultEvaluatorBaseURL
	}
	if cfg.Evaluator.Timeout == 0 {
		cfg.Evaluator.Timeout = DefaultEvaluatorTimeout
	}
	if cfg.Evaluator.MaxIdleConns == 0 {
		cfg.Evaluator.MaxIdleConns = 10
	}
	if cfg.Evaluator.MaxIdleConnsPerHost == 0 {
		cfg.Evaluator.MaxIdleConnsPerHost = 10
	}
	if cfg.Evaluator.IdleConnTimeout == 0 {
		cfg.Evaluator.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Engine.ConditionTimeout == 0 {
		cfg.Engine.ConditionTimeout = DefaultConditionTimeout
	}
	if cfg.Engine.MaxConcurrent == 0 {
		cfg.Engine.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Engine.RetryUnavailable == nil {
		n := DefaultRetryUnavailable
		cfg.Engine.RetryUnavailable = &n
	}
	if cfg.Engine.RetryBackoff == 0 {
		cfg.Engine.RetryBackoff = DefaultRetryBackoff
	}

	if cfg.Policy.Path == "" {
		cfg.Policy.Path = DefaultPolicyPath
	}
	if cfg.Policy.Version == "" {
		cfg.Policy.Version = DefaultPolicyVersion
	}
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = 100 * time.Millisecond
	}

	if cfg.Audit.Enabled == nil {
		enabled := true
		cfg.Audit.Enabled = &enabled
	}
	if cfg.Audit.DBPath == "" {
		cfg.Audit.DBPath = DefaultAuditDBPath
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Metrics.Enabled == nil {
		enabled := true
		cfg.Metrics.Enabled = &enabled
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
