package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
func Validate(cfg *Config) error {
	if cfg.Evaluator.BaseURL == "" {
		return fmt.Errorf("evaluator.base_url cannot be empty")
	}
	if u, err := url.Parse(cfg.Evaluator.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("evaluator.base_url %q is not a valid URL", cfg.Evaluator.BaseURL)
	}
	if cfg.Evaluator.Timeout <= 0 {
		return fmt.Errorf("evaluator.timeout must be positive")
	}

	if cfg.Engine.ConditionTimeout <= 0 {
		return fmt.Errorf("engine.condition_timeout must be positive")
	}
	if cfg.Engine.ConditionTimeout > cfg.Evaluator.Timeout {
		return fmt.Errorf("engine.condition_timeout (%s) cannot exceed evaluator.timeout (%s)",
			cfg.Engine.ConditionTimeout, cfg.Evaluator.Timeout)
	}
	if cfg.Engine.MaxConcurrent <= 0 {
		return fmt.Errorf("engine.max_concurrent must be positive")
	}
	if cfg.Engine.RetryUnavailable != nil && *cfg.Engine.RetryUnavailable < 0 {
		return fmt.Errorf("engine.retry_unavailable cannot be negative")
	}
	if cfg.Engine.RetryBackoff < 0 {
		return fmt.Errorf("engine.retry_backoff cannot be negative")
	}

	if cfg.Policy.Path == "" {
		return fmt.Errorf("policy.path cannot be empty")
	}

	if cfg.Audit.Enabled == nil || *cfg.Audit.Enabled {
		if cfg.Audit.DBPath == "" {
			return fmt.Errorf("audit.db_path cannot be empty when audit is enabled")
		}
		if cfg.Audit.RetentionDays <= 0 {
			return fmt.Errorf("audit.retention_days must be positive")
		}
		if cfg.Audit.MaxRecords < 0 {
			return fmt.Errorf("audit.max_records cannot be negative")
		}
		if cfg.Audit.PruneSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Audit.PruneSchedule); err != nil {
				return fmt.Errorf("audit.prune_schedule %q is not a valid cron expression: %w",
					cfg.Audit.PruneSchedule, err)
			}
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is invalid (want debug, info, warn, or error)", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is invalid (want json or text)", cfg.Logging.Format)
	}

	return nil
}
