package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFile loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// Load for that.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Load loads configuration from a YAML file and applies SENTINEL_*
// environment variable overrides. Environment variables always take
// precedence over file values.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Variables
// use the format SENTINEL_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SENTINEL_EVALUATOR_BASE_URL"); val != "" {
		cfg.Evaluator.BaseURL = val
	}
	if val := os.Getenv("SENTINEL_EVALUATOR_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Evaluator.Timeout = d
		}
	}

	if val := os.Getenv("SENTINEL_ENGINE_CONDITION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ConditionTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_ENGINE_MAX_CONCURRENT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxConcurrent = n
		}
	}
	if val := os.Getenv("SENTINEL_ENGINE_RETRY_UNAVAILABLE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Engine.RetryUnavailable = &n
		}
	}
	if val := os.Getenv("SENTINEL_ENGINE_RETRY_BACKOFF"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.RetryBackoff = d
		}
	}

	if val := os.Getenv("SENTINEL_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}
	if val := os.Getenv("SENTINEL_POLICY_VERSION"); val != "" {
		cfg.Policy.Version = val
	}

	if val := os.Getenv("SENTINEL_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("SENTINEL_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}

	if val := os.Getenv("SENTINEL_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SENTINEL_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
