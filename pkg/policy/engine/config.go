package engine

import (
	"fmt"
	"time"
)

// Config contains configuration for the policy evaluation engine.
type Config struct {
	// ConditionTimeout is the deadline applied to each condition's remote
	// call. Each retry attempt gets a fresh deadline.
	// Default: 10s.
	ConditionTimeout time.Duration

	// MaxConcurrent bounds how many condition evaluations may be in
	// flight at once within a single Evaluate call.
	// Default: 4.
	MaxConcurrent int

	// RetryUnavailable is the number of additional attempts made when a
	// condition fails with an unavailable (connection/timeout) error.
	// Rejected and malformed responses are deterministic and never
	// retried. Default: 1.
	RetryUnavailable int

	// RetryBackoff is the wait before a retry attempt.
	// Default: 500ms.
	RetryBackoff time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		ConditionTimeout: 10 * time.Second,
		MaxConcurrent:    4,
		RetryUnavailable: 1,
		RetryBackoff:     500 * time.Millisecond,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.ConditionTimeout <= 0 {
		return fmt.Errorf("%w: condition timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("%w: max concurrent must be positive", ErrInvalidConfig)
	}
	if c.RetryUnavailable < 0 {
		return fmt.Errorf("%w: retry count cannot be negative", ErrInvalidConfig)
	}
	if c.RetryUnavailable > 0 && c.RetryBackoff < 0 {
		return fmt.Errorf("%w: retry backoff cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// WithConditionTimeout sets the per-condition timeout.
func (c *Config) WithConditionTimeout(timeout time.Duration) *Config {
	c.ConditionTimeout = timeout
	return c
}

// WithMaxConcurrent sets the in-flight condition bound.
func (c *Config) WithMaxConcurrent(n int) *Config {
	c.MaxConcurrent = n
	return c
}

// WithRetry sets the unavailable-retry count and backoff.
func (c *Config) WithRetry(attempts int, backoff time.Duration) *Config {
	c.RetryUnavailable = attempts
	c.RetryBackoff = backoff
	return c
}
