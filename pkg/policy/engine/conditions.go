package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sentinel-hq/sentinel/pkg/evaluators"
	"sentinel-hq/sentinel/pkg/policy"
)

// ConditionRunner evaluates one condition against content through the
// registry, enforcing the per-condition timeout and classifying failures.
//
// Every failure path yields passed=false. Unavailable errors (connection
// failures and timeouts) are retried up to the configured count with a
// fresh deadline per attempt; rejected and malformed responses are
// deterministic and returned immediately.
type ConditionRunner struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
}

// NewConditionRunner creates a condition runner.
func NewConditionRunner(registry *Registry, config *Config, logger *slog.Logger) *ConditionRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionRunner{
		registry: registry,
		config:   config,
		logger:   logger.With("component", "engine.conditions"),
	}
}

// Run evaluates a single condition. It never returns an error: failures
// are modeled in the outcome so the engine always completes the run. The
// caller is responsible for checking ctx after Run to distinguish
// cancellation of the whole evaluation.
func (r *ConditionRunner) Run(ctx context.Context, cond policy.Condition, content string) ConditionOutcome {
	client, known := r.registry.Resolve(cond.Name)
	if !known {
		// Sentinel outcome: no network call, can never pass.
		r.logger.Warn("unknown condition", "condition", cond.Name)
		return ConditionOutcome{
			Name:    cond.Name,
			Passed:  false,
			Errored: true,
			Error:   "unknown condition",
			Details: map[string]any{"unknown_condition": true},
		}
	}

	outcome := ConditionOutcome{Name: cond.Name}
	attempts := 1 + r.config.RetryUnavailable

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			r.logger.Debug("retrying condition",
				"condition", cond.Name,
				"attempt", attempt+1,
				"backoff", r.config.RetryBackoff,
			)
			select {
			case <-ctx.Done():
				outcome.Passed = false
				outcome.Errored = true
				outcome.Error = ctx.Err().Error()
				return outcome
			case <-time.After(r.config.RetryBackoff):
			}
		}

		condCtx, cancel := context.WithTimeout(ctx, r.config.ConditionTimeout)
		start := time.Now()
		verdict, err := client.Evaluate(condCtx, content, cond.Parameters)
		elapsed := time.Since(start)
		cancel()

		outcome.Latencies = append(outcome.Latencies, elapsed)

		if err == nil {
			outcome.Passed = verdict.Passed
			outcome.Errored = false
			outcome.Error = ""
			outcome.Score = verdict.Score
			outcome.Details = verdict.Details
			return outcome
		}

		outcome.Passed = false
		outcome.Errored = true
		outcome.Error = err.Error()
		if !r.classify(&outcome, cond.Name, err) {
			return outcome
		}
		// Retry-eligible; fall through if attempts remain.
		if ctx.Err() != nil {
			return outcome
		}
	}

	r.logger.Warn("condition failed after retries",
		"condition", cond.Name,
		"attempts", len(outcome.Latencies),
		"error", outcome.Error,
	)
	return outcome
}

// classify maps an evaluation error onto the outcome and reports whether
// the failure is retry-eligible.
func (r *ConditionRunner) classify(outcome *ConditionOutcome, name string, err error) (retryable bool) {
	var unavailable *evaluators.UnavailableError
	var rejected *evaluators.RejectedError
	var malformed *evaluators.MalformedError

	switch {
	case errors.As(err, &unavailable):
		if unavailable.Timeout || errors.Is(err, context.DeadlineExceeded) {
			outcome.Details = map[string]any{"timedOut": true}
		}
		return true

	case errors.As(err, &rejected):
		// Deterministic remote-side rejection: not retried.
		outcome.Details = map[string]any{
			"status_code": rejected.StatusCode,
			"body":        rejected.Body,
		}
		return false

	case errors.As(err, &malformed):
		// Full payload kept for diagnosis.
		outcome.Details = map[string]any{
			"raw_response": malformed.RawResponse,
		}
		return false

	case errors.Is(err, context.DeadlineExceeded):
		outcome.Details = map[string]any{"timedOut": true}
		return true

	default:
		r.logger.Warn("unclassified condition error", "condition", name, "error", err)
		return false
	}
}
