package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sentinel-hq/sentinel/pkg/policy"
)

// Engine is the policy evaluation orchestrator. It sequences condition
// evaluation, applies the combination rule, invokes the action
// dispatcher, and produces the final verdict with its audit trail.
//
// Evaluate is the sole entry point exposed to callers; everything
// upstream (argument parsing, file loading, policy CRUD) is a caller that
// already holds a parsed Policy and raw content string.
type Engine struct {
	config     *Config
	conditions *ConditionRunner
	dispatcher *Dispatcher
	logger     *slog.Logger
	metrics    Metrics
}

// NewEngine creates a policy evaluation engine.
func NewEngine(config *Config, registry *Registry, dispatcher *Dispatcher, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		config:     config,
		conditions: NewConditionRunner(registry, config, logger),
		dispatcher: dispatcher,
		logger:     logger.With("component", "engine"),
	}, nil
}

// SetMetrics attaches an evaluation metrics sink. Call during startup.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

// Evaluate runs one full policy evaluation against content.
//
// A disabled policy short-circuits with a skipped verdict and runs no
// conditions or actions. Otherwise every declared condition is evaluated
// (concurrently, bounded by MaxConcurrent) and combined under a
// fail-closed logical AND: the run passes only if every condition passed,
// and an empty condition set passes. Actions are then dispatched with the
// combined verdict. Condition infrastructure failures never abort the
// run; they are reported in the outcomes and count as failures.
//
// If ctx is cancelled before all conditions complete, completed outcomes
// are discarded and the call returns a StatusError result together with a
// CancelledError - a cancelled run is never reported as blocked.
func (e *Engine) Evaluate(ctx context.Context, pol *policy.Policy, content string, pctx *policy.Context) (*EvaluationResult, error) {
	if pol == nil {
		return nil, ErrNilPolicy
	}

	start := time.Now()
	result := &EvaluationResult{
		EvaluationID: uuid.NewString(),
		PolicyID:     pol.ID,
		PolicyName:   pol.Name,
		Conditions:   []ConditionOutcome{},
		Actions:      []ActionOutcome{},
	}

	if !pol.Enabled {
		result.Passed = true
		result.Status = StatusSkippedDisabled
		result.Duration = time.Since(start)
		e.logger.Info("policy disabled, evaluation skipped",
			"policy_id", pol.ID,
			"policy_name", pol.Name,
		)
		e.record(result)
		return result, nil
	}

	outcomes := e.runConditions(ctx, pol.Conditions, content)

	if err := ctx.Err(); err != nil {
		// Discard completed outcomes: no partial verdicts.
		result.Status = StatusError
		result.Duration = time.Since(start)
		e.logger.Warn("evaluation cancelled",
			"policy_id", pol.ID,
			"error", err,
		)
		e.record(result)
		return result, &CancelledError{PolicyID: pol.ID, Cause: err}
	}

	result.Conditions = outcomes

	// Fail-closed AND: error outcomes already carry passed=false.
	passed := true
	for _, outcome := range outcomes {
		if !outcome.Passed {
			passed = false
			break
		}
	}
	result.Passed = passed
	if passed {
		result.Status = StatusAllowed
	} else {
		result.Status = StatusBlocked
	}

	// Verdict first, actions second: dispatch can never change Passed.
	result.Actions = e.dispatcher.Dispatch(ctx, pol.Actions, &ActionInput{
		EvaluationID: result.EvaluationID,
		PolicyID:     pol.ID,
		PolicyName:   pol.Name,
		Severity:     pol.Severity,
		Passed:       passed,
		Status:       result.Status,
		Context:      pctx,
		Conditions:   outcomes,
	})

	result.Duration = time.Since(start)

	e.logger.Info("policy evaluated",
		"evaluation_id", result.EvaluationID,
		"policy_id", pol.ID,
		"policy_name", pol.Name,
		"status", result.Status,
		"passed", result.Passed,
		"conditions", len(result.Conditions),
		"duration", result.Duration,
	)
	e.record(result)
	return result, nil
}

// runConditions fans the declared conditions out over at most
// MaxConcurrent goroutines and re-sequences the outcomes to declaration
// order regardless of completion order.
func (e *Engine) runConditions(ctx context.Context, conds policy.ConditionList, content string) []ConditionOutcome {
	outcomes := make([]ConditionOutcome, len(conds))
	if len(conds) == 0 {
		return outcomes
	}

	sem := make(chan struct{}, e.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i, cond := range conds {
		wg.Add(1)
		go func(i int, cond policy.Condition) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i] = ConditionOutcome{
					Name:    cond.Name,
					Passed:  false,
					Errored: true,
					Error:   ctx.Err().Error(),
				}
				return
			}

			outcomes[i] = e.conditions.Run(ctx, cond, content)
		}(i, cond)
	}

	wg.Wait()
	return outcomes
}

// record forwards the result to the metrics sink, if one is attached.
func (e *Engine) record(result *EvaluationResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordEvaluation(result.PolicyID, string(result.Status), result.Duration)
	for _, c := range result.Conditions {
		disposition := "passed"
		switch {
		case c.Errored:
			disposition = "errored"
		case !c.Passed:
			disposition = "failed"
		}
		var total time.Duration
		for _, l := range c.Latencies {
			total += l
		}
		e.metrics.RecordCondition(c.Name, disposition, total)
	}
	for _, a := range result.Actions {
		e.metrics.RecordAction(a.Name, string(a.Status))
	}
}
