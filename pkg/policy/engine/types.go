package engine

import (
	"time"
)

// Status is the terminal status of one evaluation run.
type Status string

const (
	// StatusAllowed means every condition passed.
	StatusAllowed Status = "allowed"

	// StatusBlocked means at least one condition failed or errored.
	StatusBlocked Status = "blocked"

	// StatusSkippedDisabled means the policy was disabled and nothing ran.
	// A disabled policy imposes no restriction, so Passed is true.
	StatusSkippedDisabled Status = "skipped-disabled"

	// StatusError means the run did not complete (cancellation or
	// caller timeout). No partial verdict is reported.
	StatusError Status = "error"
)

// ConditionOutcome is the result of evaluating one declared condition.
type ConditionOutcome struct {
	// Name is the condition name as declared in the policy.
	Name string `json:"name"`

	// Passed is the condition's pass/fail result. Every failure path,
	// including infrastructure errors, yields false.
	Passed bool `json:"passed"`

	// Errored marks an infrastructure failure (unreachable, rejected,
	// malformed, timeout) as opposed to a clean fail from the check.
	Errored bool `json:"errored"`

	// Error is the diagnostic message when Errored is set.
	Error string `json:"error,omitempty"`

	// Score is the check's numeric score, if the check produces one.
	Score *float64 `json:"score,omitempty"`

	// Latencies holds one entry per attempt, so a retried condition
	// shows each attempt's duration.
	Latencies []time.Duration `json:"latencies"`

	// Details carries check-specific diagnostics. details["timedOut"] is
	// set when the condition deadline expired; details["unknown_condition"]
	// when the name did not resolve to a registered client.
	Details map[string]any `json:"details,omitempty"`
}

// ActionStatus describes the disposition of one declared action.
type ActionStatus string

const (
	// ActionExecuted means the action handler ran and succeeded.
	ActionExecuted ActionStatus = "executed"

	// ActionSkipped means the action's firing rule did not match the
	// verdict (e.g. on: blocked for an allowed run).
	ActionSkipped ActionStatus = "skipped"

	// ActionFailed means the handler ran and returned an error, or the
	// action name is unknown. Failures never roll back the verdict or
	// stop later actions.
	ActionFailed ActionStatus = "failed"
)

// ActionOutcome is the result of dispatching one declared action.
type ActionOutcome struct {
	// Name is the action name as declared in the policy.
	Name string `json:"name"`

	// Status is the action's disposition.
	Status ActionStatus `json:"status"`

	// Error is the failure message when Status is ActionFailed.
	Error string `json:"error,omitempty"`
}

// EvaluationResult is the verdict of one full engine run, including the
// per-condition and per-action audit trail. It is created fresh per call
// and never shared.
type EvaluationResult struct {
	// EvaluationID uniquely identifies this run for audit correlation.
	EvaluationID string `json:"evaluation_id"`

	// PolicyID is the evaluated policy's id.
	PolicyID string `json:"policy_id"`

	// PolicyName is the evaluated policy's name.
	PolicyName string `json:"policy_name"`

	// Passed is the combined verdict: true only if every condition
	// outcome passed (empty condition set passes).
	Passed bool `json:"passed"`

	// Status is the terminal status of the run.
	Status Status `json:"status"`

	// Conditions holds one outcome per declared condition, in declaration
	// order regardless of completion order. Empty for skipped and error
	// runs.
	Conditions []ConditionOutcome `json:"conditions"`

	// Actions holds one outcome per declared action, in declaration
	// order. Empty for skipped and error runs.
	Actions []ActionOutcome `json:"actions"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// Metrics receives evaluation telemetry. pkg/telemetry/metrics provides
// the Prometheus-backed implementation; the engine only needs this
// surface.
type Metrics interface {
	RecordEvaluation(policyID string, status string, duration time.Duration)
	RecordCondition(name string, disposition string, duration time.Duration)
	RecordAction(name string, status string)
}
