package evaluators

import (
	"context"

	"sentinel-hq/sentinel/pkg/policy"
)

// EvaluationRequest is the JSON body sent to an evaluation endpoint.
// ExpectedOutput and ActualOutput exist in the wire contract for checks
// that compare model output; the content checks used here leave them empty.
type EvaluationRequest struct {
	// InputText is the content under evaluation. Empty content is valid
	// and is evaluated, not rejected.
	InputText string `json:"input_text"`

	// ExpectedOutput is unused by content checks but part of the contract.
	ExpectedOutput string `json:"expected_output"`

	// ActualOutput is unused by content checks but part of the contract.
	ActualOutput string `json:"actual_output"`

	// Metadata carries check_type and the check's threshold value.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EvaluationResponse is the JSON body returned by an evaluation endpoint.
// Passed is required; a 2xx response without it is malformed. Score is
// optional and only present for score-based checks.
type EvaluationResponse struct {
	Score     *float64       `json:"score"`
	Passed    *bool          `json:"passed"`
	Details   map[string]any `json:"details"`
	LatencyMS float64        `json:"latency_ms"`
	Error     string         `json:"error,omitempty"`
}

// Verdict is the typed outcome of one remote check.
type Verdict struct {
	// Passed is the check's pass/fail result.
	Passed bool

	// Score is the check's numeric score in [0.0, 1.0], if the check
	// produces one.
	Score *float64

	// Details carries check-specific diagnostics (matched keywords,
	// thresholds, model metadata) for the audit trail.
	Details map[string]any
}

// Client evaluates content through one named remote check.
//
// Implementations must be safe for concurrent use: the engine fans
// condition evaluations out across goroutines against shared clients.
type Client interface {
	// Name returns the client's check name as registered with the engine.
	Name() string

	// Evaluate runs the remote check against content. Parameters are the
	// condition's opaque payload; the client validates what it needs from
	// them. The call is bound by ctx and returns one of the package's
	// typed errors on failure.
	Evaluate(ctx context.Context, content string, params policy.Parameters) (*Verdict, error)
}
