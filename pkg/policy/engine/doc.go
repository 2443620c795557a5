// Package engine implements the policy evaluation engine: it runs a
// policy's declared conditions against a piece of content through remote
// evaluator clients, combines the outcomes under a fail-closed logical
// AND, dispatches the policy's actions, and returns the verdict plus a
// full audit trail.
//
// # Architecture
//
// The engine uses a three-layer design:
//
//  1. Registry - resolves condition names to evaluator clients; unknown
//     names resolve to a sentinel that can never pass
//  2. ConditionRunner - runs one condition under a per-condition timeout,
//     classifies failures, and retries transient ones
//  3. Dispatcher - executes the policy's actions in declaration order,
//     best-effort and independent of one another
//
// # Evaluation Flow
//
//	Engine.Evaluate(policy, content, context)
//	       ↓
//	disabled? → skipped verdict, nothing runs
//	       ↓
//	fan out conditions (bounded concurrency) → re-sequence to declaration order
//	       ↓
//	combine: passed = AND of all outcomes (empty set passes)
//	       ↓
//	dispatch actions with the combined verdict
//	       ↓
//	EvaluationResult{passed, status, condition outcomes, action outcomes}
//
// # Fail-Closed Stance
//
// Every indeterminate condition path - remote unreachable, rejection,
// malformed response, timeout, unknown condition name - contributes
// passed=false. An indeterminate check is never treated as a pass.
// Infrastructure failures are modeled as data in the result, not as
// returned errors: the engine completes the run and reports them in the
// condition outcomes. Only structural failures (nil policy, cancellation
// of the whole call) surface as errors.
//
// # Thread Safety
//
// The engine is safe for concurrent use. The registry and dispatcher are
// read-only after startup; each Evaluate call owns its own outcome
// sequence.
package engine
