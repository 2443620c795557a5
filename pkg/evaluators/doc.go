// Package evaluators provides clients for the remote content evaluation
// services that back policy conditions.
//
// Each client is a stateless adapter for one named remote check. It sends
// the content under evaluation to the service as a JSON POST and maps the
// response to a Verdict. Clients perform exactly one network call per
// Evaluate; retry policy belongs to the condition evaluator in
// pkg/policy/engine, not here.
//
// Failures are classified into three distinct error types because the
// condition evaluator treats them differently:
//
//   - UnavailableError: connection failure or timeout (retry-eligible)
//   - RejectedError: non-2xx response with a body (deterministic, no retry)
//   - MalformedError: 2xx but unparsable or missing required fields
//
// Two concrete clients are provided: ContentSafetyClient (toxicity
// scoring, threshold applied server-side) and KeywordFilterClient
// (banned-term matching with matched terms reported for audit).
package evaluators
