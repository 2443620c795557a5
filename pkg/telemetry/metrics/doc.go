// Package metrics provides Prometheus metrics for policy evaluation.
//
// EvaluationMetrics implements the engine's Metrics interface and tracks
// evaluation totals and durations by status, condition outcomes by
// disposition, and action outcomes by status.
package metrics
