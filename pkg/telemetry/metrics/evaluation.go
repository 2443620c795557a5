package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

// EvaluationMetrics tracks metrics for the policy evaluation engine.
//
// Metrics:
//   - sentinel_policy_evaluations_total: evaluations by policy and status
//   - sentinel_policy_evaluation_duration_seconds: evaluation duration by status
//   - sentinel_policy_conditions_total: condition outcomes by name and disposition
//   - sentinel_policy_condition_duration_seconds: condition duration by name
//   - sentinel_policy_actions_total: action outcomes by name and status
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	conditionsTotal    *prometheus.CounterVec
	conditionDuration  *prometheus.HistogramVec
	actionsTotal       *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	m := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"policy_id", "status"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of policy evaluation in seconds",
				// Evaluations are bounded by remote check latency:
				// 1ms to ~30s.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"status"},
		),

		conditionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "conditions_total",
				Help:      "Total number of condition evaluations by disposition",
			},
			[]string{"condition", "disposition"},
		),

		conditionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "condition_duration_seconds",
				Help:      "Cumulative remote-call duration per condition evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"condition"},
		),

		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "actions_total",
				Help:      "Total number of dispatched actions by status",
			},
			[]string{"action", "status"},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.conditionsTotal,
		m.conditionDuration,
		m.actionsTotal,
	)

	return m
}

// RecordEvaluation records one full policy evaluation.
func (m *EvaluationMetrics) RecordEvaluation(policyID string, status string, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(policyID, status).Inc()
	m.evaluationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCondition records one condition outcome. disposition is one of
// "passed", "failed", "errored".
func (m *EvaluationMetrics) RecordCondition(name string, disposition string, duration time.Duration) {
	m.conditionsTotal.WithLabelValues(name, disposition).Inc()
	m.conditionDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordAction records one action outcome. status is one of "executed",
// "skipped", "failed".
func (m *EvaluationMetrics) RecordAction(name string, status string) {
	m.actionsTotal.WithLabelValues(name, status).Inc()
}
