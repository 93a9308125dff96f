// Package metrics provides observability for the compliance module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for evaluation cycles.
type Metrics struct {
	// Snapshot fetch latencies by source
	SnapshotLatency *prometheus.HistogramVec

	// Verdicts by overall status and policy version
	VerdictOutcome *prometheus.CounterVec

	// Full evaluation cycle latency including fetch and ledger append
	EvaluateLatency prometheus.Histogram

	// Audit chain length
	ChainEntries prometheus.Counter

	// Advisory fallback activations
	AdvisoryFallbacks prometheus.Counter
}

// New creates and registers all compliance metrics.
func New() *Metrics {
	return &Metrics{
		SnapshotLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attestra_snapshot_fetch_duration_seconds",
			Help:    "Duration of snapshot fetches by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "reserves", "liabilities"

		VerdictOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attestra_verdicts_total",
			Help: "Total compliance verdicts by overall status and policy version",
		}, []string{"status", "policy_version"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestra_evaluation_duration_seconds",
			Help:    "Duration of a full evaluation cycle",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ChainEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestra_audit_entries_total",
			Help: "Total audit entries appended to the chain",
		}),

		AdvisoryFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestra_advisory_fallbacks_total",
			Help: "Total advisory explanations degraded to the fixed fallback",
		}),
	}
}

// ObserveSnapshotLatency records the duration of one snapshot fetch.
func (m *Metrics) ObserveSnapshotLatency(source string, d time.Duration) {
	if m != nil {
		m.SnapshotLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementVerdict records one evaluation outcome.
func (m *Metrics) IncrementVerdict(status, policyVersion string) {
	if m != nil {
		m.VerdictOutcome.WithLabelValues(status, policyVersion).Inc()
	}
}

// ObserveEvaluateLatency records the total cycle duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementChainEntries records a successful ledger append.
func (m *Metrics) IncrementChainEntries() {
	if m != nil {
		m.ChainEntries.Inc()
	}
}

// IncrementAdvisoryFallbacks records a degraded advisory explanation.
func (m *Metrics) IncrementAdvisoryFallbacks() {
	if m != nil {
		m.AdvisoryFallbacks.Inc()
	}
}
