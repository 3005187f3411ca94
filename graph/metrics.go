package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for graph execution. All metrics
// are namespaced "stategraph":
//
//   - runs_total (counter, label status): completed runs by outcome
//     (success, step_error, merge_error, routing_error, limit_exceeded,
//     cancelled)
//   - steps_total (counter, labels node_id, status): node executions
//   - step_latency_ms (histogram, label node_id): node execution time
//   - merge_errors_total (counter, label field): reducer failures
//
// Pass a Metrics to Invoke with WithMetrics; one Metrics set can serve
// many graphs and runs concurrently.
type Metrics struct {
	runs        *prometheus.CounterVec
	steps       *prometheus.CounterVec
	stepLatency *prometheus.HistogramVec
	mergeErrors *prometheus.CounterVec
}

// NewMetrics creates and registers the execution metrics with the given
// registry. A nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "runs_total",
			Help:      "Completed graph runs by outcome",
		}, []string{"status"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "steps_total",
			Help:      "Node executions by node and outcome",
		}, []string{"node_id", "status"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stategraph",
			Name:      "step_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"node_id"}),
		mergeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "merge_errors_total",
			Help:      "Reducer failures by state field",
		}, []string{"field"}),
	}
}

// RecordStep records one node execution.
func (m *Metrics) RecordStep(nodeID string, latency time.Duration, status string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(nodeID, status).Inc()
	m.stepLatency.WithLabelValues(nodeID).Observe(float64(latency.Milliseconds()))
}

// RecordRun records one completed run.
func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

// RecordMergeError records one reducer failure.
func (m *Metrics) RecordMergeError(field string) {
	if m == nil {
		return
	}
	m.mergeErrors.WithLabelValues(field).Inc()
}
