package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"harborlink/seaway/pkg/config"
)

// ExecutorMetrics tracks the offshore executor.
//
// Metrics:
//   - seaway_relay_destination_requests_total: destination fetches by outcome
//   - seaway_relay_destination_duration_seconds: destination fetch latency
//   - seaway_relay_frames_skipped_total: inbound frames discarded without execution
type ExecutorMetrics struct {
	destinationRequests *prometheus.CounterVec
	destinationDuration prometheus.Histogram
	framesSkipped       prometheus.Counter
}

// NewExecutorMetrics creates and registers executor metrics with the
// provided registry.
func NewExecutorMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExecutorMetrics {
	em := &ExecutorMetrics{
		destinationRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "destination_requests_total",
				Help:      "Requests executed against destination servers",
			},
			[]string{"status"},
		),

		destinationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "destination_duration_seconds",
				Help:      "Duration of destination fetches including the idle-read window",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		framesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frames_skipped_total",
				Help:      "Inbound frames discarded for unknown type or oversize",
			},
		),
	}

	registry.MustRegister(em.destinationRequests, em.destinationDuration, em.framesSkipped)
	return em
}

// RecordDestination records one destination fetch. status is one of
// "success", "connect_error", "bad_request", "internal_error",
// "connect_tunnel". Safe on nil.
func (em *ExecutorMetrics) RecordDestination(status string, duration time.Duration) {
	if em == nil {
		return
	}
	em.destinationRequests.WithLabelValues(status).Inc()
	if duration > 0 {
		em.destinationDuration.Observe(duration.Seconds())
	}
}

// RecordSkippedFrame counts one discarded inbound frame. Safe on nil.
func (em *ExecutorMetrics) RecordSkippedFrame() {
	if em == nil {
		return
	}
	em.framesSkipped.Inc()
}
