package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"harborlink/seaway/pkg/config"
)

// DispatchMetrics tracks the ship-side HTTP listener.
//
// Metrics:
//   - seaway_relay_client_requests_total: accepted client requests by method and outcome
//   - seaway_relay_dispatch_wait_seconds: time a dispatcher spent blocked on its signal
type DispatchMetrics struct {
	clientRequests *prometheus.CounterVec
	dispatchWait   prometheus.Histogram
}

// NewDispatchMetrics creates and registers dispatcher metrics with the
// provided registry.
func NewDispatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DispatchMetrics {
	dm := &DispatchMetrics{
		clientRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "client_requests_total",
				Help:      "Client requests handled by the local dispatcher",
			},
			[]string{"method", "status"},
		),

		dispatchWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dispatch_wait_seconds",
				Help:      "Time a dispatcher waited on the completion signal",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0},
			},
		),
	}

	registry.MustRegister(dm.clientRequests, dm.dispatchWait)
	return dm
}

// RecordRequest records one handled client request. status is one of
// "relayed", "gateway_error", "timeout", "rate_limited". Safe on nil.
func (dm *DispatchMetrics) RecordRequest(method, status string, waited time.Duration) {
	if dm == nil {
		return
	}
	dm.clientRequests.WithLabelValues(method, status).Inc()
	dm.dispatchWait.Observe(waited.Seconds())
}
