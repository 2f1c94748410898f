package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"harborlink/seaway/pkg/config"
)

// RelayMetrics tracks the upstream pump: one metric family per question an
// operator asks about the single shared link.
//
// Metrics:
//   - seaway_relay_exchanges_total: exchanges by outcome
//   - seaway_relay_exchange_duration_seconds: full round-trip latency
//   - seaway_relay_queue_depth: pending requests awaiting the pump
//   - seaway_relay_wire_bytes_total: framed bytes by direction
//   - seaway_relay_upstream_connected: 1 while the link is believed healthy
type RelayMetrics struct {
	exchangesTotal   *prometheus.CounterVec
	exchangeDuration prometheus.Histogram
	queueDepth       prometheus.Gauge
	wireBytes        *prometheus.CounterVec
	connected        prometheus.Gauge
}

// NewRelayMetrics creates and registers relay metrics with the provided
// registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		exchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exchanges_total",
				Help:      "Total number of request/response exchanges on the upstream link",
			},
			[]string{"status"},
		),

		exchangeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exchange_duration_seconds",
				Help:      "Duration of one full exchange on the upstream link",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queue_depth",
				Help:      "Number of pending requests waiting for the upstream pump",
			},
		),

		wireBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "wire_bytes_total",
				Help:      "Framed bytes moved over the upstream link",
			},
			[]string{"direction"},
		),

		connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_connected",
				Help:      "Whether the upstream link is currently connected (1) or not (0)",
			},
		),
	}

	registry.MustRegister(
		rm.exchangesTotal,
		rm.exchangeDuration,
		rm.queueDepth,
		rm.wireBytes,
		rm.connected,
	)
	return rm
}

// RecordExchange records one completed exchange. status is one of
// "success", "protocol_error", "connection_error". Safe on nil.
func (rm *RelayMetrics) RecordExchange(status string, duration time.Duration) {
	if rm == nil {
		return
	}
	rm.exchangesTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		rm.exchangeDuration.Observe(duration.Seconds())
	}
}

// AddWireBytes counts framed bytes; direction is "sent" or "received".
// Safe on nil.
func (rm *RelayMetrics) AddWireBytes(direction string, n int) {
	if rm == nil {
		return
	}
	rm.wireBytes.WithLabelValues(direction).Add(float64(n))
}

// SetQueueDepth updates the queue depth gauge. Safe on nil.
func (rm *RelayMetrics) SetQueueDepth(n int) {
	if rm == nil {
		return
	}
	rm.queueDepth.Set(float64(n))
}

// SetConnected updates the upstream link gauge. Safe on nil.
func (rm *RelayMetrics) SetConnected(up bool) {
	if rm == nil {
		return
	}
	if up {
		rm.connected.Set(1)
	} else {
		rm.connected.Set(0)
	}
}
