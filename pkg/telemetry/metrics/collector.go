// Package metrics implements Prometheus metrics for Seaway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"harborlink/seaway/pkg/config"
)

// Collector owns the Prometheus registry and the per-concern metric
// groups: relay (upstream pump), dispatch (ship listener), and executor
// (offshore side). All metric recording methods are safe on a nil group,
// so components built without metrics simply record nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	relayMetrics    *RelayMetrics
	dispatchMetrics *DispatchMetrics
	executorMetrics *ExecutorMetrics
}

// NewCollector creates a collector with the specified configuration and
// registry. If registry is nil, a private registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		relayMetrics:    NewRelayMetrics(cfg, registry),
		dispatchMetrics: NewDispatchMetrics(cfg, registry),
		executorMetrics: NewExecutorMetrics(cfg, registry),
	}
}

// Relay returns the upstream pump metric group.
func (c *Collector) Relay() *RelayMetrics { return c.relayMetrics }

// Dispatch returns the ship listener metric group.
func (c *Collector) Dispatch() *DispatchMetrics { return c.dispatchMetrics }

// Executor returns the offshore executor metric group.
func (c *Collector) Executor() *ExecutorMetrics { return c.executorMetrics }

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
