// Package metrics holds the Prometheus collectors for provider calls, store
// operations and the worker pool.
//
// All methods are safe on a nil *Collector so components can be built without
// metrics in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookmemo"

// Collector owns a private registry and the application's metrics.
type Collector struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	StoreOperations  *prometheus.CounterVec
	MirrorOperations *prometheus.CounterVec
	PoolTasks        *prometheus.CounterVec
	PoolQueued       prometheus.Gauge
}

// NewCollector creates and registers all collectors on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "External provider requests by provider, operation and outcome",
			},
			[]string{"provider", "operation", "outcome"},
		),
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "External provider request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Local annotation store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		MirrorOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_operations_total",
				Help:      "Remote publication mirror writes by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		PoolTasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_tasks_total",
				Help:      "Worker pool tasks by final state",
			},
			[]string{"state"},
		),
		PoolQueued: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_queued_tasks",
				Help:      "Tasks waiting for a worker",
			},
		),
	}

	registry.MustRegister(
		c.ProviderRequests,
		c.ProviderDuration,
		c.StoreOperations,
		c.MirrorOperations,
		c.PoolTasks,
		c.PoolQueued,
	)

	return c
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveProvider records one provider call.
func (c *Collector) ObserveProvider(provider, operation string, started time.Time, err error) {
	if c == nil {
		return
	}
	c.ProviderRequests.WithLabelValues(provider, operation, outcome(err)).Inc()
	c.ProviderDuration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

// ObserveStore records one local store operation.
func (c *Collector) ObserveStore(operation string, err error) {
	if c == nil {
		return
	}
	c.StoreOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveMirror records one mirror write.
func (c *Collector) ObserveMirror(operation string, err error) {
	if c == nil {
		return
	}
	c.MirrorOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// TaskQueued increments the queue gauge.
func (c *Collector) TaskQueued() {
	if c == nil {
		return
	}
	c.PoolQueued.Inc()
}

// TaskFinished moves a task out of the queue gauge and counts its final state.
func (c *Collector) TaskFinished(state string) {
	if c == nil {
		return
	}
	c.PoolQueued.Dec()
	c.PoolTasks.WithLabelValues(state).Inc()
}

// TaskRejected counts a submission that never reached the queue.
func (c *Collector) TaskRejected() {
	if c == nil {
		return
	}
	c.PoolTasks.WithLabelValues("rejected").Inc()
}
