// Package metric manages Prometheus metrics for BlogStream.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all platform-level metrics (not request payload data)
type Metrics struct {
	// GraphQL request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Subscription metrics
	SubscriptionsActive prometheus.Gauge
	EventsPublished     prometheus.Counter
	EventsDropped       prometheus.Counter

	// Entity metrics
	Entities *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogstream",
				Subsystem: "graphql",
				Name:      "requests_total",
				Help:      "Total number of GraphQL requests",
			},
			[]string{"operation", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "blogstream",
				Subsystem: "graphql",
				Name:      "request_duration_seconds",
				Help:      "GraphQL request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		SubscriptionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "blogstream",
				Subsystem: "subscriptions",
				Name:      "active",
				Help:      "Number of active GraphQL subscriptions",
			},
		),

		EventsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "blogstream",
				Subsystem: "subscriptions",
				Name:      "events_published_total",
				Help:      "Total number of events published to subscription topics",
			},
		),

		EventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "blogstream",
				Subsystem: "subscriptions",
				Name:      "events_dropped_total",
				Help:      "Total number of events dropped for slow subscribers",
			},
		),

		Entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "blogstream",
				Subsystem: "store",
				Name:      "entities",
				Help:      "Number of entities held in the store",
			},
			[]string{"kind"},
		),
	}
}

// Registry bundles the Prometheus registry with the core metrics.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a metrics registry with core platform metrics and
// Go runtime collectors registered.
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	metrics := NewMetrics()
	prometheusRegistry.MustRegister(
		metrics.RequestsTotal,
		metrics.RequestDuration,
		metrics.SubscriptionsActive,
		metrics.EventsPublished,
		metrics.EventsDropped,
		metrics.Entities,
	)

	prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		prometheusRegistry: prometheusRegistry,
		Metrics:            metrics,
	}
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns an http.Handler serving the registry in the
// Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}
