// Package metrics exposes fan-out activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webhook-fanout/internal/fanout"
)

const metricsNamespace = "webhook_fanout"

// Metrics owns a registry and implements fanout.Sink.
type Metrics struct {
	Handler        http.Handler
	ObservedValues ObservedValues

	registry *prometheus.Registry
}

type ObservedValues struct {
	Dispatches      *prometheus.CounterVec
	Forwards        *prometheus.CounterVec
	ForwardDuration *prometheus.HistogramVec
	NumberOfRoutes  prometheus.Gauge
	LastSyncedAt    prometheus.Gauge
}

// New creates a Metrics with its own registry, including Go and process
// collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		registry: registry,
		ObservedValues: ObservedValues{
			Dispatches: prometheus.NewCounterVec(
				prometheus.CounterOpts{Namespace: metricsNamespace, Name: "dispatch_total", Help: "Inbound fan-out requests by result"},
				[]string{"result"}),
			Forwards: prometheus.NewCounterVec(
				prometheus.CounterOpts{Namespace: metricsNamespace, Name: "forward_total", Help: "Forwarded requests by route and outcome"},
				[]string{"route", "outcome"}),
			ForwardDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{Namespace: metricsNamespace, Name: "forward_duration_seconds", Help: "Time spent on a single forward", Buckets: prometheus.DefBuckets},
				[]string{"route"}),
			NumberOfRoutes: prometheus.NewGauge(
				prometheus.GaugeOpts{Namespace: metricsNamespace, Name: "routes", Help: "Number of routes in the routing table"}),
			LastSyncedAt: prometheus.NewGauge(
				prometheus.GaugeOpts{Namespace: metricsNamespace, Name: "routes_last_synced_at", Help: "Unix timestamp of the last routing table load"}),
		},
	}

	registry.MustRegister(
		m.ObservedValues.Dispatches,
		m.ObservedValues.Forwards,
		m.ObservedValues.ForwardDuration,
		m.ObservedValues.NumberOfRoutes,
		m.ObservedValues.LastSyncedAt,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordDispatch(ack fanout.Ack) {
	m.ObservedValues.Dispatches.WithLabelValues(string(ack.Status)).Inc()
}

func (m *Metrics) RecordOutcome(o fanout.Outcome) {
	m.ObservedValues.Forwards.WithLabelValues(o.RouteID, string(o.Kind)).Inc()
	m.ObservedValues.ForwardDuration.WithLabelValues(o.RouteID).Observe(o.Duration.Seconds())
}

// SetRoutes records the routing table size.
func (m *Metrics) SetRoutes(n int) {
	m.ObservedValues.NumberOfRoutes.Set(float64(n))
}

// Synced marks a successful routing table load.
func (m *Metrics) Synced(routes int) {
	m.ObservedValues.LastSyncedAt.SetToCurrentTime()
	m.SetRoutes(routes)
}
