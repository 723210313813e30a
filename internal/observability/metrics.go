// Package observability wires Prometheus instrumentation for the floe API.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API. RecordRequest satisfies
// the core.MetricsCollector interface consumed by the chassis middleware.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // labels: method, endpoint, status
	RequestDuration *prometheus.HistogramVec // labels: method, endpoint

	ReportsSubmitted prometheus.Counter
	AlertsServed     prometheus.Counter
}

// NewMetrics creates and registers all API metrics on a private registry,
// keeping the exposition endpoint free of unrelated process-global collectors
// registered by dependencies.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floe",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served.",
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floe",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "endpoint"}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floe",
			Name:      "reports_submitted_total",
			Help:      "Total community weather reports accepted.",
		}),
		AlertsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floe",
			Name:      "hazard_alerts_served_total",
			Help:      "Total weather responses carrying a verified hazard alert.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ReportsSubmitted,
		m.AlertsServed,
	)

	return m
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Handler returns the Prometheus exposition handler for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
