package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the DHL Express client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	APIErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlexpress_requests_total",
				Help: "Total number of DHL Express API requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dhlexpress_request_duration_seconds",
				Help:    "DHL Express API request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		APIErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlexpress_api_errors_total",
				Help: "Total DHL Express API errors by operation and error kind",
			},
			[]string{"operation", "error_kind"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an API error metric.
func (m *Metrics) RecordError(operation, errorKind string) {
	m.APIErrors.WithLabelValues(operation, errorKind).Inc()
}
