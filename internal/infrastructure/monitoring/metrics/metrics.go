// Package metrics exposes the Prometheus instrumentation for check runs,
// detected alerts and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marksentinel"

// Metrics bundles every collector the service registers.
type Metrics struct {
	ChecksTotal    *prometheus.CounterVec
	CheckDuration  *prometheus.HistogramVec
	AlertsDetected *prometheus.CounterVec
	ItemsByStatus  *prometheus.GaugeVec

	RegistryRequests *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Monitoring checks executed, by item type and outcome.",
		}, []string{"item_type", "outcome"}),
		CheckDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Wall-clock duration of a single monitoring check.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"item_type"}),
		AlertsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_detected_total",
			Help:      "Conflict alerts stored, by alert type and severity.",
		}, []string{"alert_type", "severity"}),
		ItemsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitoring_items",
			Help:      "Monitoring items currently stored, by status.",
		}, []string{"status"}),
		RegistryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_total",
			Help:      "Outbound trademark registry requests, by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, path and status code.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(
		m.ChecksTotal,
		m.CheckDuration,
		m.AlertsDetected,
		m.ItemsByStatus,
		m.RegistryRequests,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewUnregistered builds the collectors without registering them.  Tests use
// it to avoid duplicate-registration panics across cases.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveCheck records one finished check run.
func (m *Metrics) ObserveCheck(itemType, outcome string, elapsed time.Duration) {
	m.ChecksTotal.WithLabelValues(itemType, outcome).Inc()
	m.CheckDuration.WithLabelValues(itemType).Observe(elapsed.Seconds())
}

// ObserveAlert records one stored conflict alert.
func (m *Metrics) ObserveAlert(alertType, severity string) {
	m.AlertsDetected.WithLabelValues(alertType, severity).Inc()
}
