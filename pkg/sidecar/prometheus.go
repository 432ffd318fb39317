package sidecar

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsCollector implements MetricsCollector using Prometheus
// metrics on a private registry.
type PrometheusMetricsCollector struct {
	snapshots   prometheus.Counter
	parseErrors prometheus.Counter
	spawns      *prometheus.CounterVec
	restarts    prometheus.Counter
	transitions *prometheus.CounterVec
	stalled     prometheus.Gauge

	registry *prometheus.Registry
}

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	if namespace == "" {
		namespace = "hwmon"
	}

	pmc := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
	}

	pmc.snapshots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_snapshots_total",
			Help:      "Total number of accepted sidecar snapshots",
		},
	)

	pmc.parseErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_parse_errors_total",
			Help:      "Total number of malformed sidecar output lines",
		},
	)

	pmc.spawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_spawns_total",
			Help:      "Total number of sidecar spawn attempts",
		},
		[]string{"result"},
	)

	pmc.restarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_restarts_total",
			Help:      "Total number of watchdog-driven restart attempts",
		},
	)

	pmc.transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_status_transitions_total",
			Help:      "Total number of sidecar status transitions",
		},
		[]string{"from", "to"},
	)

	pmc.stalled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sidecar_stalled",
			Help:      "Whether the sidecar has stopped delivering data (1) or not (0)",
		},
	)

	pmc.registry.MustRegister(
		pmc.snapshots,
		pmc.parseErrors,
		pmc.spawns,
		pmc.restarts,
		pmc.transitions,
		pmc.stalled,
	)

	return pmc
}

// SnapshotReceived records one accepted snapshot line
func (pmc *PrometheusMetricsCollector) SnapshotReceived() {
	pmc.snapshots.Inc()
}

// ParseError records one malformed stdout line
func (pmc *PrometheusMetricsCollector) ParseError() {
	pmc.parseErrors.Inc()
}

// Spawn records a spawn attempt and its outcome
func (pmc *PrometheusMetricsCollector) Spawn(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	pmc.spawns.WithLabelValues(result).Inc()
}

// Restart records a watchdog-driven restart attempt
func (pmc *PrometheusMetricsCollector) Restart(attempt int) {
	pmc.restarts.Inc()
}

// StatusTransition records a status change
func (pmc *PrometheusMetricsCollector) StatusTransition(from, to StatusCode) {
	pmc.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// Stalled records the current stall condition
func (pmc *PrometheusMetricsCollector) Stalled(stalled bool) {
	if stalled {
		pmc.stalled.Set(1)
	} else {
		pmc.stalled.Set(0)
	}
}

// Registry returns the Prometheus registry for HTTP handler setup
func (pmc *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return pmc.registry
}

// Compile-time interface compliance check
var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)
