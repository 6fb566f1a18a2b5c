// Package metrics provides Prometheus metrics for the race event service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the race service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Race lifecycle
	runsStarted    prometheus.Counter
	runsFinalized  *prometheus.CounterVec
	claims         prometheus.Counter
	extends        *prometheus.CounterVec
	extendDeclines prometheus.Counter
	rejections     *prometheus.CounterVec
	popups         *prometheus.CounterVec
	currentState   prometheus.Gauge

	// Roster and simulation
	rosterShortfall prometheus.Counter
	simAdvances     prometheus.Counter
	levelsGained    prometheus.Counter
	tickLatency     prometheus.Histogram

	// Persistence
	saveFailures prometheus.Counter
	saveLatency  prometheus.Histogram

	// Notification queue
	queueSize    prometheus.Gauge
	queueDropped prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ghostrace",
		subsystem:        "event",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(m.counter("runs_started_total", "Total number of races created after searching"))
	m.runsFinalized = auto.NewCounterVec(m.counter("runs_finalized_total", "Total number of races finalized by reason"), []string{"reason"})
	m.claims = auto.NewCounter(m.counter("claims_total", "Total number of accepted reward claims"))
	m.extends = auto.NewCounterVec(m.counter("extends_total", "Total number of accepted time extensions by pay type"), []string{"pay_type"})
	m.extendDeclines = auto.NewCounter(m.counter("extend_declines_total", "Total number of declined extension offers"))
	m.rejections = auto.NewCounterVec(m.counter("command_rejections_total", "Commands rejected by a failed guard"), []string{"command", "reason"})
	m.popups = auto.NewCounterVec(m.counter("popups_requested_total", "Popups requested from the host"), []string{"popup"})
	m.currentState = auto.NewGauge(m.gauge("flow_state", "Current flow state ordinal"))

	m.rosterShortfall = auto.NewCounter(m.counter("roster_shortfall_total", "Opponents missing because the bot pool could not supply them"))
	m.simAdvances = auto.NewCounter(m.counter("simulator_advances_total", "Total number of ghost simulator passes"))
	m.levelsGained = auto.NewCounter(m.counter("simulator_levels_gained_total", "Levels gained by ghost bots"))
	m.tickLatency = auto.NewHistogram(m.histogram("tick_latency_milliseconds", "Host tick processing latency in milliseconds"))

	m.saveFailures = auto.NewCounter(m.counter("save_failures_total", "Save record writes that failed"))
	m.saveLatency = auto.NewHistogram(m.histogram("save_latency_milliseconds", "Save record write latency in milliseconds"))

	m.queueSize = auto.NewGauge(m.gauge("notification_queue_size", "Notifications waiting for the host"))
	m.queueDropped = auto.NewCounter(m.counter("notification_dropped_total", "Notifications dropped because the queue was full"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})
}

// RecordRunStarted increments the runs started counter.
func RecordRunStarted() {
	globalManager.runsStarted.Inc()
}

// RecordRunFinalized counts a finalized run by reason.
func RecordRunFinalized(reason string) {
	globalManager.runsFinalized.WithLabelValues(reason).Inc()
}

// RecordClaim increments the claims counter.
func RecordClaim() {
	globalManager.claims.Inc()
}

// RecordExtend counts an accepted extension by pay type.
func RecordExtend(payType string) {
	globalManager.extends.WithLabelValues(payType).Inc()
}

// RecordExtendDeclined increments the declined extension counter.
func RecordExtendDeclined() {
	globalManager.extendDeclines.Inc()
}

// RecordRejection counts a rejected command.
func RecordRejection(command, reason string) {
	globalManager.rejections.WithLabelValues(command, reason).Inc()
}

// RecordPopup counts a popup request.
func RecordPopup(popup string) {
	globalManager.popups.WithLabelValues(popup).Inc()
}

// UpdateState sets the current flow state gauge.
func UpdateState(state int) {
	globalManager.currentState.Set(float64(state))
}

// RecordRosterShortfall adds missing opponents to the shortfall counter.
func RecordRosterShortfall(missing int) {
	if missing > 0 {
		globalManager.rosterShortfall.Add(float64(missing))
	}
}

// RecordSimulation counts one simulator pass and the levels it granted.
func RecordSimulation(levels int) {
	globalManager.simAdvances.Inc()
	if levels > 0 {
		globalManager.levelsGained.Add(float64(levels))
	}
}

// RecordTickLatency records host tick latency in milliseconds.
func RecordTickLatency(latencyMs float64) {
	globalManager.tickLatency.Observe(latencyMs)
}

// RecordSaveFailure increments the save failures counter.
func RecordSaveFailure() {
	globalManager.saveFailures.Inc()
}

// RecordSaveLatency records save latency in milliseconds.
func RecordSaveLatency(latencyMs float64) {
	globalManager.saveLatency.Observe(latencyMs)
}

// UpdateNotificationQueueSize sets the notification backlog.
func UpdateNotificationQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordNotificationDropped increments the dropped notification counter.
func RecordNotificationDropped() {
	globalManager.queueDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
