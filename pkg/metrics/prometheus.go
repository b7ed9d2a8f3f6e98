// Package metrics provides Prometheus metrics for the prediction tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// defaultLatencyBuckets are millisecond buckets for compute, fetch and HTTP timings.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Manager owns every metric of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Refresh pipeline
	refreshes      *prometheus.CounterVec
	refreshErrors  *prometheus.CounterVec
	computeLatency prometheus.Histogram
	fetchLatency   prometheus.Histogram

	// Published snapshot
	snapshotMatches      prometheus.Gauge
	snapshotParticipants prometheus.Gauge
	snapshotDates        prometheus.Gauge
	snapshotLastUnix     prometheus.Gauge
	snapshotAgeSeconds   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Refresh queue and worker
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueRejected   prometheus.Counter
	workerLatency   prometheus.Histogram
	workerErrors    prometheus.Counter
	workerThrottled prometheus.Counter

	// Errors by component
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served at /healthz

var globalManager = NewManager(WithRegistry(customRegistry)) //nolint:gochecknoglobals // singleton behind the package-level recorders

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "tracker",
		subsystem:      "league",
		latencyBuckets: defaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.latencyBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refreshes_total",
		Help: "Refresh attempts by result",
	}, []string{"result"})
	m.refreshErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_errors_total",
		Help: "Failed refreshes by error kind",
	}, []string{"kind"})
	m.computeLatency = m.histogram("compute_latency_milliseconds", "Time to score, aggregate and rank one table")
	m.fetchLatency = m.histogram("source_fetch_latency_milliseconds", "Time to load and decode the source table")

	m.snapshotMatches = m.gauge("snapshot_matches", "Matches in the published snapshot")
	m.snapshotParticipants = m.gauge("snapshot_participants", "Participants in the published snapshot")
	m.snapshotDates = m.gauge("snapshot_dates", "Distinct match dates in the published snapshot")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix time of the last published snapshot")
	m.snapshotAgeSeconds = m.gauge("snapshot_age_seconds", "Age of the published snapshot")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Pending refresh requests")
	m.queueCapacity = m.gauge("queue_capacity", "Refresh queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Refresh requests accepted")
	m.queueRejected = m.counter("queue_rejected_total", "Refresh requests rejected because the queue was full")
	m.workerLatency = m.histogram("worker_refresh_latency_milliseconds", "Time the worker spent on one refresh request")
	m.workerErrors = m.counter("worker_errors_total", "Refresh requests the worker failed to process")
	m.workerThrottled = m.counter("worker_throttled_total", "Refresh requests that waited on the rate limiter")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and type",
	}, []string{"component", "type"})

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Last GC pause in milliseconds")
}

// RecordRefresh counts one refresh attempt.
func (m *Manager) RecordRefresh(result string) { m.refreshes.WithLabelValues(result).Inc() }

// RecordRefreshError counts a failed refresh by kind.
func (m *Manager) RecordRefreshError(kind string) { m.refreshErrors.WithLabelValues(kind).Inc() }

// RecordComputeLatency records compute time in milliseconds.
func (m *Manager) RecordComputeLatency(ms float64) { m.computeLatency.Observe(ms) }

// RecordFetchLatency records source load time in milliseconds.
func (m *Manager) RecordFetchLatency(ms float64) { m.fetchLatency.Observe(ms) }

// UpdateSnapshot sets the size gauges of a newly published snapshot.
func (m *Manager) UpdateSnapshot(matches, participants, dates int, publishedUnix int64) {
	m.snapshotMatches.Set(float64(matches))
	m.snapshotParticipants.Set(float64(participants))
	m.snapshotDates.Set(float64(dates))
	m.snapshotLastUnix.Set(float64(publishedUnix))
}

// UpdateSnapshotAge sets the age of the published snapshot in seconds.
func (m *Manager) UpdateSnapshotAge(seconds float64) { m.snapshotAgeSeconds.Set(seconds) }

// RecordHTTPRequest counts one HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateQueue sets the queue size and capacity gauges.
func (m *Manager) UpdateQueue(size, capacity int) {
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted refresh request.
func (m *Manager) RecordQueueEnqueue() { m.queueEnqueued.Inc() }

// RecordQueueRejected counts a refresh request dropped on a full queue.
func (m *Manager) RecordQueueRejected() { m.queueRejected.Inc() }

// RecordWorkerLatency records the time spent on one request in milliseconds.
func (m *Manager) RecordWorkerLatency(ms float64) { m.workerLatency.Observe(ms) }

// RecordWorkerError counts a failed request.
func (m *Manager) RecordWorkerError() { m.workerErrors.Inc() }

// RecordWorkerThrottled counts a request delayed by the rate limiter.
func (m *Manager) RecordWorkerThrottled() { m.workerThrottled.Inc() }

// RecordError counts an error for a component.
func (m *Manager) RecordError(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystem sets memory and goroutine gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause records a GC pause in milliseconds.
func (m *Manager) RecordGCPause(ms float64) { m.systemGCPauseTime.Observe(ms) }

// Package-level recorders on the global manager.

func RecordRefresh(result string)    { globalManager.RecordRefresh(result) }
func RecordRefreshError(kind string) { globalManager.RecordRefreshError(kind) }
func RecordComputeLatency(ms float64) {
	globalManager.RecordComputeLatency(ms)
}
func RecordFetchLatency(ms float64) { globalManager.RecordFetchLatency(ms) }
func UpdateSnapshot(matches, participants, dates int, publishedUnix int64) {
	globalManager.UpdateSnapshot(matches, participants, dates, publishedUnix)
}
func UpdateSnapshotAge(seconds float64) { globalManager.UpdateSnapshotAge(seconds) }
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, ms)
}
func UpdateQueue(size, capacity int)        { globalManager.UpdateQueue(size, capacity) }
func RecordQueueEnqueue()                   { globalManager.RecordQueueEnqueue() }
func RecordQueueRejected()                  { globalManager.RecordQueueRejected() }
func RecordWorkerLatency(ms float64)        { globalManager.RecordWorkerLatency(ms) }
func RecordWorkerError()                    { globalManager.RecordWorkerError() }
func RecordWorkerThrottled()                { globalManager.RecordWorkerThrottled() }
func RecordError(component, errType string) { globalManager.RecordError(component, errType) }
func UpdateSystem(memBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memBytes, goroutines)
}
func RecordGCPause(ms float64) { globalManager.RecordGCPause(ms) }

// GetRegistry returns the registry the global manager is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
