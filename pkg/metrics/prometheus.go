// Package metrics provides Prometheus metrics for the squares live sync service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeNoMatch = "no_match"
	OutcomeStale   = "stale"
)

// Manager owns every collector registered by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Live sync
	fetches            *prometheus.CounterVec
	fetchLatency       prometheus.Histogram
	pollsSkipped       prometheus.Counter
	snapshotsApplied   prometheus.Counter
	snapshotsDiscarded prometheus.Counter
	manualOverrides    prometheus.Gauge
	activePools        prometheus.Gauge
	lastSyncUnix       *prometheus.GaugeVec

	// Engine
	leaderChanges      prometheus.Counter
	announcements      *prometheus.CounterVec
	announcementErrors prometheus.Counter
	refreshRejected    prometheus.Counter

	// Announcement queue
	queueSize    prometheus.Gauge
	queueDropped prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "squares",
		subsystem:        "livesync",
		histogramBuckets: []float64{5, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "fetches_total",
		Help: "Score feed fetches by outcome",
	}, []string{"outcome"})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name:    "fetch_latency_milliseconds",
		Help:    "Score feed fetch latency in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.pollsSkipped = m.counter("polls_skipped_total", "Poll ticks skipped because a fetch was already in flight")
	m.snapshotsApplied = m.counter("snapshots_applied_total", "Snapshots stored as the current game state")
	m.snapshotsDiscarded = m.counter("snapshots_discarded_total", "Snapshots discarded because a newer one had already landed")
	m.manualOverrides = m.gauge("manual_overrides", "Pools currently under manual score override")
	m.activePools = m.gauge("active_pools", "Pools with a running live sync controller")

	m.lastSyncUnix = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "last_sync_unix",
		Help: "Unix time of the last successful sync per pool",
	}, []string{"pool_id"})

	m.leaderChanges = m.counter("leader_changes_total", "Times the currently winning cell changed")
	m.announcements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "announcements_total",
		Help: "Events published by kind",
	}, []string{"kind"})
	m.announcementErrors = m.counter("announcement_errors_total", "Events that failed to publish")
	m.refreshRejected = m.counter("refresh_rejected_total", "Manual refresh requests rejected by the rate limiter")

	m.queueSize = m.gauge("announce_queue_size", "Snapshots waiting for announcement")
	m.queueDropped = m.counter("announce_queue_dropped_total", "Snapshots not announced because the queue was full or closed")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "errors_by_component_total",
		Help: "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordFetch records a feed fetch outcome and its latency.
func (m *Manager) RecordFetch(outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchLatency.Observe(latencyMs)
}

// RecordFetch records a feed fetch outcome on the global manager.
func RecordFetch(outcome string, latencyMs float64) { globalManager.RecordFetch(outcome, latencyMs) }

// RecordPollSkipped counts a poll dropped by the single-flight guard.
func RecordPollSkipped() { globalManager.pollsSkipped.Inc() }

// RecordSnapshotApplied counts a stored snapshot.
func RecordSnapshotApplied() { globalManager.snapshotsApplied.Inc() }

// RecordSnapshotDiscarded counts an out-of-order snapshot.
func RecordSnapshotDiscarded() { globalManager.snapshotsDiscarded.Inc() }

// AddManualOverrides moves the manual override gauge by delta.
func AddManualOverrides(delta int) { globalManager.manualOverrides.Add(float64(delta)) }

// UpdateActivePools sets the number of running controllers.
func UpdateActivePools(count int) { globalManager.activePools.Set(float64(count)) }

// UpdateLastSync stamps the last successful sync time for a pool.
func UpdateLastSync(poolID string, unix int64) {
	globalManager.lastSyncUnix.WithLabelValues(poolID).Set(float64(unix))
}

// RecordLeaderChange counts a change of the winning cell.
func RecordLeaderChange() { globalManager.leaderChanges.Inc() }

// RecordAnnouncement counts a published event.
func RecordAnnouncement(kind string) { globalManager.announcements.WithLabelValues(kind).Inc() }

// RecordAnnouncementError counts a failed publish.
func RecordAnnouncementError() { globalManager.announcementErrors.Inc() }

// RecordRefreshRejected counts a throttled manual refresh.
func RecordRefreshRejected() { globalManager.refreshRejected.Inc() }

// UpdateQueueSize sets the announcement queue depth.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// RecordQueueDropped counts a snapshot the queue refused.
func RecordQueueDropped() { globalManager.queueDropped.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
