// Package metrics provides Prometheus metrics for the cradle scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scoring service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Award metrics
	awardsTotal      *prometheus.CounterVec
	pointsGranted    *prometheus.CounterVec
	duplicateSignIns prometheus.Counter
	awardErrors      prometheus.Counter

	// Read-path metrics
	leaderboardQueries prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	totalUsers         prometheus.Gauge

	// Store metrics
	storeOpLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cradle",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.awardsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_total",
		Help:      "Total number of point awards by reason",
	}, []string{"reason"})

	m.pointsGranted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_granted_total",
		Help:      "Total points granted by reason",
	}, []string{"reason"})

	m.duplicateSignIns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_signins_total",
		Help:      "Daily sign-in attempts rejected as already claimed",
	})

	m.awardErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "award_errors_total",
		Help:      "Awards that failed at the persistence layer",
	})

	m.leaderboardQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Leaderboard read requests",
	})

	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_cache_hits_total",
		Help:      "Leaderboard reads served from cache",
	})

	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_cache_misses_total",
		Help:      "Leaderboard reads that fell through to the store",
	})

	m.totalUsers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_users",
		Help:      "Number of tracked users",
	})

	m.storeOpLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_op_latency_ms",
		Help:      "Store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method, and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.errorsByType = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_ms",
		Help:      "Latency of failed operations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current memory allocation in bytes",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_time_ms",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording against the global manager.

// RecordAward records a successful award and its point value.
func RecordAward(reason string, points int) {
	globalManager.awardsTotal.WithLabelValues(reason).Inc()
	globalManager.pointsGranted.WithLabelValues(reason).Add(float64(points))
}

// RecordDuplicateSignIn records a same-day sign-in rejection.
func RecordDuplicateSignIn() {
	globalManager.duplicateSignIns.Inc()
}

// RecordAwardError records an award that failed at the store.
func RecordAwardError() {
	globalManager.awardErrors.Inc()
}

// RecordLeaderboardQuery records a leaderboard read.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordCacheHit records a leaderboard cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss records a leaderboard cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateTotalUsers sets the tracked-user gauge.
func UpdateTotalUsers(count int) {
	globalManager.totalUsers.Set(float64(count))
}

// RecordStoreOpLatency records a store operation's latency.
func RecordStoreOpLatency(op string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error against an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
