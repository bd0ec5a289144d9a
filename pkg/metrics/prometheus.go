// Package metrics provides Prometheus metrics for the podium analytics
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Popularity cache behavior
	popularityCacheHits   prometheus.Counter
	popularityCacheMisses prometheus.Counter
	popularityServedStale prometheus.Counter
	popularityRecomputeMs prometheus.Histogram
	popularitySnapshotAge prometheus.Gauge
	popularityGamesScored prometheus.Gauge

	// Leaderboard reads
	leaderboardQueries prometheus.Counter
	leaderboardErrors  prometheus.Counter

	// Activity store health
	storeQueryLatency prometheus.Histogram
	storeErrors       prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "podium",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.popularityCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_cache_hits_total",
		Help:      "Popularity reads served from a fresh snapshot",
	})
	m.popularityCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_cache_misses_total",
		Help:      "Popularity reads that found the snapshot stale or absent",
	})
	m.popularityServedStale = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_served_stale_total",
		Help:      "Popularity reads served a stale snapshot while recomputation ran or failed",
	})
	m.popularityRecomputeMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_recompute_duration_ms",
		Help:      "Duration of popularity snapshot recomputation in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.popularitySnapshotAge = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_snapshot_age_seconds",
		Help:      "Age of the current popularity snapshot",
	})
	m.popularityGamesScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "popularity_games_scored",
		Help:      "Number of games covered by the current popularity snapshot",
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Total leaderboard computations",
	})
	m.leaderboardErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_errors_total",
		Help:      "Leaderboard computations that failed",
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_ms",
		Help:      "Activity store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Activity store queries that failed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordPopularityCacheHit increments the fresh-snapshot hit counter.
func RecordPopularityCacheHit() {
	globalManager.popularityCacheHits.Inc()
}

// RecordPopularityCacheMiss increments the stale/absent snapshot counter.
func RecordPopularityCacheMiss() {
	globalManager.popularityCacheMisses.Inc()
}

// RecordPopularityServedStale increments the stale-serving counter.
func RecordPopularityServedStale() {
	globalManager.popularityServedStale.Inc()
}

// RecordPopularityRecomputeDuration observes one recomputation duration.
func RecordPopularityRecomputeDuration(ms float64) {
	globalManager.popularityRecomputeMs.Observe(ms)
}

// UpdatePopularitySnapshotAge sets the current snapshot age.
func UpdatePopularitySnapshotAge(seconds float64) {
	globalManager.popularitySnapshotAge.Set(seconds)
}

// UpdatePopularityGamesScored sets the snapshot's game coverage.
func UpdatePopularityGamesScored(count int) {
	globalManager.popularityGamesScored.Set(float64(count))
}

// RecordLeaderboardQuery increments the leaderboard computation counter.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordLeaderboardError increments the leaderboard failure counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// RecordStoreQueryLatency observes one store query duration.
func RecordStoreQueryLatency(ms float64) {
	globalManager.storeQueryLatency.Observe(ms)
}

// RecordStoreError increments the store failure counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
