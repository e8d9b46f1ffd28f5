package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the crypto valuation service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valuation_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valuation_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_cache_operations_total",
			Help: "Total number of report store operations",
		},
		[]string{"operation", "result"}, // operation: get/set/delete, result: hit/miss/success/error
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "valuation_cache_keys",
			Help: "Number of keys currently in cache",
		},
		[]string{"cache_type"},
	)

	DedupCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_dedup_calls_total",
			Help: "Deduplicated quote source calls by outcome",
		},
		[]string{"cache", "outcome"}, // outcome: miss/hit/shared
	)

	// External API Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_external_api_requests_total",
			Help: "Total number of quote source requests",
		},
		[]string{"service", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valuation_external_api_request_duration_seconds",
			Help:    "Quote source request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_external_api_retries_total",
			Help: "Total number of quote source retry attempts",
		},
		[]string{"service", "attempt"},
	)

	// Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_resolutions_total",
			Help: "Price resolutions by asset, winning step and result",
		},
		[]string{"asset", "step", "result"}, // result: resolved/exhausted/identity/unknown
	)

	FallbackAdvancementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_fallback_advancements_total",
			Help: "Times a fallback chain advanced past a step",
		},
		[]string{"asset", "step", "reason"}, // reason: error/unusable
	)

	// Valuation Metrics
	ValuationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_runs_total",
			Help: "Total number of valuation passes",
		},
		[]string{"result"}, // result: complete/partial/error
	)

	ValuationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "valuation_run_duration_seconds",
			Help:    "Duration of a full valuation pass",
			Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
	)

	PortfolioTotalUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "valuation_portfolio_total_usd",
			Help: "Grand total of the last valuation in USD",
		},
	)

	AssetPriceUSD = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "valuation_asset_price_usd",
			Help: "Last resolved price per asset in USD",
		},
		[]string{"asset"},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuation_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	OutboundRateLimitWaits = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valuation_outbound_rate_limit_wait_seconds",
			Help:    "Time spent waiting for an outbound provider token",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"service"},
	)

	// WebSocket Metrics
	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "valuation_stream_subscribers",
			Help: "Number of connected report stream clients",
		},
	)

	StreamDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valuation_stream_drops_total",
			Help: "Reportes descartados por canal de suscriptor lleno",
		},
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "valuation_application_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheKeys updates the number of keys held by a backend
func UpdateCacheKeys(cacheType string, keys int) {
	CacheKeys.WithLabelValues(cacheType).Set(float64(keys))
}

// RecordDedupCall records whether a call ran the producer, hit a resolved entry or joined one in flight
func RecordDedupCall(cache, outcome string) {
	DedupCallsTotal.WithLabelValues(cache, outcome).Inc()
}

// RecordExternalAPICall records external API call metrics
func RecordExternalAPICall(service string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service).Observe(duration)
}

// RecordExternalAPIRetry records external API retry attempts
func RecordExternalAPIRetry(service string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, strconv.Itoa(attempt)).Inc()
}

// RecordResolution records the outcome of resolving one asset
func RecordResolution(asset, step, result string) {
	ResolutionsTotal.WithLabelValues(asset, step, result).Inc()
}

// RecordFallbackAdvancement records a chain moving past a failed or unusable step
func RecordFallbackAdvancement(asset, step, reason string) {
	FallbackAdvancementsTotal.WithLabelValues(asset, step, reason).Inc()
}

// RecordValuationRun records a valuation pass
func RecordValuationRun(result string, duration float64) {
	ValuationRunsTotal.WithLabelValues(result).Inc()
	ValuationDuration.Observe(duration)
}

// UpdatePortfolioTotal updates the grand total gauge
func UpdatePortfolioTotal(totalUSD float64) {
	PortfolioTotalUSD.Set(totalUSD)
}

// UpdateAssetPrice updates the per-asset price gauge
func UpdateAssetPrice(asset string, price float64) {
	AssetPriceUSD.WithLabelValues(asset).Set(price)
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// RecordOutboundWait records how long a provider call waited for its token
func RecordOutboundWait(service string, seconds float64) {
	OutboundRateLimitWaits.WithLabelValues(service).Observe(seconds)
}

// UpdateStreamSubscribers sets the connected stream clients gauge
func UpdateStreamSubscribers(n int) {
	StreamSubscribers.Set(float64(n))
}

// RecordStreamDrop incrementa contador de descartes por canal lleno
func RecordStreamDrop() {
	StreamDrops.Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, goVersion string) {
	ApplicationInfo.WithLabelValues(version, goVersion).Set(1)
}
