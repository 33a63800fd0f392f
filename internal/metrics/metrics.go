// Package metrics provides Prometheus metrics for the catalog service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SuggestRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_suggest_rate_limited_total",
			Help: "Suggest requests rejected by the rate limiter",
		},
	)

	// Catalog Metrics
	CatalogCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_catalog_cards",
			Help: "Number of cards in the active catalog snapshot",
		},
	)

	CatalogSets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_catalog_sets",
			Help: "Number of sets in the active catalog snapshot",
		},
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_catalog_loads_total",
			Help: "Catalog load attempts by result",
		},
		[]string{"result"}, // "success", "integrity_error", "superseded"
	)

	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_index_build_duration_seconds",
			Help:    "Time taken to build the search index for a catalog snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Query Metrics
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_query_duration_seconds",
			Help:    "Time taken to evaluate a catalog query (cache misses only)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_query_cache_hits_total",
			Help: "Query result cache hit count",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_query_cache_misses_total",
			Help: "Query result cache miss count",
		},
	)

	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_query_errors_total",
			Help: "Query errors by type",
		},
		[]string{"type"}, // "invalid_filter", "invalid_sort", "stale_index"
	)

	SuggestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_suggest_requests_total",
			Help: "Suggest requests by result",
		},
		[]string{"result"}, // "hit", "empty", "not_ready"
	)

	// Price Metrics
	PriceTableSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_price_table_size",
			Help: "Number of cards with at least one price in the active price table",
		},
	)

	PriceRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_price_refreshes_total",
			Help: "Price table refreshes by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	PriceRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_price_refresh_duration_seconds",
			Help:    "Time taken to reload the price table from the database",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
	)
)
