// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package metrics defines the Prometheus instrumentation for the Insights
// service. Metrics are registered with promauto at package load and
// exposed on /metrics by the API router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WarehouseQueryDuration tracks wall time of warehouse queries.
	WarehouseQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_duration_seconds",
			Help:    "Duration of warehouse query round-trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WarehouseQueryErrors counts failed warehouse queries by failure kind
	// (transport, upstream, malformed).
	WarehouseQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_query_errors_total",
			Help: "Total warehouse query failures by kind",
		},
		[]string{"kind"},
	)

	// CircuitBreakerState reports breaker state per breaker name
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// APIRequestsTotal counts API requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration tracks API handler latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIActiveRequests gauges in-flight API requests.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// CacheHits counts analytics cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_hits_total",
			Help: "Total analytics cache hits",
		},
	)

	// CacheMisses counts analytics cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_misses_total",
			Help: "Total analytics cache misses",
		},
	)
)
