// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package metrics declares the Prometheus instruments exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset Metrics
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Duration of catalog and rating loads",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"reader"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Rows seen by the last dataset load",
		},
		[]string{"table", "outcome"}, // outcome: "kept", "dropped", "unmatched"
	)

	DatasetLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
	)

	// Model Metrics
	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_build_duration_seconds",
			Help:    "Duration of full snapshot builds (load, pivot, train)",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the active snapshot",
		},
	)

	MatrixDimensions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_matrix_dimension",
			Help: "Rating matrix size",
		},
		[]string{"axis"}, // "items", "users", "nonzero"
	)

	// Query Metrics
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of similarity queries",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "hit", "unknown_title", "cached", "error"
	)

	LeaderboardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaderboard_query_duration_seconds",
			Help:    "Duration of leaderboard queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"filtered"},
	)

	LeaderboardGenreLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_genre_lookups_total",
			Help: "Genre lookups issued while filtering the leaderboard",
		},
	)

	// Metadata Metrics
	MetadataLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_lookups_total",
			Help: "Total number of metadata lookups",
		},
		[]string{"source", "result"}, // source: "memory", "store", "remote"; result: "ok", "placeholder"
	)

	MetadataFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metadata_fetch_duration_seconds",
			Help:    "Duration of remote metadata fetches including throttle wait",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommend", "metadata"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDatasetLoad records the outcome of one dataset load.
func RecordDatasetLoad(reader string, duration time.Duration, err error) {
	DatasetLoadDuration.WithLabelValues(reader).Observe(duration.Seconds())
	if err != nil {
		DatasetLoadErrors.Inc()
	}
}

// RecordMatrixShape publishes the dimensions of the active matrix.
func RecordMatrixShape(items, users, nonzero int) {
	MatrixDimensions.WithLabelValues("items").Set(float64(items))
	MatrixDimensions.WithLabelValues("users").Set(float64(users))
	MatrixDimensions.WithLabelValues("nonzero").Set(float64(nonzero))
}

// RecordMetadataLookup counts a metadata lookup by where it was answered.
func RecordMetadataLookup(source string, placeholder bool) {
	result := "ok"
	if placeholder {
		result = "placeholder"
	}
	MetadataLookups.WithLabelValues(source, result).Inc()
}
