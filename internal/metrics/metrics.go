// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package metrics provides Prometheus instrumentation for the ranking
// engine, the blend optimizer, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking engine metrics

	RankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldwise_rank_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"outcome"}, // "ok", "error", "cache_hit"
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldwise_rank_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidateEvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldwise_candidate_evaluations_total",
			Help: "Total number of per-candidate factor evaluations",
		},
	)

	FactorsExcludedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldwise_factors_excluded_total",
			Help: "Total number of factor exclusions due to missing farm inputs",
		},
		[]string{"factor"},
	)

	// Optimizer metrics

	SolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldwise_blend_solves_total",
			Help: "Total number of fertilizer blend solves",
		},
		[]string{"outcome"}, // "feasible", "infeasible", "timeout", "error"
	)

	SolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldwise_blend_solve_duration_seconds",
			Help:    "Duration of LP solves in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SolveQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fieldwise_blend_solve_queue_depth",
			Help: "Number of solves waiting for a worker slot",
		},
	)

	// Cache metrics

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldwise_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldwise_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldwise_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldwise_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

// RecordAPIRequest records one API request observation.
func RecordAPIRequest(endpoint, method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}
