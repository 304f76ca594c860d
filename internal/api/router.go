// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package api exposes the ranking and blend optimization engines over a
// versioned JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP-layer settings the router needs.
type RouterConfig struct {
	// RateLimitReqs is the per-IP request budget per window; 0 disables
	// rate limiting.
	RateLimitReqs int

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration
}

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		}
		r.Use(PrometheusMetrics)

		r.Post("/rank", handler.Rank)
		r.Post("/compare", handler.Compare)
		r.Post("/blend", handler.Blend)
		r.Get("/health", handler.Health)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
