// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/fieldwise/internal/metrics"
)

// requestIDHeader is the header carrying the request correlation ID.
const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation ID, echoing a caller-supplied
// X-Request-ID when present.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			r.Header.Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// statusResponseWriter captures the response status code for metrics.
type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and calls the underlying WriteHeader.
func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// PrometheusMetrics records request counts and latency per endpoint.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		metrics.RecordAPIRequest(r.URL.Path, r.Method, sw.status, time.Since(start))
	})
}
