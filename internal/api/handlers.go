// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldwise/internal/engine"
	"github.com/tomtom215/fieldwise/internal/optimizer"
	"github.com/tomtom215/fieldwise/internal/validation"
)

// maxBodyBytes bounds request bodies; candidate catalogs and fertilizer
// option lists fit comfortably under 1 MiB.
const maxBodyBytes = 1 << 20

// Handler implements the HTTP API endpoints.
type Handler struct {
	engine    *engine.Engine
	pool      *optimizer.Pool
	startedAt time.Time
}

// NewHandler creates an API handler around the ranking engine and the
// blend solve pool.
func NewHandler(eng *engine.Engine, pool *optimizer.Pool) *Handler {
	return &Handler{
		engine:    eng,
		pool:      pool,
		startedAt: time.Now(),
	}
}

// decodeBody decodes a JSON request body into dst, enforcing the size cap
// and rejecting unknown behavior only via validation, not strict decoding.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				"request body exceeds size limit", err)
			return false
		}
		respondError(w, http.StatusBadRequest, CodeInvalidJSON,
			"request body is not valid JSON", err)
		return false
	}
	return true
}

// rankAPIRequest wraps the engine request with API-level validation tags.
type rankAPIRequest struct {
	Farm       engine.FarmConditions `json:"farm"`
	Candidates []engine.Candidate    `json:"candidates" validate:"required,min=1"`
	Compare    bool                  `json:"compare,omitempty"`
}

// Rank handles POST /api/v1/rank.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, false)
}

// Compare handles POST /api/v1/compare. It is the rank endpoint with the
// comparison matrix forced on, so it shares the two-candidate minimum.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, true)
}

func (h *Handler) rank(w http.ResponseWriter, r *http.Request, forceCompare bool) {
	var req rankAPIRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, verr.Error(), nil)
		return
	}

	resp, err := h.engine.Rank(r.Context(), engine.RankRequest{
		Farm:       req.Farm,
		Candidates: req.Candidates,
		Compare:    req.Compare || forceCompare,
		RequestID:  r.Header.Get(requestIDHeader),
	})
	if err != nil {
		status, code := rankErrorStatus(err)
		respondError(w, status, code, err.Error(), err)
		return
	}

	respondData(w, http.StatusOK, resp)
}

// rankErrorStatus maps engine errors to HTTP status and error code.
func rankErrorStatus(err error) (int, string) {
	var (
		weightsErr *engine.InvalidWeightsError
		tooFewErr  *engine.InsufficientCandidatesError
		tooManyErr *engine.TooManyCandidatesError
		dataErr    *engine.DataInsufficientError
	)
	switch {
	case errors.As(err, &weightsErr):
		return http.StatusBadRequest, CodeInvalidWeights
	case errors.As(err, &tooFewErr):
		return http.StatusBadRequest, CodeTooFewCandidates
	case errors.As(err, &tooManyErr):
		return http.StatusBadRequest, CodeTooManyCandidates
	case errors.As(err, &dataErr):
		return http.StatusUnprocessableEntity, CodeNoFactors
	case errors.Is(err, engine.ErrNoCandidates):
		return http.StatusBadRequest, CodeValidationError
	case errors.Is(err, engine.ErrNoFactorsIncluded):
		return http.StatusUnprocessableEntity, CodeNoFactors
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// blendAPIRequest wraps the optimizer request with API-level validation tags.
// Requirements may be empty: no positive targets is trivially feasible with
// an all-zero blend, not a malformed request.
type blendAPIRequest struct {
	Requirements           map[string]float64           `json:"requirements"`
	Options                []optimizer.FertilizerOption `json:"options" validate:"required,min=1"`
	Constraints            optimizer.Constraints        `json:"constraints"`
	FieldAcres             float64                      `json:"field_acres" validate:"required,gt=0"`
	ExpectedRevenuePerAcre float64                      `json:"expected_revenue_per_acre" validate:"gte=0"`
}

// Blend handles POST /api/v1/blend.
//
// An infeasible problem is not a request error: the response is 200 with
// feasible=false, the binding constraint, and a diagnostic rationale.
func (h *Handler) Blend(w http.ResponseWriter, r *http.Request) {
	var req blendAPIRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, verr.Error(), nil)
		return
	}

	sol, err := h.pool.Solve(r.Context(), optimizer.BlendRequest{
		Requirements:           req.Requirements,
		Options:                req.Options,
		Constraints:            req.Constraints,
		FieldAcres:             req.FieldAcres,
		ExpectedRevenuePerAcre: req.ExpectedRevenuePerAcre,
		RequestID:              r.Header.Get(requestIDHeader),
	})
	if err != nil {
		var (
			validationErr *optimizer.ValidationError
			infeasibleErr *optimizer.InfeasibleError
		)
		switch {
		case errors.As(err, &infeasibleErr) && sol != nil:
			respondData(w, http.StatusOK, sol)
		case errors.As(err, &validationErr):
			respondError(w, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
		case errors.Is(err, optimizer.ErrSolveTimeout):
			respondError(w, http.StatusGatewayTimeout, CodeSolveTimeout,
				"blend solve exceeded the configured timeout", err)
		case errors.Is(err, optimizer.ErrPoolClosed):
			respondError(w, http.StatusServiceUnavailable, CodeServiceClosed,
				"service is shutting down", err)
		default:
			respondError(w, http.StatusInternalServerError, CodeInternalError,
				"blend solve failed", err)
		}
		return
	}

	respondData(w, http.StatusOK, sol)
}

// healthStatus is the health endpoint payload.
type healthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	CacheKeys     int     `json:"cache_keys"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.CacheStats()
	hitRate := 0.0
	if total := stats.Hits + stats.Misses; total > 0 {
		hitRate = float64(stats.Hits) / float64(total)
	}

	respondData(w, http.StatusOK, healthStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CacheHitRate:  hitRate,
		CacheKeys:     stats.Keys,
	})
}
