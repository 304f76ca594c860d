// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/fieldwise/internal/cache"
	"github.com/tomtom215/fieldwise/internal/metrics"
)

// Engine coordinates candidate evaluation, aggregation, ranking,
// comparison, and explanation for ranking requests.
// It is safe for concurrent use.
//
// The engine performs no I/O of its own: candidate lists and farm
// conditions are injected by callers, and the response cache is the only
// state that outlives a request.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	evaluator *Evaluator

	// cache memoizes responses by input fingerprint; nil when disabled.
	cache *cache.Cache

	// group collapses concurrent identical requests into one computation.
	group singleflight.Group
}

// NewEngine creates a ranking engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "engine").Logger(),
		evaluator: NewEvaluator(cfg.Evaluator),
	}

	if cfg.Cache.Enabled {
		e.cache = cache.New(cfg.Cache.TTL)
	}

	return e, nil
}

// Close releases engine resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats returns response cache counters, or zeros when caching is
// disabled.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{}
	}
	return e.cache.GetStats()
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// rankKey is the normalized input fingerprint for a ranking request.
// RequestID is deliberately absent so identical inputs share a cache entry.
type rankKey struct {
	Farm       FarmConditions `json:"farm"`
	Candidates []Candidate    `json:"candidates"`
	Compare    bool           `json:"compare"`
	Weights    ScoringWeights `json:"weights"`
}

// Rank evaluates, aggregates, ranks, and explains all candidates in the
// request. Weight configuration errors are rejected before any scoring.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req RankRequest) (*RankResponse, error) {
	start := time.Now()

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int("candidates", len(req.Candidates)).
		Logger()

	if len(req.Candidates) == 0 {
		metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		return nil, ErrNoCandidates
	}
	if len(req.Candidates) > e.config.Limits.MaxCandidates {
		metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		return nil, &TooManyCandidatesError{Got: len(req.Candidates), Limit: e.config.Limits.MaxCandidates}
	}
	if req.Compare && len(req.Candidates) < 2 {
		metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		return nil, &InsufficientCandidatesError{Got: len(req.Candidates)}
	}

	weights, err := e.requestWeights(req.Farm)
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	key := cache.Fingerprint("rank", rankKey{
		Farm:       req.Farm,
		Candidates: req.Candidates,
		Compare:    req.Compare,
		Weights:    weights,
	})

	if resp := e.checkCache(key, req.RequestID, start); resp != nil {
		logger.Debug().Msg("cache hit")
		metrics.RankRequestsTotal.WithLabelValues("cache_hit").Inc()
		return resp, nil
	}

	// Concurrent identical requests trigger only one computation. The
	// cache is re-checked and populated inside the flight, so a request
	// that narrowly misses a finished flight finds its result instead of
	// recomputing.
	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		if e.cache != nil {
			if cached, ok := e.cache.Get(key); ok {
				return cached.(*RankResponse), nil
			}
		}
		resp, err := e.compute(ctx, req, weights)
		if err != nil {
			return nil, err
		}
		if e.cache != nil {
			e.cache.Set(key, resp)
		}
		return resp, nil
	})
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	resp := e.stampResponse(v.(*RankResponse), req.RequestID, start, false)

	metrics.RankRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RankDuration.Observe(time.Since(start).Seconds())
	logger.Debug().
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("ranking complete")

	return resp, nil
}

// requestWeights resolves the effective scoring weights for one request,
// applying per-request overrides when present. Invalid configurations are
// rejected before any computation begins.
//
//nolint:gocritic // hugeParam: farm passed by value for purity
func (e *Engine) requestWeights(farm FarmConditions) (ScoringWeights, error) {
	if len(farm.WeightOverrides) == 0 {
		return e.config.Weights, nil
	}

	weights, err := WeightsFromMap(farm.WeightOverrides)
	if err != nil {
		return ScoringWeights{}, err
	}
	if err := weights.Validate(); err != nil {
		return ScoringWeights{}, err
	}
	return weights, nil
}

// checkCache returns a stamped copy of a cached response, or nil.
func (e *Engine) checkCache(key, requestID string, start time.Time) *RankResponse {
	if e.cache == nil {
		return nil
	}

	v, ok := e.cache.Get(key)
	if !ok {
		metrics.CacheMisses.Inc()
		return nil
	}
	metrics.CacheHits.Inc()

	return e.stampResponse(v.(*RankResponse), requestID, start, true)
}

// stampResponse returns a copy of resp with request-specific metadata.
// Cached response bodies are shared and never mutated.
func (e *Engine) stampResponse(resp *RankResponse, requestID string, start time.Time, cacheHit bool) *RankResponse {
	out := *resp
	out.Metadata.RequestID = requestID
	out.Metadata.LatencyMS = time.Since(start).Milliseconds()
	out.Metadata.CacheHit = cacheHit
	out.Metadata.Timestamp = time.Now()
	return &out
}

// compute runs the full evaluation pipeline for one request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) compute(ctx context.Context, req RankRequest, weights ScoringWeights) (*RankResponse, error) {
	aggregator, err := NewAggregator(weights, e.config.Confidence)
	if err != nil {
		return nil, err
	}

	results, err := e.evaluateAll(ctx, req, aggregator)
	if err != nil {
		return nil, err
	}

	RankResults(results)

	resp := &RankResponse{
		Results:  results,
		Warnings: globalExclusionWarnings(results),
		Metadata: ResponseMetadata{
			CandidateCount:  len(results),
			FactorsIncluded: factorsIncludedAnywhere(results),
		},
	}

	if req.Compare {
		matrix, err := Compare(results)
		if err != nil {
			return nil, err
		}
		resp.Comparison = matrix
	}

	return resp, nil
}

// evaluateAll scores every candidate. Evaluations are pure and
// independent, so they fan out across a bounded set of goroutines.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) evaluateAll(ctx context.Context, req RankRequest, aggregator *Aggregator) ([]SuitabilityResult, error) {
	results := make([]SuitabilityResult, len(req.Candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Limits.MaxParallelEvaluations)

	for i, candidate := range req.Candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			scores := e.evaluator.Evaluate(candidate, req.Farm)
			metrics.CandidateEvaluationsTotal.Inc()
			for _, s := range scores {
				if !s.Included {
					metrics.FactorsExcludedTotal.WithLabelValues(string(s.Factor)).Inc()
				}
			}

			overall, confidence, factors, err := aggregator.Aggregate(scores, req.Farm)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", candidate.ID, err)
			}

			rationale, warnings := ExplainFactors(overall, factors)
			results[i] = SuitabilityResult{
				CandidateID:   candidate.ID,
				CandidateName: candidate.Name,
				OverallScore:  overall,
				Confidence:    confidence,
				Factors:       factors,
				Rationale:     rationale,
				Warnings:      warnings,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// globalExclusionWarnings lists factors that were excluded for every
// candidate, so data gaps are surfaced at the request level too.
func globalExclusionWarnings(results []SuitabilityResult) []string {
	warnings := make([]string, 0)
	for _, factor := range Factors {
		detail := ""
		allExcluded := true
		for i := range results {
			for _, s := range results[i].Factors {
				if s.Factor != factor {
					continue
				}
				if s.Included {
					allExcluded = false
				} else if detail == "" {
					detail = s.Detail
				}
			}
			if !allExcluded {
				break
			}
		}
		if allExcluded && detail != "" {
			warnings = append(warnings, fmt.Sprintf("%s excluded for all candidates: %s", factorLabel[factor], detail))
		}
	}
	return warnings
}

// factorsIncludedAnywhere counts factors included for at least one candidate.
func factorsIncludedAnywhere(results []SuitabilityResult) int {
	seen := make(map[Factor]bool)
	for i := range results {
		for _, s := range results[i].Factors {
			if s.Included {
				seen[s.Factor] = true
			}
		}
	}
	return len(seen)
}
