// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"fmt"
	"time"
)

// WeightTolerance is the permitted deviation of the weight sum from 1.0.
const WeightTolerance = 1e-6

// ScoringWeights defines the relative contribution of each factor.
// Unlike ad-hoc weight maps, the struct enforces the sum-to-one and
// non-negativity invariants at validation time, before any scoring.
type ScoringWeights struct {
	// PH is the weight for soil pH compatibility.
	PH float64 `json:"ph" koanf:"ph"`

	// Texture is the weight for soil texture compatibility.
	Texture float64 `json:"texture" koanf:"texture"`

	// Drainage is the weight for drainage class compatibility.
	Drainage float64 `json:"drainage" koanf:"drainage"`

	// Climate is the weight for climate zone and stress tolerance fit.
	Climate float64 `json:"climate" koanf:"climate"`

	// Disease is the weight for disease resistance under regional pressure.
	Disease float64 `json:"disease" koanf:"disease"`

	// Economics is the weight for expected return on investment.
	Economics float64 `json:"economics" koanf:"economics"`

	// Management is the weight for equipment and labor compatibility.
	Management float64 `json:"management" koanf:"management"`
}

// DefaultWeights returns the production default weight distribution.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		PH:         0.20,
		Texture:    0.12,
		Drainage:   0.12,
		Climate:    0.18,
		Disease:    0.15,
		Economics:  0.13,
		Management: 0.10,
	}
}

// ToMap returns the weights keyed by factor in canonical order-independent form.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) ToMap() map[Factor]float64 {
	return map[Factor]float64{
		FactorPH:         w.PH,
		FactorTexture:    w.Texture,
		FactorDrainage:   w.Drainage,
		FactorClimate:    w.Climate,
		FactorDisease:    w.Disease,
		FactorEconomics:  w.Economics,
		FactorManagement: w.Management,
	}
}

// Sum returns the total of all weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) Sum() float64 {
	return w.PH + w.Texture + w.Drainage + w.Climate + w.Disease + w.Economics + w.Management
}

// Validate checks the non-negativity and sum-to-one invariants.
// Violations return *InvalidWeightsError and must be rejected before
// any computation begins.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) Validate() error {
	for factor, weight := range w.ToMap() {
		if weight < 0 {
			return &InvalidWeightsError{
				Reason: fmt.Sprintf("factor %s has negative weight %f", factor, weight),
			}
		}
	}

	sum := w.Sum()
	if diff := sum - 1.0; diff > WeightTolerance || diff < -WeightTolerance {
		return &InvalidWeightsError{
			Reason: "weights must sum to 1.0",
			Sum:    sum,
		}
	}

	return nil
}

// WeightsFromMap builds ScoringWeights from a factor-keyed map.
// Unknown factor names are rejected so misconfigured overrides fail loudly.
func WeightsFromMap(m map[Factor]float64) (ScoringWeights, error) {
	var w ScoringWeights
	for factor, weight := range m {
		switch factor {
		case FactorPH:
			w.PH = weight
		case FactorTexture:
			w.Texture = weight
		case FactorDrainage:
			w.Drainage = weight
		case FactorClimate:
			w.Climate = weight
		case FactorDisease:
			w.Disease = weight
		case FactorEconomics:
			w.Economics = weight
		case FactorManagement:
			w.Management = weight
		default:
			return ScoringWeights{}, &InvalidWeightsError{
				Reason: fmt.Sprintf("unknown factor %q", factor),
			}
		}
	}
	return w, nil
}

// Renormalize redistributes weight over the included factors in proportion
// to their original relative weights, so included weights sum to 1.0.
// Returns ErrNoFactorsIncluded when nothing is included or all included
// weights are zero.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) Renormalize(included map[Factor]bool) (map[Factor]float64, error) {
	all := w.ToMap()

	var sum float64
	for factor, ok := range included {
		if ok {
			sum += all[factor]
		}
	}
	if sum <= 0 {
		return nil, ErrNoFactorsIncluded
	}

	out := make(map[Factor]float64, len(all))
	for factor, weight := range all {
		if included[factor] {
			out[factor] = weight / sum
		}
	}
	return out, nil
}

// EvaluatorConfig contains tunable parameters for per-factor scoring.
type EvaluatorConfig struct {
	// PHEdgeScore is the score at the edges of the pH tolerance range.
	// Default: 0.7.
	PHEdgeScore float64 `json:"ph_edge_score" koanf:"ph_edge_score"`

	// PHFloor is the minimum pH score outside the tolerance range.
	// Default: 0.3.
	PHFloor float64 `json:"ph_floor" koanf:"ph_floor"`

	// PHDecayPerUnit is how fast the score falls per pH unit past the
	// range edge. Default: 0.8 (floor reached half a unit past the edge).
	PHDecayPerUnit float64 `json:"ph_decay_per_unit" koanf:"ph_decay_per_unit"`

	// ROICap is the ROI ratio that maps to a full economics score.
	// Default: 3.0.
	ROICap float64 `json:"roi_cap" koanf:"roi_cap"`

	// ClimateMatchBase is the base climate score on a zone match.
	// Default: 0.85.
	ClimateMatchBase float64 `json:"climate_match_base" koanf:"climate_match_base"`

	// ClimateMismatchBase is the base climate score without a zone match.
	// Default: 0.45.
	ClimateMismatchBase float64 `json:"climate_mismatch_base" koanf:"climate_mismatch_base"`

	// ClimateStressBonus is the maximum bonus from stress tolerances.
	// Default: 0.15.
	ClimateStressBonus float64 `json:"climate_stress_bonus" koanf:"climate_stress_bonus"`
}

// ConfidenceConfig weighs the inputs to the confidence score.
type ConfidenceConfig struct {
	// InclusionWeight is the weight of the fraction of included factors.
	// Default: 0.5.
	InclusionWeight float64 `json:"inclusion_weight" koanf:"inclusion_weight"`

	// RegionalWeight is the weight of the regional data quality indicator.
	// Default: 0.3.
	RegionalWeight float64 `json:"regional_weight" koanf:"regional_weight"`

	// EvidenceWeight is the weight of corroborating evidence sources.
	// Default: 0.2.
	EvidenceWeight float64 `json:"evidence_weight" koanf:"evidence_weight"`

	// EvidenceSaturation is the source count at which the evidence term
	// reaches its maximum. Default: 3.
	EvidenceSaturation int `json:"evidence_saturation" koanf:"evidence_saturation"`

	// DefaultRegionalQuality is assumed when the farm record carries no
	// regional data quality indicator. Default: 0.5.
	DefaultRegionalQuality float64 `json:"default_regional_quality" koanf:"default_regional_quality"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates is the maximum number of candidates per request.
	// Default: 500.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// MaxParallelEvaluations bounds concurrent candidate evaluations.
	// Default: 8.
	MaxParallelEvaluations int `json:"max_parallel_evaluations" koanf:"max_parallel_evaluations"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether response caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live. Entries expire wholesale and
	// are never patched in place. Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// Config contains all configuration for the ranking engine.
type Config struct {
	// Weights defines the factor weight distribution.
	// Must satisfy ScoringWeights.Validate.
	Weights ScoringWeights `json:"weights" koanf:"weights"`

	// Evaluator contains per-factor scoring parameters.
	Evaluator EvaluatorConfig `json:"evaluator" koanf:"evaluator"`

	// Confidence contains confidence score parameters.
	Confidence ConfidenceConfig `json:"confidence" koanf:"confidence"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Evaluator: EvaluatorConfig{
			PHEdgeScore:         0.7,
			PHFloor:             0.3,
			PHDecayPerUnit:      0.8,
			ROICap:              3.0,
			ClimateMatchBase:    0.85,
			ClimateMismatchBase: 0.45,
			ClimateStressBonus:  0.15,
		},
		Confidence: ConfidenceConfig{
			InclusionWeight:        0.5,
			RegionalWeight:         0.3,
			EvidenceWeight:         0.2,
			EvidenceSaturation:     3,
			DefaultRegionalQuality: 0.5,
		},
		Limits: LimitsConfig{
			MaxCandidates:          500,
			MaxParallelEvaluations: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.Evaluator.PHEdgeScore < 0 || c.Evaluator.PHEdgeScore > 1 {
		return fmt.Errorf("evaluator.ph_edge_score must be in [0, 1], got %f", c.Evaluator.PHEdgeScore)
	}
	if c.Evaluator.PHFloor < 0 || c.Evaluator.PHFloor > c.Evaluator.PHEdgeScore {
		return fmt.Errorf("evaluator.ph_floor must be in [0, ph_edge_score], got %f", c.Evaluator.PHFloor)
	}
	if c.Evaluator.PHDecayPerUnit <= 0 {
		return fmt.Errorf("evaluator.ph_decay_per_unit must be positive, got %f", c.Evaluator.PHDecayPerUnit)
	}
	if c.Evaluator.ROICap <= 0 {
		return fmt.Errorf("evaluator.roi_cap must be positive, got %f", c.Evaluator.ROICap)
	}

	confSum := c.Confidence.InclusionWeight + c.Confidence.RegionalWeight + c.Confidence.EvidenceWeight
	if diff := confSum - 1.0; diff > WeightTolerance || diff < -WeightTolerance {
		return fmt.Errorf("confidence weights must sum to 1.0, got %f", confSum)
	}
	if c.Confidence.EvidenceSaturation < 1 {
		return fmt.Errorf("confidence.evidence_saturation must be positive, got %d", c.Confidence.EvidenceSaturation)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.MaxParallelEvaluations < 1 {
		return fmt.Errorf("limits.max_parallel_evaluations must be positive, got %d", c.Limits.MaxParallelEvaluations)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	out := *c
	return &out
}
