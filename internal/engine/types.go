// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import "time"

// Factor identifies a single agronomic compatibility factor.
type Factor string

const (
	// FactorPH measures soil pH compatibility with the variety's tolerance range.
	FactorPH Factor = "ph"
	// FactorTexture measures soil texture compatibility.
	FactorTexture Factor = "texture"
	// FactorDrainage measures drainage class compatibility.
	FactorDrainage Factor = "drainage"
	// FactorClimate measures climate zone and stress tolerance fit.
	FactorClimate Factor = "climate"
	// FactorDisease measures disease resistance against regional pressure.
	FactorDisease Factor = "disease"
	// FactorEconomics measures expected return on investment.
	FactorEconomics Factor = "economics"
	// FactorManagement measures equipment and labor compatibility.
	FactorManagement Factor = "management"
)

// Factors lists all factors in canonical evaluation order.
// Results and comparison matrices always use this ordering.
var Factors = []Factor{
	FactorPH,
	FactorTexture,
	FactorDrainage,
	FactorClimate,
	FactorDisease,
	FactorEconomics,
	FactorManagement,
}

// Level is a coarse four-step grade used for stress tolerances,
// disease resistance, and equipment/labor demands.
type Level int

const (
	// LevelNone indicates no tolerance, resistance, or capability.
	LevelNone Level = iota
	// LevelLow indicates minimal tolerance, resistance, or capability.
	LevelLow
	// LevelModerate indicates moderate tolerance, resistance, or capability.
	LevelModerate
	// LevelHigh indicates strong tolerance, resistance, or capability.
	LevelHigh
)

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Fraction returns the level as a score in [0, 1].
func (l Level) Fraction() float64 {
	if l <= LevelNone {
		return 0
	}
	if l >= LevelHigh {
		return 1
	}
	return float64(l) / float64(LevelHigh)
}

// Texture is a USDA-style soil texture class.
type Texture string

// Soil texture classes ordered from coarsest to finest.
const (
	TextureSand      Texture = "sand"
	TextureSandyLoam Texture = "sandy_loam"
	TextureLoam      Texture = "loam"
	TextureSiltLoam  Texture = "silt_loam"
	TextureClayLoam  Texture = "clay_loam"
	TextureClay      Texture = "clay"
)

// Drainage is a soil drainage class.
type Drainage string

// Drainage classes ordered from wettest to driest.
const (
	DrainagePoor         Drainage = "poor"
	DrainageSomewhatPoor Drainage = "somewhat_poor"
	DrainageModerate     Drainage = "moderate"
	DrainageWell         Drainage = "well"
	DrainageExcessive    Drainage = "excessive"
)

// Candidate is one crop variety under consideration.
// Candidates are injected by the caller and immutable within a request.
type Candidate struct {
	// ID is the unique variety identifier. Used as the final ranking tie-break.
	ID string `json:"id"`

	// Name is the display name of the variety.
	Name string `json:"name"`

	// PHMin and PHMax bound the variety's soil pH tolerance range.
	PHMin float64 `json:"ph_min"`
	PHMax float64 `json:"ph_max"`

	// PreferredTextures lists soil textures the variety grows best in.
	PreferredTextures []Texture `json:"preferred_textures"`

	// DrainageNeed is the drainage class the variety requires.
	DrainageNeed Drainage `json:"drainage_need"`

	// ClimateZones lists climate zone identifiers the variety is adapted to.
	ClimateZones []string `json:"climate_zones"`

	// DroughtTolerance, HeatTolerance, and ColdTolerance grade resilience
	// to the corresponding climate stresses.
	DroughtTolerance Level `json:"drought_tolerance"`
	HeatTolerance    Level `json:"heat_tolerance"`
	ColdTolerance    Level `json:"cold_tolerance"`

	// DiseaseResistance maps disease name to resistance level.
	// Diseases absent from the map are treated as fully susceptible.
	DiseaseResistance map[string]Level `json:"disease_resistance,omitempty"`

	// YieldMin and YieldMax bound expected yield in units per acre.
	YieldMin float64 `json:"yield_min"`
	YieldMax float64 `json:"yield_max"`

	// MaturityDays is days from planting to harvest.
	MaturityDays int `json:"maturity_days"`

	// SeedCostPerAcre is the catalog seed cost in dollars per acre.
	SeedCostPerAcre float64 `json:"seed_cost_per_acre"`

	// PricePerUnit is the expected sale price per yield unit.
	PricePerUnit float64 `json:"price_per_unit"`

	// EquipmentDemand and LaborDemand grade the management intensity
	// the variety requires.
	EquipmentDemand Level `json:"equipment_demand"`
	LaborDemand     Level `json:"labor_demand"`
}

// FarmConditions describes one farm for one request.
// Zero values mark optional inputs as absent: a factor whose required
// input is absent is excluded from scoring rather than scored as zero.
type FarmConditions struct {
	// SoilPH is the measured soil pH. Zero means not measured.
	SoilPH float64 `json:"soil_ph,omitempty"`

	// Texture is the dominant soil texture class. Empty means unknown.
	Texture Texture `json:"texture,omitempty"`

	// OrganicMatterPct is the soil organic matter percentage.
	OrganicMatterPct float64 `json:"organic_matter_pct,omitempty"`

	// Drainage is the field drainage class. Empty means unknown.
	Drainage Drainage `json:"drainage,omitempty"`

	// ClimateZone is the farm's climate zone identifier. Empty means unknown.
	ClimateZone string `json:"climate_zone,omitempty"`

	// DiseasePressure maps disease name to regional pressure intensity
	// in [0, 1]. Nil means no regional disease data is available.
	DiseasePressure map[string]float64 `json:"disease_pressure,omitempty"`

	// FieldAcres is the field area in acres.
	FieldAcres float64 `json:"field_acres"`

	// Budget is the total available budget in dollars. Zero means unlimited.
	Budget float64 `json:"budget,omitempty"`

	// Management describes available equipment and labor.
	// Nil means no management data is available.
	Management *ManagementProfile `json:"management,omitempty"`

	// RegionalDataQuality grades how well regional datasets cover this
	// farm's location, in [0, 1]. Feeds the confidence score.
	RegionalDataQuality float64 `json:"regional_data_quality,omitempty"`

	// EvidenceSources counts independent data sources corroborating the
	// farm inputs (soil test, satellite, extension records).
	EvidenceSources int `json:"evidence_sources,omitempty"`

	// WeightOverrides optionally replaces the configured scoring weights
	// for this request. Must satisfy the same invariants.
	WeightOverrides map[Factor]float64 `json:"weight_overrides,omitempty"`
}

// ManagementProfile grades the farm's operational capabilities.
type ManagementProfile struct {
	// Equipment grades available machinery.
	Equipment Level `json:"equipment"`

	// Labor grades available workforce.
	Labor Level `json:"labor"`
}

// FactorScore is one factor's compatibility score for one candidate.
type FactorScore struct {
	// Factor identifies the scored factor.
	Factor Factor `json:"factor"`

	// Value is the normalized score in [0, 1]. Meaningless when not included.
	Value float64 `json:"value"`

	// Included is false when the required farm input was entirely absent.
	// Excluded factors do not participate in aggregation.
	Included bool `json:"included"`

	// Weight is the renormalized weight applied during aggregation.
	Weight float64 `json:"weight"`

	// Detail holds the specific values that drove the score, for
	// deterministic explanation templates.
	Detail string `json:"detail,omitempty"`
}

// SuitabilityResult is the ranked outcome for one candidate.
type SuitabilityResult struct {
	// CandidateID identifies the candidate.
	CandidateID string `json:"candidate_id"`

	// CandidateName is the candidate's display name.
	CandidateName string `json:"candidate_name"`

	// OverallScore is the weighted aggregate score in [0, 1].
	OverallScore float64 `json:"overall_score"`

	// Confidence measures data support for the score, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Factors holds per-factor scores in canonical order.
	Factors []FactorScore `json:"factors"`

	// Rank is the 1-based deterministic rank within the request.
	Rank int `json:"rank"`

	// Rationale is ordered, templated explanation text.
	Rationale []string `json:"rationale,omitempty"`

	// Warnings lists non-fatal issues such as excluded factors.
	Warnings []string `json:"warnings,omitempty"`
}

// ComparisonMatrix is a criteria-by-candidate score grid.
type ComparisonMatrix struct {
	// Criteria lists the factor names, one per row, in canonical order.
	Criteria []Factor `json:"criteria"`

	// CandidateIDs lists the candidate columns in rank order.
	CandidateIDs []string `json:"candidate_ids"`

	// Values holds factor scores: Values[row][col] is the score of
	// CandidateIDs[col] on Criteria[row]. Excluded factors hold -1.
	Values [][]float64 `json:"values"`

	// Winners maps each criterion to the candidate(s) with the maximum
	// included score. Ties are listed as co-winners.
	Winners map[Factor][]string `json:"winners"`

	// OverallWinner is the rank-1 candidate.
	OverallWinner string `json:"overall_winner"`
}

// RankRequest carries one ranking request.
type RankRequest struct {
	// Farm describes the farm conditions.
	Farm FarmConditions `json:"farm"`

	// Candidates is the injected candidate list.
	Candidates []Candidate `json:"candidates"`

	// Compare requests a cross-candidate comparison matrix.
	// Requires at least two candidates.
	Compare bool `json:"compare,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// RankResponse is the outcome of a ranking request.
type RankResponse struct {
	// Results holds one entry per candidate, ordered by rank.
	Results []SuitabilityResult `json:"results"`

	// Comparison is present when the request asked for one.
	Comparison *ComparisonMatrix `json:"comparison,omitempty"`

	// Warnings lists request-level warnings such as globally excluded factors.
	Warnings []string `json:"warnings,omitempty"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// CandidateCount is the number of candidates evaluated.
	CandidateCount int `json:"candidate_count"`

	// FactorsIncluded counts factors that participated in aggregation.
	FactorsIncluded int `json:"factors_included"`

	// LatencyMS is the total request latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}
