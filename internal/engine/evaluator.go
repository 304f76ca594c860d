// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"fmt"
	"sort"
)

// Evaluator computes independent per-factor compatibility scores for one
// candidate against one set of farm conditions.
//
// Evaluate is a pure function: identical inputs always produce identical
// outputs, with no I/O and no shared state. Evaluations for distinct
// candidates may therefore run in parallel without locks.
type Evaluator struct {
	cfg EvaluatorConfig
}

// NewEvaluator creates an evaluator with the given scoring parameters.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate scores one candidate on every factor, in canonical order.
// Factors whose required farm input is entirely absent are returned with
// Included=false and are excluded from aggregation, not scored as zero.
//
//nolint:gocritic // hugeParam: candidate and farm passed by value for purity
func (e *Evaluator) Evaluate(c Candidate, f FarmConditions) []FactorScore {
	return []FactorScore{
		e.scorePH(c, f),
		e.scoreTexture(c, f),
		e.scoreDrainage(c, f),
		e.scoreClimate(c, f),
		e.scoreDisease(c, f),
		e.scoreEconomics(c),
		e.scoreManagement(c, f),
	}
}

// scorePH scores soil pH against the candidate's tolerance range.
// Inside the range the score decays linearly from 1.0 at the midpoint to
// PHEdgeScore at the edges; outside it decays by PHDecayPerUnit per pH
// unit past the edge, floored at PHFloor.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scorePH(c Candidate, f FarmConditions) FactorScore {
	if f.SoilPH <= 0 {
		return excluded(FactorPH, "soil pH")
	}

	lo, hi := c.PHMin, c.PHMax
	if hi < lo {
		lo, hi = hi, lo
	}
	mid := (lo + hi) / 2
	half := (hi - lo) / 2

	var score float64
	switch {
	case f.SoilPH >= lo && f.SoilPH <= hi:
		if half == 0 {
			score = 1.0
		} else {
			off := f.SoilPH - mid
			if off < 0 {
				off = -off
			}
			score = 1.0 - (1.0-e.cfg.PHEdgeScore)*off/half
		}
	case f.SoilPH < lo:
		score = e.cfg.PHEdgeScore - e.cfg.PHDecayPerUnit*(lo-f.SoilPH)
	default:
		score = e.cfg.PHEdgeScore - e.cfg.PHDecayPerUnit*(f.SoilPH-hi)
	}
	if score < e.cfg.PHFloor {
		score = e.cfg.PHFloor
	}

	return FactorScore{
		Factor:   FactorPH,
		Value:    clamp01(score),
		Included: true,
		Detail:   fmt.Sprintf("soil pH %.1f against tolerance [%.1f, %.1f]", f.SoilPH, lo, hi),
	}
}

// scoreTexture scores the farm texture against the candidate's preferred
// textures. An exact match scores 1.0; otherwise the best value from the
// texture-similarity table across all preferred textures is used.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreTexture(c Candidate, f FarmConditions) FactorScore {
	if f.Texture == "" {
		return excluded(FactorTexture, "soil texture")
	}
	if _, ok := textureOrder[f.Texture]; !ok {
		return excluded(FactorTexture, fmt.Sprintf("recognized soil texture (got %q)", f.Texture))
	}

	if len(c.PreferredTextures) == 0 {
		// Variety states no preference; neutral partial credit.
		return FactorScore{
			Factor:   FactorTexture,
			Value:    0.5,
			Included: true,
			Detail:   fmt.Sprintf("farm texture %s, variety lists no texture preference", f.Texture),
		}
	}

	best := 0.0
	bestPref := c.PreferredTextures[0]
	for _, pref := range c.PreferredTextures {
		sim, ok := TextureSimilarity(pref, f.Texture)
		if ok && sim > best {
			best = sim
			bestPref = pref
		}
	}

	return FactorScore{
		Factor:   FactorTexture,
		Value:    clamp01(best),
		Included: true,
		Detail:   fmt.Sprintf("farm texture %s against preferred %s", f.Texture, bestPref),
	}
}

// scoreDrainage looks up the (requirement, farm class) pair in the
// drainage compatibility table.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreDrainage(c Candidate, f FarmConditions) FactorScore {
	if f.Drainage == "" {
		return excluded(FactorDrainage, "drainage class")
	}
	if _, ok := drainageOrder[f.Drainage]; !ok {
		return excluded(FactorDrainage, fmt.Sprintf("recognized drainage class (got %q)", f.Drainage))
	}

	if c.DrainageNeed == "" {
		return FactorScore{
			Factor:   FactorDrainage,
			Value:    0.5,
			Included: true,
			Detail:   fmt.Sprintf("farm drainage %s, variety lists no drainage requirement", f.Drainage),
		}
	}

	score, ok := DrainageScore(c.DrainageNeed, f.Drainage)
	if !ok {
		score = 0.5
	}

	return FactorScore{
		Factor:   FactorDrainage,
		Value:    clamp01(score),
		Included: true,
		Detail:   fmt.Sprintf("farm drainage %s against required %s", f.Drainage, c.DrainageNeed),
	}
}

// scoreClimate combines the climate-zone match with the candidate's
// drought, heat, and cold tolerances. A zone match sets a high base; the
// averaged stress tolerances add a bounded bonus.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreClimate(c Candidate, f FarmConditions) FactorScore {
	if f.ClimateZone == "" {
		return excluded(FactorClimate, "climate zone")
	}

	matched := false
	for _, zone := range c.ClimateZones {
		if zone == f.ClimateZone {
			matched = true
			break
		}
	}

	base := e.cfg.ClimateMismatchBase
	if matched {
		base = e.cfg.ClimateMatchBase
	}

	stress := (c.DroughtTolerance.Fraction() + c.HeatTolerance.Fraction() + c.ColdTolerance.Fraction()) / 3
	score := base + e.cfg.ClimateStressBonus*stress

	detail := fmt.Sprintf("zone %s not in adapted zones, stress tolerance %.0f%%", f.ClimateZone, stress*100)
	if matched {
		detail = fmt.Sprintf("zone %s matched, stress tolerance %.0f%%", f.ClimateZone, stress*100)
	}

	return FactorScore{
		Factor:   FactorClimate,
		Value:    clamp01(score),
		Included: true,
		Detail:   detail,
	}
}

// scoreDisease averages per-disease resistance weighted by regional
// pressure intensity, so higher pressure amplifies the penalty for
// susceptibility. Diseases the candidate lists no resistance for are
// treated as fully susceptible.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreDisease(c Candidate, f FarmConditions) FactorScore {
	if len(f.DiseasePressure) == 0 {
		return excluded(FactorDisease, "regional disease pressure")
	}

	// Sorted iteration keeps the float accumulation order and the
	// worst-exposure tiebreak independent of map iteration order.
	diseases := make([]string, 0, len(f.DiseasePressure))
	for disease := range f.DiseasePressure {
		diseases = append(diseases, disease)
	}
	sort.Strings(diseases)

	var weighted, total float64
	worst := ""
	worstRisk := -1.0
	for _, disease := range diseases {
		p := clamp01(f.DiseasePressure[disease])
		if p == 0 {
			continue
		}
		res := c.DiseaseResistance[disease].Fraction()
		weighted += p * res
		total += p

		if risk := p * (1 - res); risk > worstRisk {
			worstRisk = risk
			worst = disease
		}
	}

	if total == 0 {
		return FactorScore{
			Factor:   FactorDisease,
			Value:    1.0,
			Included: true,
			Detail:   "no active disease pressure in region",
		}
	}

	score := weighted / total
	return FactorScore{
		Factor:   FactorDisease,
		Value:    clamp01(score),
		Included: true,
		Detail:   fmt.Sprintf("pressure-weighted resistance %.0f%%, highest exposure: %s", score*100, worst),
	}
}

// scoreEconomics normalizes expected ROI from catalog seed cost, sale
// price, and the yield range midpoint. Candidates without cost or yield
// data cannot be scored and are excluded.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreEconomics(c Candidate) FactorScore {
	if c.SeedCostPerAcre <= 0 || c.PricePerUnit <= 0 || c.YieldMax <= 0 {
		return excluded(FactorEconomics, "catalog cost and yield data")
	}

	avgYield := (c.YieldMin + c.YieldMax) / 2
	revenue := avgYield * c.PricePerUnit
	roi := (revenue - c.SeedCostPerAcre) / c.SeedCostPerAcre
	score := clamp01(roi / e.cfg.ROICap)

	return FactorScore{
		Factor:   FactorEconomics,
		Value:    score,
		Included: true,
		Detail:   fmt.Sprintf("expected ROI %.2f ($%.0f/acre revenue on $%.0f/acre seed cost)", roi, revenue, c.SeedCostPerAcre),
	}
}

// managementDeficitScore grades a single capability against a demand.
var managementDeficitScore = [...]float64{1.0, 0.7, 0.45, 0.25}

// scoreManagement grades equipment and labor compatibility. Capabilities
// meeting or exceeding demand score 1.0; each step of deficit lowers the
// grade.
//
//nolint:gocritic // hugeParam: passed by value for purity
func (e *Evaluator) scoreManagement(c Candidate, f FarmConditions) FactorScore {
	if f.Management == nil {
		return excluded(FactorManagement, "equipment and labor profile")
	}

	equip := gradeDeficit(c.EquipmentDemand, f.Management.Equipment)
	labor := gradeDeficit(c.LaborDemand, f.Management.Labor)
	score := (equip + labor) / 2

	return FactorScore{
		Factor:   FactorManagement,
		Value:    clamp01(score),
		Included: true,
		Detail: fmt.Sprintf("equipment %s vs required %s, labor %s vs required %s",
			f.Management.Equipment, c.EquipmentDemand, f.Management.Labor, c.LaborDemand),
	}
}

// gradeDeficit scores one capability dimension against its demand.
func gradeDeficit(demand, capability Level) float64 {
	deficit := int(demand) - int(capability)
	if deficit <= 0 {
		return 1.0
	}
	if deficit >= len(managementDeficitScore) {
		deficit = len(managementDeficitScore) - 1
	}
	return managementDeficitScore[deficit]
}

// excluded builds a FactorScore for a factor whose required input is absent.
func excluded(factor Factor, missing string) FactorScore {
	return FactorScore{
		Factor:   factor,
		Included: false,
		Detail:   (&DataInsufficientError{Factor: factor, Missing: missing}).Error(),
	}
}

// clamp01 clips a score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
