// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"fmt"
	"sort"
)

// factorLabel maps factors to the noun used in rationale text.
var factorLabel = map[Factor]string{
	FactorPH:         "Soil pH",
	FactorTexture:    "Soil texture",
	FactorDrainage:   "Drainage",
	FactorClimate:    "Climate",
	FactorDisease:    "Disease resistance",
	FactorEconomics:  "Economics",
	FactorManagement: "Management",
}

// verdictFor maps a factor score to its template verdict.
func verdictFor(value float64) string {
	switch {
	case value >= 0.8:
		return "strong fit"
	case value >= 0.6:
		return "good fit"
	case value >= 0.4:
		return "fair fit"
	default:
		return "poor fit"
	}
}

// ExplainFactors renders ordered, templated rationale for one candidate's
// factor scores, plus data-insufficiency warnings for excluded factors.
//
// Template order is fixed: the factor with the largest weight-times-score
// contribution comes first, followed by descending contribution; ties
// break by factor name ascending so output is fully deterministic.
// Excluded factors are explicitly listed as warnings rather than silently
// omitted.
func ExplainFactors(overall float64, factors []FactorScore) (rationale, warnings []string) {
	included := make([]FactorScore, 0, len(factors))
	excludedScores := make([]FactorScore, 0)
	for _, s := range factors {
		if s.Included {
			included = append(included, s)
		} else {
			excludedScores = append(excludedScores, s)
		}
	}

	sort.SliceStable(included, func(i, j int) bool {
		ci := included[i].Weight * included[i].Value
		cj := included[j].Weight * included[j].Value
		if ci != cj {
			return ci > cj
		}
		return included[i].Factor < included[j].Factor
	})

	rationale = make([]string, 0, len(included)+1)
	rationale = append(rationale, fmt.Sprintf("Overall suitability %.0f%%.", overall*100))
	for _, s := range included {
		rationale = append(rationale, fmt.Sprintf("%s: %s, %s (score %.2f, weight %.0f%%).",
			factorLabel[s.Factor], verdictFor(s.Value), s.Detail, s.Value, s.Weight*100))
	}

	sort.SliceStable(excludedScores, func(i, j int) bool {
		return excludedScores[i].Factor < excludedScores[j].Factor
	})
	warnings = make([]string, 0, len(excludedScores))
	for _, s := range excludedScores {
		warnings = append(warnings, fmt.Sprintf("%s not scored: %s; its weight was redistributed.",
			factorLabel[s.Factor], s.Detail))
	}

	return rationale, warnings
}
