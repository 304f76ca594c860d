// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import "sort"

// Aggregator combines factor scores into an overall suitability score,
// a confidence score, and a deterministic rank.
//
// The weight configuration is validated at construction time; a request
// that reaches Aggregate can no longer fail on weight invariants.
type Aggregator struct {
	weights ScoringWeights
	conf    ConfidenceConfig
}

// NewAggregator creates an aggregator after validating the weights.
// Invalid weights return *InvalidWeightsError before any computation.
func NewAggregator(weights ScoringWeights, conf ConfidenceConfig) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: weights, conf: conf}, nil
}

// Aggregate computes the overall and confidence scores for one candidate.
//
// Excluded factors drop out of the weighted sum; the remaining weights are
// redistributed in proportion to their original relative weights so that
// they again sum to 1.0. The returned factor list carries the applied
// weights for auditability. Returns ErrNoFactorsIncluded when every factor
// was excluded.
//
//nolint:gocritic // hugeParam: farm passed by value for purity
func (a *Aggregator) Aggregate(scores []FactorScore, farm FarmConditions) (overall, confidence float64, out []FactorScore, err error) {
	included := make(map[Factor]bool, len(scores))
	for _, s := range scores {
		included[s.Factor] = s.Included
	}

	effective, err := a.weights.Renormalize(included)
	if err != nil {
		return 0, 0, nil, err
	}

	out = make([]FactorScore, len(scores))
	copy(out, scores)

	for i := range out {
		if !out[i].Included {
			out[i].Weight = 0
			continue
		}
		out[i].Weight = effective[out[i].Factor]
		overall += out[i].Weight * out[i].Value
	}

	overall = clamp01(overall)
	confidence = a.confidenceScore(scores, farm)
	return overall, confidence, out, nil
}

// confidenceScore derives confidence from the fraction of included
// factors, the regional data availability indicator, and the count of
// corroborating evidence sources.
//
//nolint:gocritic // hugeParam: farm passed by value for purity
func (a *Aggregator) confidenceScore(scores []FactorScore, farm FarmConditions) float64 {
	includedCount := 0
	for _, s := range scores {
		if s.Included {
			includedCount++
		}
	}
	frac := 0.0
	if len(scores) > 0 {
		frac = float64(includedCount) / float64(len(scores))
	}

	quality := farm.RegionalDataQuality
	if quality <= 0 {
		quality = a.conf.DefaultRegionalQuality
	}
	quality = clamp01(quality)

	evidence := float64(farm.EvidenceSources) / float64(a.conf.EvidenceSaturation)
	if evidence > 1 {
		evidence = 1
	}

	return clamp01(a.conf.InclusionWeight*frac +
		a.conf.RegionalWeight*quality +
		a.conf.EvidenceWeight*evidence)
}

// RankResults sorts results into a fully deterministic total order and
// assigns 1-based ranks: overall score descending, then confidence
// descending, then candidate ID ascending. The sort is stable, so
// re-running on an unchanged candidate set yields an identical ordering.
func RankResults(results []SuitabilityResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	for i := range results {
		results[i].Rank = i + 1
	}
}
