// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"errors"
	"testing"
)

func resultWithScores(id string, rank int, scores map[Factor]float64, excluded ...Factor) SuitabilityResult {
	skip := make(map[Factor]bool, len(excluded))
	for _, f := range excluded {
		skip[f] = true
	}

	factors := make([]FactorScore, 0, len(Factors))
	for _, f := range Factors {
		factors = append(factors, FactorScore{
			Factor:   f,
			Value:    scores[f],
			Included: !skip[f],
		})
	}
	return SuitabilityResult{CandidateID: id, Rank: rank, Factors: factors}
}

func TestCompareRequiresTwoCandidates(t *testing.T) {
	_, err := Compare([]SuitabilityResult{{CandidateID: "only"}})

	var insufficientErr *InsufficientCandidatesError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected *InsufficientCandidatesError, got %v", err)
	}
	if insufficientErr.Got != 1 {
		t.Errorf("expected Got=1, got %d", insufficientErr.Got)
	}
}

func TestCompareMatrixShape(t *testing.T) {
	results := []SuitabilityResult{
		resultWithScores("a", 1, map[Factor]float64{FactorPH: 0.9}),
		resultWithScores("b", 2, map[Factor]float64{FactorPH: 0.5}),
		resultWithScores("c", 3, map[Factor]float64{FactorPH: 0.2}),
	}

	m, err := Compare(results)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(m.Criteria) != len(Factors) {
		t.Errorf("expected %d criteria rows, got %d", len(Factors), len(m.Criteria))
	}
	if len(m.Values) != len(Factors) {
		t.Errorf("expected %d value rows, got %d", len(Factors), len(m.Values))
	}
	for row := range m.Values {
		if len(m.Values[row]) != len(results) {
			t.Errorf("row %d: expected %d columns, got %d", row, len(results), len(m.Values[row]))
		}
	}
	if m.OverallWinner != "a" {
		t.Errorf("expected overall winner a, got %s", m.OverallWinner)
	}
}

func TestCompareExcludedCells(t *testing.T) {
	results := []SuitabilityResult{
		resultWithScores("a", 1, map[Factor]float64{FactorPH: 0.9}, FactorDisease),
		resultWithScores("b", 2, map[Factor]float64{FactorPH: 0.5, FactorDisease: 0.7}),
	}

	m, err := Compare(results)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	diseaseRow := -1
	for i, f := range m.Criteria {
		if f == FactorDisease {
			diseaseRow = i
		}
	}
	if m.Values[diseaseRow][0] != -1 {
		t.Errorf("excluded cell must be -1, got %f", m.Values[diseaseRow][0])
	}

	// The candidate with an excluded cell never wins that criterion.
	winners := m.Winners[FactorDisease]
	if len(winners) != 1 || winners[0] != "b" {
		t.Errorf("expected disease winner [b], got %v", winners)
	}
}

func TestCompareFactorExcludedEverywhere(t *testing.T) {
	results := []SuitabilityResult{
		resultWithScores("a", 1, nil, FactorManagement),
		resultWithScores("b", 2, nil, FactorManagement),
	}

	m, err := Compare(results)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if _, ok := m.Winners[FactorManagement]; ok {
		t.Error("factor excluded for all candidates must have no winner")
	}
}

func TestCompareTiedWinners(t *testing.T) {
	results := []SuitabilityResult{
		resultWithScores("a", 1, map[Factor]float64{FactorClimate: 0.85}),
		resultWithScores("b", 2, map[Factor]float64{FactorClimate: 0.85}),
		resultWithScores("c", 3, map[Factor]float64{FactorClimate: 0.4}),
	}

	m, err := Compare(results)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	winners := m.Winners[FactorClimate]
	if len(winners) != 2 || winners[0] != "a" || winners[1] != "b" {
		t.Errorf("expected co-winners [a b], got %v", winners)
	}
}
