// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"strings"
	"testing"
)

func TestExplainFactorsOrdering(t *testing.T) {
	factors := []FactorScore{
		{Factor: FactorPH, Value: 0.5, Weight: 0.2, Included: true, Detail: "ph detail"},      // 0.10
		{Factor: FactorClimate, Value: 0.9, Weight: 0.3, Included: true, Detail: "cl detail"}, // 0.27
		{Factor: FactorTexture, Value: 0.4, Weight: 0.5, Included: true, Detail: "tx detail"}, // 0.20
	}

	rationale, warnings := ExplainFactors(0.57, factors)

	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(rationale) != 4 {
		t.Fatalf("expected header plus three lines, got %d", len(rationale))
	}
	if rationale[0] != "Overall suitability 57%." {
		t.Errorf("unexpected header: %q", rationale[0])
	}

	// Largest weight*score contribution first: climate, texture, ph.
	wantOrder := []string{"Climate", "Soil texture", "Soil pH"}
	for i, want := range wantOrder {
		if !strings.HasPrefix(rationale[i+1], want) {
			t.Errorf("line %d: expected prefix %q, got %q", i+1, want, rationale[i+1])
		}
	}
}

func TestExplainFactorsTieBreaksByName(t *testing.T) {
	factors := []FactorScore{
		{Factor: FactorTexture, Value: 0.5, Weight: 0.5, Included: true},
		{Factor: FactorDrainage, Value: 0.5, Weight: 0.5, Included: true},
	}

	rationale, _ := ExplainFactors(0.5, factors)

	// "drainage" < "texture" in factor-name order.
	if !strings.HasPrefix(rationale[1], "Drainage") {
		t.Errorf("expected Drainage first on tie, got %q", rationale[1])
	}
}

func TestExplainFactorsWarnsOnExcluded(t *testing.T) {
	factors := []FactorScore{
		{Factor: FactorPH, Value: 0.8, Weight: 1.0, Included: true, Detail: "ph detail"},
		{Factor: FactorDisease, Included: false, Detail: "regional disease pressure missing"},
		{Factor: FactorClimate, Included: false, Detail: "climate zone missing"},
	}

	rationale, warnings := ExplainFactors(0.8, factors)

	for _, line := range rationale {
		if strings.Contains(line, "Disease") || strings.Contains(line, "Climate") {
			t.Errorf("excluded factor leaked into rationale: %q", line)
		}
	}

	if len(warnings) != 2 {
		t.Fatalf("expected two warnings, got %d", len(warnings))
	}
	// Excluded factors are sorted by name: climate before disease.
	if !strings.HasPrefix(warnings[0], "Climate not scored") {
		t.Errorf("unexpected first warning: %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "weight was redistributed") {
		t.Errorf("warning must mention redistribution: %q", warnings[1])
	}
}

func TestVerdictBands(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0.95, "strong fit"},
		{0.8, "strong fit"},
		{0.7, "good fit"},
		{0.5, "fair fit"},
		{0.2, "poor fit"},
	}
	for _, tt := range tests {
		if got := verdictFor(tt.value); got != tt.want {
			t.Errorf("verdictFor(%f) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
