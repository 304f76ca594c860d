// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"errors"
	"testing"
)

func TestDefaultWeightsValid(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}
	if !almostEqual(DefaultWeights().Sum(), 1.0) {
		t.Errorf("default weights must sum to 1.0, got %f", DefaultWeights().Sum())
	}
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScoringWeights)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(w *ScoringWeights) {},
		},
		{
			name: "sum above one rejected",
			mutate: func(w *ScoringWeights) {
				w.PH += 0.05
			},
			wantErr: true,
		},
		{
			name: "sum below one rejected",
			mutate: func(w *ScoringWeights) {
				w.Climate -= 0.05
			},
			wantErr: true,
		},
		{
			name: "negative weight rejected even when sum is one",
			mutate: func(w *ScoringWeights) {
				w.PH = -0.1
				w.Texture += 0.3
			},
			wantErr: true,
		},
		{
			name: "sum within tolerance passes",
			mutate: func(w *ScoringWeights) {
				w.PH += WeightTolerance / 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(&w)

			err := w.Validate()
			if tt.wantErr {
				var weightsErr *InvalidWeightsError
				if !errors.As(err, &weightsErr) {
					t.Fatalf("expected *InvalidWeightsError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWeightsFromMapRejectsUnknownFactor(t *testing.T) {
	_, err := WeightsFromMap(map[Factor]float64{"soil_color": 1.0})

	var weightsErr *InvalidWeightsError
	if !errors.As(err, &weightsErr) {
		t.Fatalf("expected *InvalidWeightsError, got %v", err)
	}
}

func TestRenormalizeProportional(t *testing.T) {
	w := DefaultWeights()

	included := map[Factor]bool{}
	for _, f := range Factors {
		included[f] = true
	}
	included[FactorDisease] = false

	out, err := w.Renormalize(included)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := out[FactorDisease]; ok {
		t.Error("excluded factor must not appear in renormalized weights")
	}

	var sum float64
	for _, weight := range out {
		sum += weight
	}
	if !almostEqual(sum, 1.0) {
		t.Errorf("renormalized weights must sum to 1.0, got %f", sum)
	}

	// Relative proportions among included factors are preserved.
	wantRatio := w.PH / w.Texture
	gotRatio := out[FactorPH] / out[FactorTexture]
	if !almostEqual(wantRatio, gotRatio) {
		t.Errorf("expected ph/texture ratio %f, got %f", wantRatio, gotRatio)
	}
}

func TestRenormalizeAllExcluded(t *testing.T) {
	_, err := DefaultWeights().Renormalize(map[Factor]bool{})
	if !errors.Is(err, ErrNoFactorsIncluded) {
		t.Fatalf("expected ErrNoFactorsIncluded, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(c *Config) {}},
		{
			name:    "bad weights rejected",
			mutate:  func(c *Config) { c.Weights.PH = 0.9 },
			wantErr: true,
		},
		{
			name:    "ph floor above edge rejected",
			mutate:  func(c *Config) { c.Evaluator.PHFloor = 0.9 },
			wantErr: true,
		},
		{
			name:    "confidence weights must sum to one",
			mutate:  func(c *Config) { c.Confidence.RegionalWeight = 0.5 },
			wantErr: true,
		},
		{
			name:    "zero candidate limit rejected",
			mutate:  func(c *Config) { c.Limits.MaxCandidates = 0 },
			wantErr: true,
		},
		{
			name:    "enabled cache needs positive ttl",
			mutate:  func(c *Config) { c.Cache.TTL = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
