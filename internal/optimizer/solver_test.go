// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"errors"
	"math"
	"testing"
)

const rateTolerance = 1e-6

func testSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := NewSolver(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

func urea() FertilizerOption {
	return FertilizerOption{
		Name:        "urea",
		PricePerLb:  0.55,
		NutrientPct: map[string]float64{"nitrogen": 46},
		Efficiency:  0.85,
	}
}

func TestSolveSingleNutrientSingleOption(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 150},
		Options:      []FertilizerOption{urea()},
		FieldAcres:   100,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sol.Feasible {
		t.Fatal("expected feasible solution")
	}

	// 150 lbs/acre delivered through 46% content at 85% efficiency.
	wantRate := 150.0 / (0.46 * 0.85)
	if math.Abs(sol.Rates["urea"]-wantRate) > rateTolerance {
		t.Errorf("expected rate %f, got %f", wantRate, sol.Rates["urea"])
	}
	if math.Abs(sol.Delivered["nitrogen"]-150) > rateTolerance {
		t.Errorf("expected 150 lbs/acre delivered, got %f", sol.Delivered["nitrogen"])
	}

	wantCost := wantRate * 0.55 * 100
	if math.Abs(sol.TotalCost-wantCost) > 1e-4 {
		t.Errorf("expected total cost %f, got %f", wantCost, sol.TotalCost)
	}
	if math.Abs(sol.CostPerAcre-wantCost/100) > 1e-6 {
		t.Errorf("expected cost per acre %f, got %f", wantCost/100, sol.CostPerAcre)
	}
	if len(sol.Rationale) == 0 {
		t.Error("expected rationale lines")
	}
}

func TestSolvePicksCheaperDeliveredNutrient(t *testing.T) {
	s := testSolver(t)

	// Ammonium sulfate delivers nitrogen cheaper per effective lb.
	options := []FertilizerOption{
		{
			Name:        "urea",
			PricePerLb:  0.50,
			NutrientPct: map[string]float64{"nitrogen": 46},
			Efficiency:  1.0,
		},
		{
			Name:        "ammonium-sulfate",
			PricePerLb:  0.20,
			NutrientPct: map[string]float64{"nitrogen": 30},
			Efficiency:  1.0,
		},
	}

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 100},
		Options:      options,
		FieldAcres:   50,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if sol.Rates["urea"] != 0 {
		t.Errorf("expected urea unused, got rate %f", sol.Rates["urea"])
	}
	wantRate := 100.0 / 0.30
	if math.Abs(sol.Rates["ammonium-sulfate"]-wantRate) > rateTolerance {
		t.Errorf("expected rate %f, got %f", wantRate, sol.Rates["ammonium-sulfate"])
	}
}

// The simplex result must never be beaten by any feasible point on a
// brute-force grid over the two rate variables.
func TestSolveOptimalAgainstGrid(t *testing.T) {
	s := testSolver(t)

	options := []FertilizerOption{
		{
			Name:        "dap",
			PricePerLb:  0.42,
			NutrientPct: map[string]float64{"nitrogen": 18, "phosphorus": 46},
			Efficiency:  0.9,
		},
		{
			Name:        "urea",
			PricePerLb:  0.55,
			NutrientPct: map[string]float64{"nitrogen": 46},
			Efficiency:  0.85,
		},
	}
	req := BlendRequest{
		Requirements: map[string]float64{"nitrogen": 120, "phosphorus": 60},
		Options:      options,
		FieldAcres:   10,
	}

	sol, err := s.Solve(req)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	deliveredOK := func(rDap, rUrea float64) bool {
		n := rDap*0.18*0.9 + rUrea*0.46*0.85
		p := rDap * 0.46 * 0.9
		return n >= 120 && p >= 60
	}
	cost := func(rDap, rUrea float64) float64 {
		return (rDap*0.42 + rUrea*0.55) * 10
	}

	for rDap := 0.0; rDap <= 800; rDap += 2 {
		for rUrea := 0.0; rUrea <= 800; rUrea += 2 {
			if deliveredOK(rDap, rUrea) && cost(rDap, rUrea) < sol.TotalCost-1e-6 {
				t.Fatalf("grid point (%f, %f) costs %f, beats solver cost %f",
					rDap, rUrea, cost(rDap, rUrea), sol.TotalCost)
			}
		}
	}

	for nutrient, required := range req.Requirements {
		if sol.Delivered[nutrient] < required-rateTolerance {
			t.Errorf("nutrient %s under-delivered: %f < %f", nutrient, sol.Delivered[nutrient], required)
		}
	}
}

func TestSolveZeroRequirements(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 0},
		Options:      []FertilizerOption{urea()},
		FieldAcres:   10,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sol.Feasible {
		t.Fatal("zero requirements must be trivially feasible")
	}
	if sol.TotalCost != 0 {
		t.Errorf("expected zero cost, got %f", sol.TotalCost)
	}
	if sol.Rates["urea"] != 0 {
		t.Errorf("expected zero rate, got %f", sol.Rates["urea"])
	}
}

func TestSolveBudgetInfeasible(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 150},
		Options:      []FertilizerOption{urea()},
		Constraints:  Constraints{Budget: 100},
		FieldAcres:   100,
	})

	var infeasibleErr *InfeasibleError
	if !errors.As(err, &infeasibleErr) {
		t.Fatalf("expected *InfeasibleError, got %v", err)
	}
	if infeasibleErr.Binding != "budget cap" {
		t.Errorf("expected binding constraint budget cap, got %s", infeasibleErr.Binding)
	}
	if sol == nil || sol.Feasible {
		t.Fatal("expected diagnostic solution with Feasible=false")
	}
	if sol.BindingConstraint != "budget cap" {
		t.Errorf("expected budget cap in solution, got %s", sol.BindingConstraint)
	}
	if len(sol.Rationale) == 0 {
		t.Error("infeasible solution must carry rationale")
	}
}

func TestSolveRateCapInfeasible(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 150},
		Options:      []FertilizerOption{urea()},
		Constraints: Constraints{
			RateBounds: map[string]RateBound{"urea": {Max: 100}},
		},
		FieldAcres: 100,
	})

	var infeasibleErr *InfeasibleError
	if !errors.As(err, &infeasibleErr) {
		t.Fatalf("expected *InfeasibleError, got %v", err)
	}
	if infeasibleErr.Binding != "rate caps" {
		t.Errorf("expected binding constraint rate caps, got %s", infeasibleErr.Binding)
	}
	if sol.Feasible {
		t.Error("expected Feasible=false")
	}
}

func TestSolveNitrogenLimitInfeasible(t *testing.T) {
	s := testSolver(t)

	// 150 delivered lbs needs about 176 applied lbs at 85% efficiency.
	_, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 150},
		Options:      []FertilizerOption{urea()},
		Constraints:  Constraints{MaxNitrogenRate: 100},
		FieldAcres:   100,
	})

	var infeasibleErr *InfeasibleError
	if !errors.As(err, &infeasibleErr) {
		t.Fatalf("expected *InfeasibleError, got %v", err)
	}
	if infeasibleErr.Binding != "nitrogen limit" {
		t.Errorf("expected binding constraint nitrogen limit, got %s", infeasibleErr.Binding)
	}
}

func TestSolveNoSupplier(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"potassium": 40},
		Options:      []FertilizerOption{urea()},
		FieldAcres:   10,
	})

	var infeasibleErr *InfeasibleError
	if !errors.As(err, &infeasibleErr) {
		t.Fatalf("expected *InfeasibleError, got %v", err)
	}
	if infeasibleErr.Binding != "nutrient floor: potassium" {
		t.Errorf("unexpected binding constraint: %s", infeasibleErr.Binding)
	}
	if sol.Feasible {
		t.Error("expected Feasible=false")
	}
}

func TestSolveRateMinimumForcesApplication(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{},
		Options:      []FertilizerOption{urea()},
		Constraints: Constraints{
			RateBounds: map[string]RateBound{"urea": {Min: 50}},
		},
		FieldAcres: 10,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Rates["urea"] < 50-rateTolerance {
		t.Errorf("rate minimum not honored: %f", sol.Rates["urea"])
	}
}

func TestSolveRateCapHonored(t *testing.T) {
	s := testSolver(t)

	options := []FertilizerOption{
		urea(),
		{
			Name:        "ammonium-nitrate",
			PricePerLb:  0.80,
			NutrientPct: map[string]float64{"nitrogen": 34},
			Efficiency:  0.9,
		},
	}

	sol, err := s.Solve(BlendRequest{
		Requirements: map[string]float64{"nitrogen": 150},
		Options:      options,
		Constraints: Constraints{
			RateBounds: map[string]RateBound{"urea": {Max: 200}},
		},
		FieldAcres: 100,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Rates["urea"] > 200+rateTolerance {
		t.Errorf("rate cap violated: %f", sol.Rates["urea"])
	}
	if sol.Delivered["nitrogen"] < 150-rateTolerance {
		t.Errorf("under-delivered nitrogen: %f", sol.Delivered["nitrogen"])
	}
}

func TestSolveEnvironmentalRiskFlag(t *testing.T) {
	s := testSolver(t)

	t.Run("below threshold", func(t *testing.T) {
		sol, err := s.Solve(BlendRequest{
			Requirements: map[string]float64{"nitrogen": 60},
			Options:      []FertilizerOption{urea()},
			FieldAcres:   10,
		})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		if sol.EnvironmentalRisk {
			t.Error("unexpected environmental risk flag")
		}
	})

	t.Run("above threshold", func(t *testing.T) {
		// 250 delivered lbs -> about 294 applied lbs of nitrogen.
		sol, err := s.Solve(BlendRequest{
			Requirements: map[string]float64{"nitrogen": 250},
			Options:      []FertilizerOption{urea()},
			FieldAcres:   10,
		})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		if !sol.EnvironmentalRisk {
			t.Error("expected environmental risk flag")
		}
	})
}

func TestSolveROIEstimate(t *testing.T) {
	s := testSolver(t)

	sol, err := s.Solve(BlendRequest{
		Requirements:           map[string]float64{"nitrogen": 150},
		Options:                []FertilizerOption{urea()},
		FieldAcres:             100,
		ExpectedRevenuePerAcre: 900,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	wantROI := (900*100 - sol.TotalCost) / sol.TotalCost
	if math.Abs(sol.ROIEstimate-wantROI) > 1e-9 {
		t.Errorf("expected ROI %f, got %f", wantROI, sol.ROIEstimate)
	}
}

func TestSolveDeterministic(t *testing.T) {
	s := testSolver(t)

	req := BlendRequest{
		Requirements: map[string]float64{"nitrogen": 120, "phosphorus": 60, "potassium": 40},
		Options: []FertilizerOption{
			urea(),
			{
				Name:        "dap",
				PricePerLb:  0.42,
				NutrientPct: map[string]float64{"nitrogen": 18, "phosphorus": 46},
				Efficiency:  0.9,
			},
			{
				Name:        "potash",
				PricePerLb:  0.35,
				NutrientPct: map[string]float64{"potassium": 60},
				Efficiency:  0.95,
			},
		},
		FieldAcres: 80,
	}

	first, err := s.Solve(req)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i := 0; i < 5; i++ {
		next, err := s.Solve(req)
		if err != nil {
			t.Fatalf("Solve run %d: %v", i, err)
		}
		if next.TotalCost != first.TotalCost {
			t.Fatalf("run %d: cost diverged: %f vs %f", i, next.TotalCost, first.TotalCost)
		}
		for name, rate := range first.Rates {
			if next.Rates[name] != rate {
				t.Fatalf("run %d: rate for %s diverged", i, name)
			}
		}
	}
}

func TestValidateRequest(t *testing.T) {
	s := testSolver(t)

	tests := []struct {
		name  string
		req   BlendRequest
		field string
	}{
		{
			name:  "non-positive acres",
			req:   BlendRequest{FieldAcres: 0},
			field: "field_acres",
		},
		{
			name: "negative requirement",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": -5},
				Options:      []FertilizerOption{urea()},
			},
			field: "requirements.nitrogen",
		},
		{
			name: "empty catalog with positive requirement",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": 100},
			},
			field: "options",
		},
		{
			name: "efficiency above one",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": 100},
				Options: []FertilizerOption{{
					Name:        "bad",
					NutrientPct: map[string]float64{"nitrogen": 46},
					Efficiency:  1.5,
				}},
			},
			field: "bad.efficiency",
		},
		{
			name: "duplicate option name",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": 100},
				Options:      []FertilizerOption{urea(), urea()},
			},
			field: "options[1].name",
		},
		{
			name: "rate bound for unknown option",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": 100},
				Options:      []FertilizerOption{urea()},
				Constraints: Constraints{
					RateBounds: map[string]RateBound{"ghost": {Max: 10}},
				},
			},
			field: "rate_bounds.ghost",
		},
		{
			name: "min above max",
			req: BlendRequest{
				FieldAcres:   10,
				Requirements: map[string]float64{"nitrogen": 100},
				Options:      []FertilizerOption{urea()},
				Constraints: Constraints{
					RateBounds: map[string]RateBound{"urea": {Min: 50, Max: 10}},
				},
			},
			field: "rate_bounds.urea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Solve(tt.req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, validationErr.Field)
			}
		})
	}
}
