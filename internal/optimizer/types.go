// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package optimizer solves cost-minimal fertilizer blends that meet
// nutrient targets, as a linear program over per-fertilizer application
// rates.
//
// The solver core is synchronous and pure; blocking solves are offloaded
// to a bounded worker pool with timeout and cancellation so a slow solve
// cannot block unrelated work.
package optimizer

// FertilizerOption is one product from the injected catalog.
type FertilizerOption struct {
	// Name uniquely identifies the product within the catalog.
	Name string `json:"name"`

	// PricePerLb is the product price in dollars per pound.
	PricePerLb float64 `json:"price_per_lb"`

	// NutrientPct maps nutrient name to content percentage (0-100).
	// A 46-0-0 urea product carries {"nitrogen": 46}.
	NutrientPct map[string]float64 `json:"nutrient_pct"`

	// Efficiency is the application efficiency in (0, 1]: the fraction of
	// nutrient content that actually reaches the crop.
	Efficiency float64 `json:"efficiency"`
}

// RateBound bounds the application rate of one fertilizer option.
type RateBound struct {
	// Min is the minimum application rate in lbs/acre. Zero means none.
	Min float64 `json:"min,omitempty"`

	// Max is the maximum application rate in lbs/acre. Zero means none.
	Max float64 `json:"max,omitempty"`
}

// Constraints are the optional hard constraints on a blend solve.
type Constraints struct {
	// Budget caps total spend in dollars across the whole field.
	// Zero means unlimited.
	Budget float64 `json:"budget,omitempty"`

	// RateBounds maps fertilizer option name to per-option rate bounds.
	RateBounds map[string]RateBound `json:"rate_bounds,omitempty"`

	// MaxNitrogenRate caps total applied nitrogen in lbs/acre as an
	// environmental limit. Zero means none.
	MaxNitrogenRate float64 `json:"max_nitrogen_rate,omitempty"`
}

// BlendRequest carries one blend optimization request.
type BlendRequest struct {
	// Requirements maps nutrient name to the target amount in lbs/acre.
	// Delivered nutrients must meet or exceed every target; surplus is
	// permitted, deficit is not.
	Requirements map[string]float64 `json:"requirements"`

	// Options is the injected fertilizer catalog.
	Options []FertilizerOption `json:"options"`

	// Constraints are the optional hard constraints.
	Constraints Constraints `json:"constraints"`

	// FieldAcres is the field area in acres.
	FieldAcres float64 `json:"field_acres"`

	// ExpectedRevenuePerAcre optionally supplies the expected crop revenue
	// used for the ROI estimate. Zero disables the estimate.
	ExpectedRevenuePerAcre float64 `json:"expected_revenue_per_acre,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// BlendSolution is the outcome of a blend solve.
//
// When Feasible is false the solution carries no rates: the optimizer
// never returns a rate vector that silently violates a constraint.
type BlendSolution struct {
	// Rates maps fertilizer option name to application rate in lbs/acre.
	Rates map[string]float64 `json:"rates"`

	// TotalCost is the total spend in dollars across the field.
	TotalCost float64 `json:"total_cost"`

	// CostPerAcre is TotalCost divided by field area.
	CostPerAcre float64 `json:"cost_per_acre"`

	// Delivered maps nutrient name to delivered amount in lbs/acre,
	// after application efficiency.
	Delivered map[string]float64 `json:"delivered"`

	// Feasible reports whether all hard constraints were satisfiable.
	Feasible bool `json:"feasible"`

	// BindingConstraint names the constraint that prevented a feasible
	// solution. Empty when feasible.
	BindingConstraint string `json:"binding_constraint,omitempty"`

	// ROIEstimate is (expected revenue - cost) / cost, when the request
	// supplied expected revenue. Zero otherwise.
	ROIEstimate float64 `json:"roi_estimate,omitempty"`

	// EnvironmentalRisk flags total applied nitrogen exceeding the
	// configured threshold.
	EnvironmentalRisk bool `json:"environmental_risk"`

	// Rationale is ordered, templated explanation text.
	Rationale []string `json:"rationale,omitempty"`
}
