// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"fmt"
	"sort"
)

// ExplainSolution renders deterministic, templated rationale for a blend
// solution.
//
// Feasible solutions always state the cost breakdown (largest line item
// first) and the nutrient coverage with surplus; infeasible solutions
// always state the binding constraint. Ties in the cost ordering break by
// option name ascending so output is identical for identical inputs.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func ExplainSolution(req BlendRequest, sol *BlendSolution, detail string) []string {
	if !sol.Feasible {
		out := []string{fmt.Sprintf("No feasible blend: the binding constraint is the %s.", sol.BindingConstraint)}
		if detail != "" {
			out = append(out, detail+".")
		}
		return out
	}

	out := make([]string, 0, len(sol.Rates)+len(req.Requirements)+2)
	out = append(out, fmt.Sprintf("Minimum-cost blend: $%.2f total ($%.2f/acre) over %.0f acres.",
		sol.TotalCost, sol.CostPerAcre, req.FieldAcres))

	out = append(out, costBreakdown(req, sol)...)
	out = append(out, nutrientCoverage(req, sol)...)

	if sol.EnvironmentalRisk {
		out = append(out, "Warning: total applied nitrogen exceeds the environmental risk threshold.")
	}
	if sol.ROIEstimate != 0 {
		out = append(out, fmt.Sprintf("Estimated ROI %.2f against expected revenue of $%.2f/acre.",
			sol.ROIEstimate, req.ExpectedRevenuePerAcre))
	}

	return out
}

// costBreakdown lists applied products by descending cost share.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func costBreakdown(req BlendRequest, sol *BlendSolution) []string {
	type line struct {
		name string
		rate float64
		cost float64
	}

	lines := make([]line, 0, len(req.Options))
	for _, opt := range req.Options {
		rate := sol.Rates[opt.Name]
		if rate == 0 {
			continue
		}
		lines = append(lines, line{
			name: opt.Name,
			rate: rate,
			cost: rate * opt.PricePerLb * req.FieldAcres,
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].cost != lines[j].cost {
			return lines[i].cost > lines[j].cost
		}
		return lines[i].name < lines[j].name
	})

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		share := 0.0
		if sol.TotalCost > 0 {
			share = l.cost / sol.TotalCost * 100
		}
		out = append(out, fmt.Sprintf("Apply %s at %.1f lbs/acre: $%.2f (%.0f%% of cost).",
			l.name, l.rate, l.cost, share))
	}
	return out
}

// nutrientCoverage reports each required nutrient with its surplus.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func nutrientCoverage(req BlendRequest, sol *BlendSolution) []string {
	nutrients := positiveNutrients(req.Requirements)

	out := make([]string, 0, len(nutrients))
	for _, nutrient := range nutrients {
		required := req.Requirements[nutrient]
		delivered := sol.Delivered[nutrient]
		surplusPct := (delivered - required) / required * 100
		if surplusPct < 0 {
			surplusPct = 0
		}
		out = append(out, fmt.Sprintf("%s: %.1f lbs/acre delivered against %.1f required (+%.0f%% surplus).",
			nutrient, delivered, required, surplusPct))
	}
	return out
}
