// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// rateEpsilon is the threshold below which solved rates are treated as zero.
const rateEpsilon = 1e-9

// Solver solves one blend request as a linear program.
//
// The objective and all constraints are linear in the per-fertilizer rate
// variables, so the problem is solved exactly with the simplex method.
// Solve is synchronous and pure: no I/O, no shared state, identical
// inputs produce identical outputs.
type Solver struct {
	cfg *Config
}

// NewSolver creates a solver with the given configuration.
func NewSolver(cfg *Config) (*Solver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Solver{cfg: cfg}, nil
}

// rowKind distinguishes inequality directions before slack conversion.
type rowKind int

const (
	rowGE rowKind = iota // coeffs·x >= rhs
	rowLE                // coeffs·x <= rhs
)

// lpRow is one constraint row over the option rate variables.
type lpRow struct {
	coeffs []float64
	rhs    float64
	kind   rowKind
	label  string
}

// rowSet selects which optional constraint families to include,
// used by the binding-constraint diagnosis.
type rowSet struct {
	budget   bool
	rateCaps bool
	nitrogen bool
}

var allRows = rowSet{budget: true, rateCaps: true, nitrogen: true}

// Solve computes the cost-minimal blend for the request.
//
// Decision variables are non-negative application rates in lbs/acre, one
// per catalog option. The objective minimizes total cost across the
// field; nutrient floors, the optional budget cap, per-option rate
// bounds, and the optional nitrogen limit are hard constraints.
//
// On infeasibility the returned solution carries Feasible=false with the
// binding constraint named, alongside an *InfeasibleError; no rate vector
// that violates a constraint is ever returned.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func (s *Solver) Solve(req BlendRequest) (*BlendSolution, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	nutrients := positiveNutrients(req.Requirements)

	// Nothing required and nothing forced: the empty blend is optimal.
	if len(nutrients) == 0 && !hasMinRates(req.Constraints) {
		return s.buildSolution(req, make([]float64, len(req.Options))), nil
	}

	// A nutrient no catalog option supplies can never be covered.
	for _, n := range nutrients {
		if !hasSupplier(req.Options, n) {
			return s.infeasible(req, fmt.Sprintf("nutrient floor: %s", n),
				fmt.Sprintf("no fertilizer in the catalog supplies %s", n))
		}
	}

	costs := optionCosts(req)
	rates, _, err := s.solveLP(costs, s.buildRows(req, nutrients, allRows))
	if err == nil {
		return s.buildSolution(req, rates), nil
	}
	if !errors.Is(err, lp.ErrInfeasible) {
		return nil, fmt.Errorf("simplex solve: %w", err)
	}

	binding, detail := s.diagnose(req, nutrients, costs)
	return s.infeasible(req, binding, detail)
}

// infeasible builds the diagnostic solution and its typed error.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func (s *Solver) infeasible(req BlendRequest, binding, detail string) (*BlendSolution, error) {
	err := &InfeasibleError{Binding: binding, Detail: detail}
	sol := &BlendSolution{
		Feasible:          false,
		BindingConstraint: binding,
	}
	sol.Rationale = ExplainSolution(req, sol, detail)
	return sol, err
}

// validateRequest rejects structurally invalid requests before solving.
//
//nolint:gocyclo,gocritic // validation needs to check many fields; hugeParam by value
func validateRequest(req BlendRequest) error {
	if req.FieldAcres <= 0 {
		return &ValidationError{Field: "field_acres", Reason: fmt.Sprintf("must be positive, got %f", req.FieldAcres)}
	}
	for nutrient, amount := range req.Requirements {
		if amount < 0 {
			return &ValidationError{Field: "requirements." + nutrient, Reason: fmt.Sprintf("must be non-negative, got %f", amount)}
		}
	}
	if len(req.Options) == 0 && len(positiveNutrients(req.Requirements)) > 0 {
		return &ValidationError{Field: "options", Reason: "catalog is empty"}
	}

	seen := make(map[string]bool, len(req.Options))
	for i, opt := range req.Options {
		if opt.Name == "" {
			return &ValidationError{Field: fmt.Sprintf("options[%d].name", i), Reason: "must not be empty"}
		}
		if seen[opt.Name] {
			return &ValidationError{Field: fmt.Sprintf("options[%d].name", i), Reason: fmt.Sprintf("duplicate option %q", opt.Name)}
		}
		seen[opt.Name] = true

		if opt.PricePerLb < 0 {
			return &ValidationError{Field: opt.Name + ".price_per_lb", Reason: fmt.Sprintf("must be non-negative, got %f", opt.PricePerLb)}
		}
		if opt.Efficiency <= 0 || opt.Efficiency > 1 {
			return &ValidationError{Field: opt.Name + ".efficiency", Reason: fmt.Sprintf("must be in (0, 1], got %f", opt.Efficiency)}
		}
		for nutrient, pct := range opt.NutrientPct {
			if pct < 0 || pct > 100 {
				return &ValidationError{Field: opt.Name + "." + nutrient, Reason: fmt.Sprintf("content percent must be in [0, 100], got %f", pct)}
			}
		}
	}

	for name, bound := range req.Constraints.RateBounds {
		if !seen[name] {
			return &ValidationError{Field: "rate_bounds." + name, Reason: "unknown fertilizer option"}
		}
		if bound.Min < 0 || bound.Max < 0 {
			return &ValidationError{Field: "rate_bounds." + name, Reason: "bounds must be non-negative"}
		}
		if bound.Max > 0 && bound.Min > bound.Max {
			return &ValidationError{Field: "rate_bounds." + name, Reason: fmt.Sprintf("min %f exceeds max %f", bound.Min, bound.Max)}
		}
	}
	if req.Constraints.Budget < 0 {
		return &ValidationError{Field: "budget", Reason: fmt.Sprintf("must be non-negative, got %f", req.Constraints.Budget)}
	}

	return nil
}

// positiveNutrients returns sorted nutrient names with positive targets.
// Sorting keeps the constraint matrix, and so the solve, deterministic.
func positiveNutrients(requirements map[string]float64) []string {
	out := make([]string, 0, len(requirements))
	for nutrient, amount := range requirements {
		if amount > 0 {
			out = append(out, nutrient)
		}
	}
	sort.Strings(out)
	return out
}

func hasMinRates(c Constraints) bool {
	for _, bound := range c.RateBounds {
		if bound.Min > 0 {
			return true
		}
	}
	return false
}

func hasSupplier(options []FertilizerOption, nutrient string) bool {
	for _, opt := range options {
		if opt.NutrientPct[nutrient] > 0 {
			return true
		}
	}
	return false
}

// optionCosts returns the objective coefficients: dollars per lbs/acre of
// each option across the whole field.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func optionCosts(req BlendRequest) []float64 {
	costs := make([]float64, len(req.Options))
	for i, opt := range req.Options {
		costs[i] = opt.PricePerLb * req.FieldAcres
	}
	return costs
}

// buildRows assembles the constraint rows over the rate variables.
// Row order is fixed (nutrient floors, budget, rate caps, rate minimums,
// nitrogen limit) so the program is fully deterministic.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func (s *Solver) buildRows(req BlendRequest, nutrients []string, include rowSet) []lpRow {
	n := len(req.Options)
	rows := make([]lpRow, 0, len(nutrients)+2*n+2)

	// Nutrient floors: delivered amount (after efficiency) meets the target.
	for _, nutrient := range nutrients {
		coeffs := make([]float64, n)
		for i, opt := range req.Options {
			coeffs[i] = opt.NutrientPct[nutrient] / 100 * opt.Efficiency
		}
		rows = append(rows, lpRow{
			coeffs: coeffs,
			rhs:    req.Requirements[nutrient],
			kind:   rowGE,
			label:  fmt.Sprintf("nutrient floor: %s", nutrient),
		})
	}

	if include.budget && req.Constraints.Budget > 0 {
		coeffs := make([]float64, n)
		for i, opt := range req.Options {
			coeffs[i] = opt.PricePerLb * req.FieldAcres
		}
		rows = append(rows, lpRow{
			coeffs: coeffs,
			rhs:    req.Constraints.Budget,
			kind:   rowLE,
			label:  "budget cap",
		})
	}

	for i, opt := range req.Options {
		bound, ok := req.Constraints.RateBounds[opt.Name]
		if !ok {
			continue
		}
		if include.rateCaps && bound.Max > 0 {
			coeffs := make([]float64, n)
			coeffs[i] = 1
			rows = append(rows, lpRow{
				coeffs: coeffs,
				rhs:    bound.Max,
				kind:   rowLE,
				label:  fmt.Sprintf("rate cap: %s", opt.Name),
			})
		}
		if bound.Min > 0 {
			coeffs := make([]float64, n)
			coeffs[i] = 1
			rows = append(rows, lpRow{
				coeffs: coeffs,
				rhs:    bound.Min,
				kind:   rowGE,
				label:  fmt.Sprintf("rate minimum: %s", opt.Name),
			})
		}
	}

	if include.nitrogen && req.Constraints.MaxNitrogenRate > 0 {
		coeffs := make([]float64, n)
		for i, opt := range req.Options {
			coeffs[i] = opt.NutrientPct[NutrientNitrogen] / 100
		}
		rows = append(rows, lpRow{
			coeffs: coeffs,
			rhs:    req.Constraints.MaxNitrogenRate,
			kind:   rowLE,
			label:  "nitrogen limit",
		})
	}

	return rows
}

// solveLP converts the rows to standard form (one slack or surplus
// variable per row, all variables non-negative) and runs the simplex
// method. An infeasible verdict is retried exactly once with the relaxed
// tolerance before being accepted.
func (s *Solver) solveLP(costs []float64, rows []lpRow) (rates []float64, objective float64, err error) {
	n := len(costs)
	m := len(rows)
	if m == 0 {
		return make([]float64, n), 0, nil
	}

	total := n + m
	c := make([]float64, total)
	copy(c, costs)

	a := mat.NewDense(m, total, nil)
	b := make([]float64, m)
	for r, row := range rows {
		for i, coeff := range row.coeffs {
			a.Set(r, i, coeff)
		}
		// Each row gets a dedicated slack column, which also keeps the
		// constraint matrix full row rank.
		if row.kind == rowGE {
			a.Set(r, n+r, -1)
		} else {
			a.Set(r, n+r, 1)
		}
		b[r] = row.rhs
	}

	objective, x, err := lp.Simplex(c, a, b, s.cfg.Tolerance, nil)
	if errors.Is(err, lp.ErrInfeasible) {
		objective, x, err = lp.Simplex(c, a, b, s.cfg.RelaxedTolerance, nil)
	}
	if err != nil {
		return nil, 0, err
	}

	rates = make([]float64, n)
	for i := range rates {
		if x[i] > rateEpsilon {
			rates[i] = x[i]
		}
	}
	return rates, objective, nil
}

// diagnose identifies the binding constraint of an infeasible problem by
// re-solving with one constraint family removed at a time.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func (s *Solver) diagnose(req BlendRequest, nutrients []string, costs []float64) (binding, detail string) {
	if req.Constraints.Budget > 0 {
		without := allRows
		without.budget = false
		if _, minCost, err := s.solveLP(costs, s.buildRows(req, nutrients, without)); err == nil {
			return "budget cap", fmt.Sprintf("minimum feasible cost $%.2f exceeds budget $%.2f", minCost, req.Constraints.Budget)
		}
	}

	if req.Constraints.MaxNitrogenRate > 0 {
		without := allRows
		without.nitrogen = false
		if _, _, err := s.solveLP(costs, s.buildRows(req, nutrients, without)); err == nil {
			return "nitrogen limit", fmt.Sprintf("nutrient floors cannot be met within %.0f lbs/acre applied nitrogen", req.Constraints.MaxNitrogenRate)
		}
	}

	without := allRows
	without.rateCaps = false
	if _, _, err := s.solveLP(costs, s.buildRows(req, nutrients, without)); err == nil {
		return "rate caps", "per-fertilizer maximum rates are too low to meet the nutrient floors"
	}

	return "nutrient floors", "nutrient targets cannot be met with the given catalog and constraints"
}

// buildSolution assembles the feasible BlendSolution from solved rates.
//
//nolint:gocritic // hugeParam: req passed by value for purity
func (s *Solver) buildSolution(req BlendRequest, rates []float64) *BlendSolution {
	sol := &BlendSolution{
		Rates:     make(map[string]float64, len(req.Options)),
		Delivered: make(map[string]float64),
		Feasible:  true,
	}

	var appliedNitrogen float64
	for i, opt := range req.Options {
		rate := rates[i]
		sol.Rates[opt.Name] = rate
		if rate == 0 {
			continue
		}

		sol.TotalCost += rate * opt.PricePerLb * req.FieldAcres
		appliedNitrogen += rate * opt.NutrientPct[NutrientNitrogen] / 100
		for nutrient, pct := range opt.NutrientPct {
			sol.Delivered[nutrient] += rate * pct / 100 * opt.Efficiency
		}
	}

	sol.CostPerAcre = sol.TotalCost / req.FieldAcres
	sol.EnvironmentalRisk = appliedNitrogen > s.cfg.NitrogenRiskThreshold

	if req.ExpectedRevenuePerAcre > 0 && sol.TotalCost > 0 {
		revenue := req.ExpectedRevenuePerAcre * req.FieldAcres
		sol.ROIEstimate = (revenue - sol.TotalCost) / sol.TotalCost
	}

	sol.Rationale = ExplainSolution(req, sol, "")
	return sol
}
