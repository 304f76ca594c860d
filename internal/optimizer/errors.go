// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"errors"
	"fmt"
)

// ErrSolveTimeout is returned when a solve exceeds its deadline.
// A timed-out solve never yields a partial solution.
var ErrSolveTimeout = errors.New("blend solve timed out")

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("solver pool closed")

// InfeasibleError reports that no rate vector satisfies all hard
// constraints. The binding constraint is always named; the optimizer
// never silently approximates an infeasible problem, and retries at most
// once with a relaxed numerical tolerance.
type InfeasibleError struct {
	// Binding names the constraint that prevents feasibility.
	Binding string

	// Detail carries the specific values behind the diagnosis.
	Detail string
}

func (e *InfeasibleError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("blend infeasible: %s (%s)", e.Binding, e.Detail)
	}
	return fmt.Sprintf("blend infeasible: %s", e.Binding)
}

// ValidationError reports a structurally invalid blend request, rejected
// before the solve begins.
type ValidationError struct {
	// Field names the offending input.
	Field string

	// Reason describes the violation.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid blend request: %s: %s", e.Field, e.Reason)
}
