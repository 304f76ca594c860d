// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

import (
	"errors"
	"fmt"
)

// ErrNoCandidates is returned when a ranking request carries no candidates.
var ErrNoCandidates = errors.New("no candidates provided")

// ErrNoFactorsIncluded is returned when every factor had to be excluded
// because the farm conditions carried no usable inputs.
var ErrNoFactorsIncluded = errors.New("no factor inputs available for scoring")

// InvalidWeightsError reports a scoring weight configuration that violates
// the non-negativity or sum-to-one invariants. It is fatal to the request
// and rejected before any scoring begins.
type InvalidWeightsError struct {
	// Reason describes the violated invariant.
	Reason string

	// Sum is the observed weight sum, when the sum invariant is violated.
	Sum float64
}

func (e *InvalidWeightsError) Error() string {
	if e.Sum != 0 {
		return fmt.Sprintf("invalid scoring weights: %s (sum=%.6f)", e.Reason, e.Sum)
	}
	return fmt.Sprintf("invalid scoring weights: %s", e.Reason)
}

// TooManyCandidatesError reports a ranking request exceeding the configured
// candidate limit. This is a caller-input error, not a computation failure.
type TooManyCandidatesError struct {
	// Got is the number of candidates supplied.
	Got int

	// Limit is the configured maximum.
	Limit int
}

func (e *TooManyCandidatesError) Error() string {
	return fmt.Sprintf("too many candidates: %d > %d", e.Got, e.Limit)
}

// InsufficientCandidatesError reports a comparison request with fewer than
// two candidates. This is a caller-input error, not a computation failure.
type InsufficientCandidatesError struct {
	// Got is the number of candidates supplied.
	Got int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("comparison requires at least 2 candidates, got %d", e.Got)
}

// DataInsufficientError reports that a factor's required farm input was
// entirely missing. It is recoverable: the aggregator renormalizes the
// remaining weights and the factor is surfaced as a warning, never a
// request failure.
type DataInsufficientError struct {
	// Factor is the excluded factor.
	Factor Factor

	// Missing names the absent farm input.
	Missing string
}

func (e *DataInsufficientError) Error() string {
	return fmt.Sprintf("factor %s excluded: %s not provided", e.Factor, e.Missing)
}
