// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"fmt"
	"time"
)

// NutrientNitrogen is the nutrient name checked by the environmental
// nitrogen limit and risk flag.
const NutrientNitrogen = "nitrogen"

// Config contains all configuration for the blend optimizer.
type Config struct {
	// Workers is the size of the bounded solve worker pool.
	// Default: 4.
	Workers int `json:"workers" koanf:"workers"`

	// SolveTimeout is the maximum wall time for one solve, including
	// queueing for a worker slot. Default: 10s.
	SolveTimeout time.Duration `json:"solve_timeout" koanf:"solve_timeout"`

	// Tolerance is the simplex numerical tolerance. Default: 1e-10.
	Tolerance float64 `json:"tolerance" koanf:"tolerance"`

	// RelaxedTolerance is used for the single retry after an infeasible
	// verdict, to rule out numerical borderline cases. Default: 1e-6.
	RelaxedTolerance float64 `json:"relaxed_tolerance" koanf:"relaxed_tolerance"`

	// NitrogenRiskThreshold is the applied-nitrogen rate in lbs/acre
	// above which the environmental-risk flag is set. Default: 200.
	NitrogenRiskThreshold float64 `json:"nitrogen_risk_threshold" koanf:"nitrogen_risk_threshold"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:               4,
		SolveTimeout:          10 * time.Second,
		Tolerance:             1e-10,
		RelaxedTolerance:      1e-6,
		NitrogenRiskThreshold: 200,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("optimizer.workers must be positive, got %d", c.Workers)
	}
	if c.SolveTimeout <= 0 {
		return fmt.Errorf("optimizer.solve_timeout must be positive, got %v", c.SolveTimeout)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("optimizer.tolerance must be positive, got %g", c.Tolerance)
	}
	if c.RelaxedTolerance < c.Tolerance {
		return fmt.Errorf("optimizer.relaxed_tolerance must be >= tolerance, got %g < %g", c.RelaxedTolerance, c.Tolerance)
	}
	if c.NitrogenRiskThreshold <= 0 {
		return fmt.Errorf("optimizer.nitrogen_risk_threshold must be positive, got %f", c.NitrogenRiskThreshold)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
