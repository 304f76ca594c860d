// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

// Compare builds a cross-candidate comparison matrix from ranked results.
//
// Rows are factors in canonical order, columns are candidates in rank
// order. Excluded factor cells hold -1 and never win their criterion.
// The overall winner follows the same ranking rule as aggregation, so it
// is simply the rank-1 candidate. Fewer than two candidates is a
// caller-input error.
func Compare(results []SuitabilityResult) (*ComparisonMatrix, error) {
	if len(results) < 2 {
		return nil, &InsufficientCandidatesError{Got: len(results)}
	}

	m := &ComparisonMatrix{
		Criteria:      append([]Factor(nil), Factors...),
		CandidateIDs:  make([]string, len(results)),
		Values:        make([][]float64, len(Factors)),
		Winners:       make(map[Factor][]string, len(Factors)),
		OverallWinner: results[0].CandidateID,
	}

	for col, r := range results {
		m.CandidateIDs[col] = r.CandidateID
	}

	for row, factor := range Factors {
		m.Values[row] = make([]float64, len(results))

		best := -1.0
		for col := range results {
			value := factorValue(&results[col], factor)
			m.Values[row][col] = value
			if value > best {
				best = value
			}
		}

		if best < 0 {
			// Factor excluded for every candidate; no winner.
			continue
		}

		for col := range results {
			if m.Values[row][col] == best {
				m.Winners[factor] = append(m.Winners[factor], results[col].CandidateID)
			}
		}
	}

	return m, nil
}

// factorValue returns the candidate's score for a factor, or -1 when the
// factor was excluded or absent.
func factorValue(r *SuitabilityResult, factor Factor) float64 {
	for _, s := range r.Factors {
		if s.Factor == factor {
			if !s.Included {
				return -1
			}
			return s.Value
		}
	}
	return -1
}
