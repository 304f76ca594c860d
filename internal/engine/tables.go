// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package engine

// textureOrder indexes texture classes from coarsest to finest.
// Similarity between classes decays with distance in this ordering.
var textureOrder = map[Texture]int{
	TextureSand:      0,
	TextureSandyLoam: 1,
	TextureLoam:      2,
	TextureSiltLoam:  3,
	TextureClayLoam:  4,
	TextureClay:      5,
}

// textureSimilarityByDistance maps ordering distance to a partial score.
// Distance 0 is an exact match and always scores 1.0.
var textureSimilarityByDistance = [...]float64{1.0, 0.8, 0.55, 0.4, 0.3, 0.2}

// TextureSimilarity returns the similarity score between two texture
// classes. Unrecognized classes return (0, false).
func TextureSimilarity(a, b Texture) (float64, bool) {
	ia, ok := textureOrder[a]
	if !ok {
		return 0, false
	}
	ib, ok := textureOrder[b]
	if !ok {
		return 0, false
	}

	d := ia - ib
	if d < 0 {
		d = -d
	}
	return textureSimilarityByDistance[d], true
}

// drainageOrder indexes drainage classes from wettest to driest.
var drainageOrder = map[Drainage]int{
	DrainagePoor:         0,
	DrainageSomewhatPoor: 1,
	DrainageModerate:     2,
	DrainageWell:         3,
	DrainageExcessive:    4,
}

// drainageScoreByDistance maps the distance between the candidate's
// drainage requirement and the farm's drainage class to a score.
var drainageScoreByDistance = [...]float64{1.0, 0.75, 0.5, 0.3, 0.2}

// DrainageScore returns the compatibility score between a candidate's
// drainage requirement and a farm's drainage class. Unrecognized classes
// return (0, false).
func DrainageScore(need, have Drainage) (float64, bool) {
	in, ok := drainageOrder[need]
	if !ok {
		return 0, false
	}
	ih, ok := drainageOrder[have]
	if !ok {
		return 0, false
	}

	d := in - ih
	if d < 0 {
		d = -d
	}
	return drainageScoreByDistance[d], true
}
