package register

import "github.com/farcloser/vocalrange/internal/types"

// falsettoRatioThreshold is the minimum falsetto_score/(chest+falsetto)
// fraction that tips the verdict to falsetto; ties and an all-zero total
// fall to chest.
const falsettoRatioThreshold = 0.58

// scoreRule is one (feature_name, predicate, chest_delta, falsetto_delta) row
// of the rule engine's table.
type scoreRule struct {
	feature       string
	predicate     func(fv types.FeatureVector, f0, confidence float64) bool
	chestDelta    float64
	falsettoDelta float64
}

// scoreTier is a group of mutually exclusive rules for one feature: rows are
// evaluated in order and only the first matching row in the tier fires.
type scoreTier []scoreRule

// scoreTable is the full rule engine, grounded on spec.md §9's "table of
// rows... evaluate in order" instruction. Each tier corresponds to one
// acoustic signal; within a tier, the first matching row wins, mirroring the
// graded thresholds original_source/backend/register_classifier.py applies
// per feature.
var scoreTable = []scoreTier{
	{ // tracker confidence
		{
			feature:    "low_confidence",
			predicate:  func(_ types.FeatureVector, _, confidence float64) bool { return confidence < 0.55 },
			chestDelta: 1.5,
		},
	},
	{ // H1-H2 (fundamental-to-second-harmonic drop)
		{feature: "h1_h2", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.H1MinusH2dB > 12 }, falsettoDelta: 5},
		{feature: "h1_h2", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.H1MinusH2dB > 6 }, falsettoDelta: 3},
		{feature: "h1_h2", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.H1MinusH2dB > 0 }, falsettoDelta: 1},
		{feature: "h1_h2", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.H1MinusH2dB > -10 }, chestDelta: 2},
		{feature: "h1_h2", predicate: func(types.FeatureVector, float64, float64) bool { return true }, chestDelta: 4},
	},
	{ // harmonic count
		{feature: "harmonic_count", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicCount <= 2 }, falsettoDelta: 6},
		{feature: "harmonic_count", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicCount <= 4 }, falsettoDelta: 3},
		{feature: "harmonic_count", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicCount >= 8 }, chestDelta: 6},
		{feature: "harmonic_count", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicCount >= 6 }, chestDelta: 3},
	},
	{ // harmonic slope
		{feature: "harmonic_slope", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicSlopeDB < -8 }, falsettoDelta: 4},
		{feature: "harmonic_slope", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicSlopeDB < -5 }, falsettoDelta: 2},
		{feature: "harmonic_slope", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HarmonicSlopeDB > -2 }, chestDelta: 3},
		{feature: "harmonic_slope", predicate: func(types.FeatureVector, float64, float64) bool { return true }, chestDelta: 1},
	},
	{ // harmonics-to-noise ratio
		{feature: "hnr", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HNR < 0.3 }, falsettoDelta: 3},
		{feature: "hnr", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HNR < 0.5 }, falsettoDelta: 1},
		{feature: "hnr", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HNR > 0.8 }, chestDelta: 3},
		{feature: "hnr", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.HNR > 0.65 }, chestDelta: 1},
	},
	{ // spectral centroid over f0
		{feature: "centroid_over_f0", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.CentroidOverF0 < 2.0 }, falsettoDelta: 2},
		{feature: "centroid_over_f0", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.CentroidOverF0 < 3.0 }, falsettoDelta: 0.5},
		{feature: "centroid_over_f0", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.CentroidOverF0 > 5.0 }, chestDelta: 2},
		{feature: "centroid_over_f0", predicate: func(fv types.FeatureVector, _, _ float64) bool { return fv.CentroidOverF0 > 3.5 }, chestDelta: 1},
	},
	{ // high f0 leans falsetto
		{feature: "f0_high", predicate: func(_ types.FeatureVector, f0, _ float64) bool { return f0 > 600 }, falsettoDelta: 1.0},
		{feature: "f0_high", predicate: func(_ types.FeatureVector, f0, _ float64) bool { return f0 > 500 }, falsettoDelta: 0.5},
	},
	{ // low f0 leans chest
		{feature: "f0_low", predicate: func(_ types.FeatureVector, f0, _ float64) bool { return f0 < 220 }, chestDelta: 3},
		{feature: "f0_low", predicate: func(_ types.FeatureVector, f0, _ float64) bool { return f0 < 295 }, chestDelta: 1.5},
		{feature: "f0_low", predicate: func(_ types.FeatureVector, f0, _ float64) bool { return f0 < 350 }, chestDelta: 0.5},
	},
}

// scoreFrame runs the deterministic rule engine over one frame's acoustic
// features, tracker confidence, and f0, accumulating graded chest/falsetto
// scores from the scoreTable tiers in order.
func scoreFrame(fv types.FeatureVector, f0, confidence float64) types.RegisterLabel {
	var chestScore, falsettoScore float64

	for _, tier := range scoreTable {
		for _, rule := range tier {
			if rule.predicate(fv, f0, confidence) {
				chestScore += rule.chestDelta
				falsettoScore += rule.falsettoDelta

				break
			}
		}
	}

	total := chestScore + falsettoScore
	if total <= 0 {
		return types.RegisterChest
	}

	if falsettoScore/total >= falsettoRatioThreshold {
		return types.RegisterFalsetto
	}

	return types.RegisterChest
}
