// Package register implements the per-frame register classifier (C4):
// confidence/physiology pre-gates, an optional hot-reloading ML model, and
// a deterministic rule-engine fallback.
package register

import (
	"math"

	"github.com/farcloser/vocalrange/internal/types"
)

const (
	minConfidence = 0.35

	chestFloorHz = 270.0

	octaveAboveStrict   = 1.5
	octaveAboveModerate = 1.0

	confidenceAboveStrict   = 0.65
	confidenceAboveModerate = 0.50
	confidenceAboveDefault  = 0.35

	mlLowF0Hz          = 500.0
	mlLowF0Posterior   = 0.75
	mlLowConfPosterior = 0.80
	mlDefaultPosterior = 0.70
	mlChestHighF0Hz    = 400.0
	mlChestPosterior   = 0.85
)

// Frame is the per-frame classification input (spec.md §4.4): the frame's
// f0 and its pre-octave-repair counterpart, the session-wide confidence-
// weighted median, the tracker confidence, and its FeatureVector (if
// extraction succeeded).
type Frame struct {
	F0         float64
	OrigF0     float64
	MedianFreq float64
	Confidence float64
	Features   types.FeatureVector
	FeaturesOK bool
}

// Classify runs the pre-gates, then the ML path (if model is non-nil and
// features were extracted), falling through to the rule engine.
func Classify(f Frame, model *Model) types.RegisterLabel {
	if f.Confidence < minConfidence {
		return types.RegisterUnknown
	}

	if f.F0 < chestFloorHz {
		return types.RegisterChest
	}

	if !passesAboveMedianGate(f.OrigF0, f.MedianFreq, f.Confidence) {
		return types.RegisterUnknown
	}

	if f.FeaturesOK && model != nil {
		if label, posterior, ok := model.Predict(f.Features); ok {
			if acceptMLPrediction(label, posterior, f.F0, f.Confidence) {
				return label
			}
		}
	}

	return scoreFrame(f.Features, f.F0, f.Confidence)
}

// passesAboveMedianGate requires progressively higher confidence the
// further a frame's pre-repair f0 sits above the session median, in
// octaves. Frames at or below the median always pass.
func passesAboveMedianGate(origF0, medianFreq, confidence float64) bool {
	if medianFreq <= 0 || origF0 <= medianFreq {
		return true
	}

	octavesAbove := math.Log2(origF0 / medianFreq)

	switch {
	case octavesAbove > octaveAboveStrict:
		return confidence >= confidenceAboveStrict
	case octavesAbove > octaveAboveModerate:
		return confidence >= confidenceAboveModerate
	default:
		return confidence >= confidenceAboveDefault
	}
}

// acceptMLPrediction applies the posterior floors required before the ML
// path's verdict is trusted over the rule engine.
func acceptMLPrediction(label types.RegisterLabel, posterior, f0, confidence float64) bool {
	var required float64

	switch {
	case f0 < mlLowF0Hz:
		required = mlLowF0Posterior
	case confidence < 0.55 && f0 >= mlLowF0Hz:
		required = mlLowConfPosterior
	default:
		required = mlDefaultPosterior
	}

	if posterior < required {
		return false
	}

	if label == types.RegisterChest && f0 >= mlChestHighF0Hz && posterior < mlChestPosterior {
		return false
	}

	return true
}
