// Package pitch implements the post-processing cascade applied to an
// externally supplied pitch track (C3): confidence gating, the voice-range
// and unrealistic-range gates, octave repair, and the confidence-weighted
// median reference frequency.
package pitch

import (
	"fmt"
	"math"
	"sort"

	"github.com/farcloser/vocalrange/internal/types"
)

const (
	minKeptFrames = 5

	voiceRangeLowHz  = 65.0
	voiceRangeHighHz = 1324.0

	unrealisticTrimRefConfidence = 0.3
	unrealisticLowExponent       = 1.5
	unrealisticHighExponent      = 1.75

	octaveProtectConfidence = 0.5
	octaveProtectFactor     = 1.5
)

// confidenceThresholds is tried in decreasing order; the first threshold
// yielding at least minKeptFrames frames wins.
var confidenceThresholds = []float64{0.5, 0.35, 0.2, 0.1, 0.05, 0.01}

// Result is the cascade's output: the surviving frames (with both the
// octave-repaired and the original f0 carried per frame) and the
// confidence-weighted median used as the downstream reference.
type Result struct {
	Frames     types.FrameSet
	MedianFreq float64
}

// Process runs the full C3 cascade over an externally supplied pitch track.
func Process(track types.PitchTrack) (Result, error) {
	gated, err := gateByConfidence(track)
	if err != nil {
		return Result{}, err
	}

	inVoiceRange := gated.Select(func(i int) bool {
		return gated.F0[i] >= voiceRangeLowHz && gated.F0[i] <= voiceRangeHighHz
	})
	if inVoiceRange.Len() == 0 {
		return Result{}, fmt.Errorf("%w", types.ErrOutOfVoiceRange)
	}

	reference := referenceMedian(inVoiceRange)

	lowBound := reference / math.Pow(2, unrealisticLowExponent)
	highBound := reference * math.Pow(2, unrealisticHighExponent)

	trimmed := inVoiceRange.Select(func(i int) bool {
		f0 := inVoiceRange.F0[i]
		return f0 >= lowBound && f0 <= highBound
	})
	if trimmed.Len() == 0 {
		return Result{}, fmt.Errorf("%w", types.ErrNoUsableRange)
	}

	repaired := repairOctaves(trimmed, reference)

	return Result{
		Frames:     repaired,
		MedianFreq: weightedMedian(repaired.F0, repaired.Confidence),
	}, nil
}

// gateByConfidence tries decreasing confidence thresholds, accepting the
// first that keeps at least minKeptFrames frames.
func gateByConfidence(track types.PitchTrack) (types.FrameSet, error) {
	full := types.FrameSet{
		F0:         make([]float64, 0, len(track.Frames)),
		OrigF0:     make([]float64, 0, len(track.Frames)),
		Confidence: make([]float64, 0, len(track.Frames)),
		OrigIndex:  make([]int, 0, len(track.Frames)),
	}

	for i, f := range track.Frames {
		if f.F0Hz <= 0 {
			continue
		}

		full.F0 = append(full.F0, f.F0Hz)
		full.OrigF0 = append(full.OrigF0, f.F0Hz)
		full.Confidence = append(full.Confidence, f.Confidence)
		full.OrigIndex = append(full.OrigIndex, i)
	}

	for _, threshold := range confidenceThresholds {
		kept := full.Select(func(i int) bool { return full.Confidence[i] >= threshold })
		if kept.Len() >= minKeptFrames {
			return kept, nil
		}
	}

	return types.FrameSet{}, fmt.Errorf("%w", types.ErrTrackerFailed)
}

// referenceMedian is the plain median of frames with confidence >= 0.3,
// falling back to the plain median of all frames when too few qualify.
func referenceMedian(fs types.FrameSet) float64 {
	var confident []float64

	for i, c := range fs.Confidence {
		if c >= unrealisticTrimRefConfidence {
			confident = append(confident, fs.F0[i])
		}
	}

	if len(confident) >= minKeptFrames {
		return plainMedian(confident)
	}

	return plainMedian(fs.F0)
}

func plainMedian(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 0 {
		return 0
	}

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// repairOctaves considers doubling and halving each frame's f0, preferring
// whichever of {f0, 2*f0, f0/2} lies in the voice range and is strictly
// closer to the reference, unless the protection rule applies.
func repairOctaves(fs types.FrameSet, reference float64) types.FrameSet {
	out := types.FrameSet{
		F0:         make([]float64, fs.Len()),
		OrigF0:     make([]float64, fs.Len()),
		Confidence: make([]float64, fs.Len()),
		OrigIndex:  make([]int, fs.Len()),
	}

	copy(out.OrigF0, fs.F0)
	copy(out.Confidence, fs.Confidence)
	copy(out.OrigIndex, fs.OrigIndex)

	for i := range fs.F0 {
		f0 := fs.F0[i]
		out.F0[i] = repairOne(f0, reference, fs.Confidence[i])
		out.OrigF0[i] = f0
	}

	return out
}

func repairOne(f0, reference, confidence float64) float64 {
	if f0 > octaveProtectFactor*reference &&
		f0 >= voiceRangeLowHz && f0 <= voiceRangeHighHz &&
		confidence >= octaveProtectConfidence {
		return f0
	}

	doubled := f0 * 2
	halved := f0 / 2

	doubledValid := doubled >= voiceRangeLowHz && doubled <= voiceRangeHighHz
	halvedValid := halved >= voiceRangeLowHz && halved <= voiceRangeHighHz

	origDist := math.Abs(f0 - reference)

	best := f0
	bestDist := origDist

	if doubledValid {
		if d := math.Abs(doubled - reference); d < bestDist {
			best = doubled
			bestDist = d
		}
	}

	if halvedValid {
		if d := math.Abs(halved - reference); d < bestDist {
			best = halved
			bestDist = d
		}
	}

	return best
}

// weightedMedian locates the f0 at which the cumulative confidence first
// reaches half the total, over f0 sorted ascending.
func weightedMedian(f0, confidence []float64) float64 {
	n := len(f0)
	if n == 0 {
		return 0
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	sort.Slice(idx, func(a, b int) bool { return f0[idx[a]] < f0[idx[b]] })

	var total float64
	for _, c := range confidence {
		total += c
	}

	if total <= 0 {
		return plainMedian(f0)
	}

	half := total / 2.0

	var cum float64
	for _, i := range idx {
		cum += confidence[i]
		if cum >= half {
			return f0[i]
		}
	}

	return f0[idx[n-1]]
}
