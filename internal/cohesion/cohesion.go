// Package cohesion implements the outlier and cohesion filter (C5): it
// reconciles the chest and falsetto f0 lists produced by the register
// classifier into two statistically clean, mutually consistent lists.
package cohesion

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/vocalrange/internal/notes"
)

const (
	lowFalsettoFloorHz = 330.0

	chestPercentile      = 97.0
	falsettoPercentile   = 75.0
	noFalsettoPercentile = 95.0
	semitoneGap          = 3.0

	isolationMedianFactor  = 1.5
	isolationSemitoneBand  = 1.0
	isolationMinNeighbors  = 4
	highEndBandSemitones   = 2.0
)

// Lists holds the chest and falsetto f0 collections threaded through C5.
type Lists struct {
	Chest    []float64
	Falsetto []float64
}

// Reconcile runs the full C5 cascade. allFrames is every post-C3 frame's
// f0, used only for the empty-result fallback (step 2). noFalsetto selects
// the 95th-percentile outlier budget in place of the usual 75th/97th.
func Reconcile(lists Lists, allFrames []float64, noFalsetto bool) Lists {
	lists = reclassifyLowFalsetto(lists)
	lists = applyEmptyFallback(lists, allFrames)

	chestPct := chestPercentile
	falsettoPct := falsettoPercentile

	if noFalsetto {
		chestPct = noFalsettoPercentile
		falsettoPct = noFalsettoPercentile
	}

	lists.Chest = trimOutliers(lists.Chest, chestPct)
	lists.Falsetto = trimOutliers(lists.Falsetto, falsettoPct)

	lists.Chest = pruneIsolatedExtremes(lists.Chest)
	lists.Falsetto = pruneIsolatedExtremes(lists.Falsetto)

	lists = reconcileHighEnd(lists)

	return lists
}

// reclassifyLowFalsetto moves any "falsetto" frame below the physiological
// display floor into chest.
func reclassifyLowFalsetto(lists Lists) Lists {
	var keep []float64

	for _, f0 := range lists.Falsetto {
		if f0 < lowFalsettoFloorHz {
			lists.Chest = append(lists.Chest, f0)
		} else {
			keep = append(keep, f0)
		}
	}

	lists.Falsetto = keep

	return lists
}

func applyEmptyFallback(lists Lists, allFrames []float64) Lists {
	if len(lists.Chest) == 0 && len(lists.Falsetto) == 0 {
		lists.Chest = append([]float64(nil), allFrames...)
	}

	return lists
}

// trimOutliers keeps only values at or below reference*2^(gap/12), where
// reference is the given percentile of the list. A trim that would remove
// everything is reverted.
func trimOutliers(values []float64, percentile float64) []float64 {
	if len(values) == 0 {
		return values
	}

	reference := percentileOf(values, percentile)
	bound := reference * math.Pow(2, semitoneGap/12.0)

	var kept []float64

	for _, v := range values {
		if v <= bound {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		return values
	}

	return kept
}

func percentileOf(values []float64, percentile float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return stat.Quantile(percentile/100.0, stat.LinearInterp, sorted, nil)
}

// pruneIsolatedExtremes drops frames above 1.5x the list's median that have
// fewer than 4 neighbors within +-1 semitone. Never drops everything.
func pruneIsolatedExtremes(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}

	median := plainMedian(values)
	extremeFloor := median * isolationMedianFactor

	var kept []float64

	for _, v := range values {
		if v <= extremeFloor {
			kept = append(kept, v)
			continue
		}

		if countNeighborsWithinSemitones(values, v, isolationSemitoneBand) >= isolationMinNeighbors {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		return values
	}

	return kept
}

func countNeighborsWithinSemitones(values []float64, center float64, semitones float64) int {
	lo := center / math.Pow(2, semitones/12.0)
	hi := center * math.Pow(2, semitones/12.0)

	count := 0

	for _, v := range values {
		if v >= lo && v <= hi {
			count++
		}
	}

	return count
}

// reconcileHighEnd prefers the falsetto interpretation at the extreme top:
// within two semitones of the combined max, chest frames are dropped when
// falsetto is also represented there; then, if chest's and falsetto's top
// quantized labels coincide, chest frames quantizing to that label are
// dropped.
func reconcileHighEnd(lists Lists) Lists {
	if len(lists.Chest) == 0 || len(lists.Falsetto) == 0 {
		return lists
	}

	maxAll := math.Max(maxOf(lists.Chest), maxOf(lists.Falsetto))
	topBand := maxAll / math.Pow(2, highEndBandSemitones/12.0)

	falsettoHasTopBand := false

	for _, v := range lists.Falsetto {
		if v >= topBand {
			falsettoHasTopBand = true
			break
		}
	}

	if falsettoHasTopBand {
		var kept []float64

		for _, v := range lists.Chest {
			if v < topBand {
				kept = append(kept, v)
			}
		}

		lists.Chest = kept
	}

	if len(lists.Chest) == 0 {
		return lists
	}

	chestTopLabel, _ := notes.HzToLabel(maxOf(lists.Chest))
	falsettoTopLabel, _ := notes.HzToLabel(maxOf(lists.Falsetto))

	if chestTopLabel != falsettoTopLabel {
		return lists
	}

	var kept []float64

	for _, v := range lists.Chest {
		label, _ := notes.HzToLabel(v)
		if label != chestTopLabel {
			kept = append(kept, v)
		}
	}

	lists.Chest = kept

	return lists
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}

	return m
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
