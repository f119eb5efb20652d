// Package summary implements the range summarizer (C6): it converts the
// reconciled chest and falsetto f0 lists into the final labeled range,
// ratios, and averages.
package summary

import (
	"math"
	"sort"

	"github.com/farcloser/vocalrange/internal/cohesion"
	"github.com/farcloser/vocalrange/internal/notes"
)

const (
	robustMaxMinFrames    = 5
	robustMaxSemitoneBand = 1.0
	percentOfWhole        = 100.0
)

// Range describes one register's labeled extrema, in both label and hertz
// form. Present is false when the register has no frames at all (the
// caller omits the corresponding Result keys).
type Range struct {
	MinLabel string
	MinHz    float64
	MaxLabel string
	MaxHz    float64
	Present  bool
}

// Summary is the full C6 output.
type Summary struct {
	Overall  Range
	Chest    Range
	Falsetto Range

	ChestCount      int
	FalsettoCount   int
	ChestRatio      float64
	FalsettoRatio   float64
	ChestAvgHz      float64
	ChestAvgPresent bool
}

// Summarize computes the final range description from the reconciled
// chest/falsetto lists.
func Summarize(lists cohesion.Lists) Summary {
	s := Summary{
		Chest:         rangeOf(lists.Chest),
		Falsetto:      rangeOf(lists.Falsetto),
		ChestCount:    len(lists.Chest),
		FalsettoCount: len(lists.Falsetto),
	}

	total := s.ChestCount + s.FalsettoCount
	if total > 0 {
		s.ChestRatio = percentOfWhole * float64(s.ChestCount) / float64(total)
		s.FalsettoRatio = percentOfWhole * float64(s.FalsettoCount) / float64(total)
	}

	if s.ChestCount > 0 {
		var sum float64
		for _, f0 := range lists.Chest {
			sum += f0
		}

		s.ChestAvgHz = sum / float64(s.ChestCount)
		s.ChestAvgPresent = true
	}

	union := append(append([]float64(nil), lists.Chest...), lists.Falsetto...)
	s.Overall = rangeOf(union)

	return s
}

// rangeOf computes the robust-max/literal-min labeled range for one list.
func rangeOf(values []float64) Range {
	if len(values) == 0 {
		return Range{}
	}

	minHz := values[0]
	for _, v := range values[1:] {
		if v < minHz {
			minHz = v
		}
	}

	maxHz := robustMax(values)

	minLabel, minRef := notes.HzToLabel(minHz)
	maxLabel, maxRef := notes.HzToLabel(maxHz)

	return Range{
		MinLabel: minLabel,
		MinHz:    minRef,
		MaxLabel: maxLabel,
		MaxHz:    maxRef,
		Present:  true,
	}
}

// robustMax walks candidates from highest to lowest, reporting the first
// with at least robustMaxMinFrames frames within +-1 semitone of it. If
// none qualifies, the literal maximum is reported instead.
func robustMax(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	for _, candidate := range sorted {
		if countWithinSemitones(values, candidate, robustMaxSemitoneBand) >= robustMaxMinFrames {
			return candidate
		}
	}

	return sorted[0]
}

func countWithinSemitones(values []float64, center, semitones float64) int {
	ratio := math.Pow(2, semitones/12.0)
	lo := center / ratio
	hi := center * ratio

	count := 0

	for _, v := range values {
		if v >= lo && v <= hi {
			count++
		}
	}

	return count
}
