// Package notes implements the bidirectional mapping between frequency and
// the localized note-label alphabet (C1): hz_to_label and label_to_hz.
package notes

import (
	"math"
	"sort"
	"strings"
)

// A4Hz is the tuning reference: A4 = 442 Hz, not the concert-pitch 440.
const A4Hz = 442.0

// entry is one row of the frozen note table: a localized label and its
// reference frequency.
type entry struct {
	label string
	hz    float64
	log2  float64 // cached log2(hz), the lookup metric
}

// octavePrefixes anchors the A-to-G# (not C-to-B) octave boundaries used by
// the localized labeling convention, keyed by MIDI-ish octave index where
// octave 2 starts at A2.
var octavePrefixes = []string{"lowlow", "low", "mid1", "mid2", "hi", "hihi", "hihihi"}

var semitoneNames = []string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// table is the full note table, sorted ascending by frequency, built once
// at package init and never mutated afterward (spec.md §6 "Frozen at
// process start").
var table []entry

// aliases maps alternate input labels to the canonical table's reference
// frequency; consulted only by LabelToHz, per spec.md §9.
var aliases map[string]float64

func init() {
	table = buildTable()
	aliases = buildAliases()
}

// buildTable lays out seven octave bands of twelve semitones each, anchored
// A-to-G#, tuned to A4 = 442 Hz.
func buildTable() []entry {
	out := make([]entry, 0, len(octavePrefixes)*len(semitoneNames))

	for octIdx, prefix := range octavePrefixes {
		// octIdx 4 is the "hi" band, anchored at A4 = 442 Hz (spec.md §3:
		// "Octave boundaries... run A-to-G#": mid2 = A3..G#4, hi = A4..G#5,
		// so "hiA" is the literal A4 reference). Each band's A is
		// 12*(octIdx-4) semitones away from A4.
		for semIdx, name := range semitoneNames {
			semitonesFromA4 := 12*(octIdx-4) + semIdx
			hz := A4Hz * math.Pow(2, float64(semitonesFromA4)/12.0)

			out = append(out, entry{
				label: prefix + name,
				hz:    hz,
				log2:  math.Log2(hz),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].hz < out[j].hz })

	return out
}

// buildAliases accepts input labels whose octave anchor differs from the
// canonical table: mid1A/A#/B overlap the mid2 band's A-to-G# boundary, so
// on input they alias to the mid2 band's A/A#/B frequencies (overriding the
// table's own mid1A/A#/B entries, A2..B2, which HzToLabel still returns),
// and abbreviated "lo*" forms alias to "low*".
func buildAliases() map[string]float64 {
	byLabel := make(map[string]float64, len(table))
	for _, e := range table {
		byLabel[e.label] = e.hz
	}

	out := make(map[string]float64)

	for _, name := range []string{"A", "A#", "B"} {
		if hz, ok := byLabel["mid2"+name]; ok {
			out["mid1"+name] = hz
		}
	}

	for _, e := range table {
		if strings.HasPrefix(e.label, "lowlow") {
			continue
		}

		if rest, ok := strings.CutPrefix(e.label, "low"); ok {
			out["lo"+rest] = e.hz
		}
	}

	return out
}

// HzToLabel picks the table entry whose log-frequency is closest to
// log2(hz) and returns its label and reference frequency. Invalid input
// (hz <= 0) maps to ("unknown", 0.0). Nearest-neighbor in log space (not
// linear Hz) is the only acceptable metric: linear-Hz nearest-neighbor
// biases toward low notes.
func HzToLabel(hz float64) (string, float64) {
	if hz <= 0 {
		return "unknown", 0.0
	}

	target := math.Log2(hz)

	// table is sorted by hz, hence by log2(hz); binary-search for the
	// insertion point and compare the two neighbors.
	i := sort.Search(len(table), func(i int) bool { return table[i].log2 >= target })

	switch {
	case i == 0:
		return table[0].label, table[0].hz
	case i == len(table):
		last := table[len(table)-1]
		return last.label, last.hz
	default:
		before := table[i-1]
		after := table[i]
		if target-before.log2 <= after.log2-target {
			return before.label, before.hz
		}

		return after.label, after.hz
	}
}

// LabelToHz is a direct table lookup, including documented aliases, which
// are consulted first. Returns (0, false) when the label is not found;
// callers treat this as "skip".
func LabelToHz(label string) (float64, bool) {
	if hz, ok := aliases[label]; ok {
		return hz, true
	}

	for _, e := range table {
		if e.label == label {
			return e.hz, true
		}
	}

	return 0, false
}
