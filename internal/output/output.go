// Package output converts a summary.Summary into the wire-level Result
// mapping described by the pitch-to-range pipeline's output contract:
// recognized range/ratio keys with one-decimal rounding, or a single-key
// error mapping on a fatal condition.
package output

import (
	"math"

	"github.com/farcloser/vocalrange/internal/summary"
)

// Body is the successful (non-error) Result payload.
type Body struct {
	summary summary.Summary
}

// FromSummary wraps a computed Summary for ToMap conversion.
func FromSummary(s summary.Summary) Body {
	return Body{summary: s}
}

// ToMap builds the Result mapping (spec.md §3): recognized keys for
// overall/chest/falsetto extrema and their reference frequencies, counts,
// ratios, and the chest average. A register section is entirely absent
// when that register produced no frames — never zero-valued placeholders.
func (b Body) ToMap() map[string]any {
	out := map[string]any{}

	addRange(out, "overall", b.summary.Overall)
	addRange(out, "chest", b.summary.Chest)
	addRange(out, "falsetto", b.summary.Falsetto)

	out["chest_count"] = b.summary.ChestCount
	out["falsetto_count"] = b.summary.FalsettoCount
	out["chest_ratio"] = round1(b.summary.ChestRatio)
	out["falsetto_ratio"] = round1(b.summary.FalsettoRatio)

	if b.summary.ChestAvgPresent {
		out["chest_avg_hz"] = round1(b.summary.ChestAvgHz)
	}

	return out
}

func addRange(out map[string]any, prefix string, r summary.Range) {
	if !r.Present {
		return
	}

	out[prefix+"_min"] = r.MinLabel
	out[prefix+"_max"] = r.MaxLabel
	out[prefix+"_min_hz"] = round1(r.MinHz)
	out[prefix+"_max_hz"] = round1(r.MaxHz)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
