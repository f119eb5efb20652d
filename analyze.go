// Package vocalrange analyzes a short recorded vocal audio signal and
// produces a structured description of the singer's range: overall
// min/max, chest (modal) and falsetto (loft) register extrema, the
// proportion of frames in each register, and an average chest pitch.
package vocalrange

import (
	"context"
	"fmt"

	"github.com/farcloser/vocalrange/internal/orchestrator"
	"github.com/farcloser/vocalrange/internal/output"
	"github.com/farcloser/vocalrange/internal/pcmsource"
	"github.com/farcloser/vocalrange/internal/register"
	"github.com/farcloser/vocalrange/internal/types"
)

/*
Usage:

	buf, err := vocalrange.Decode(pcmBytes, vocalrange.PCMFormat{SampleRate: 16000, BitDepth: 16, Channels: 1})
	result, err := vocalrange.Analyze(context.Background(), buf, track, vocalrange.DefaultOptions())
	if err != nil {
	    fmt.Println(result.ToMap()["error"])
	}

	// Suppress register classification entirely.
	opts := vocalrange.DefaultOptions()
	opts.NoFalsetto = true
	result, err := vocalrange.Analyze(ctx, buf, track, opts)

	// With a hot-reloading ML model backing the register classifier.
	opts := vocalrange.DefaultOptions()
	opts.ModelPath = "/etc/vocalrange/model.json"
	result, err := vocalrange.Analyze(ctx, buf, track, opts)
*/

// PCMFormat and AudioBuffer are re-exported so callers never need to import
// internal/types directly.
type (
	PCMFormat   = types.PCMFormat
	AudioBuffer = types.AudioBuffer
)

// PitchTrackFrame and PitchTrack mirror the externally supplied pitch
// estimator's output (spec.md §3).
type (
	PitchTrackFrame = types.PitchTrackFrame
	PitchTrack      = types.PitchTrack
)

// Options controls the two input-contract flags and the optional
// classifier model path (spec.md §6).
type Options struct {
	// AlreadySeparated hints that instrument bleed has already been
	// removed upstream. Reserved: currently informational only.
	AlreadySeparated bool

	// NoFalsetto suppresses register classification; every retained
	// frame is treated as chest, with the no_falsetto outlier budget.
	NoFalsetto bool

	// ModelPath, if non-empty, is hot-reloaded and used to back the
	// register classifier's ML path. A missing or corrupt file degrades
	// to the deterministic rule engine.
	ModelPath string
}

// DefaultOptions returns the zero-value behavior: both flags off, no
// model (rule-engine-only classification).
func DefaultOptions() Options {
	return Options{}
}

// Decode turns a raw interleaved PCM byte buffer into an AudioBuffer ready
// for Analyze.
func Decode(data []byte, format PCMFormat) (AudioBuffer, error) {
	return pcmsource.Decode(data, format)
}

// Result is the final range/ratio summary (spec.md §3's Result mapping).
// ToMap produces the wire-level representation.
type Result struct {
	fatal error
	body  output.Body
}

// Diagnostic is one implementation-defined progress note, surfaced only if
// the caller asks for them via AnalyzeWithProgress.
type Diagnostic = orchestrator.Diagnostic

// Analyze runs the full pitch-to-range pipeline: C3's post-processor,
// C4's register classifier, C5's cohesion filter, and C6's range summary.
// Any fatal condition yields a Result whose ToMap is a single-key
// {"error": message} mapping; err is also returned for callers that want
// Go-idiomatic error handling rather than inspecting the map.
func Analyze(ctx context.Context, audio AudioBuffer, track PitchTrack, opts Options) (Result, error) {
	return AnalyzeWithProgress(ctx, audio, track, opts, nil)
}

// AnalyzeWithProgress is Analyze plus a callback invoked once per
// completed pipeline stage. Diagnostics are implementation-defined and
// are not part of the output contract.
func AnalyzeWithProgress(ctx context.Context, audio AudioBuffer, track PitchTrack, opts Options, progress func(Diagnostic)) (Result, error) {
	var model *register.Model
	if opts.ModelPath != "" {
		model = register.NewModel(opts.ModelPath)
	}

	orchOpts := orchestrator.Options{
		AlreadySeparated: opts.AlreadySeparated,
		NoFalsetto:       opts.NoFalsetto,
		Model:            model,
	}

	summ, err := orchestrator.Run(ctx, audio, track, orchOpts, orchestrator.Progress(progress))
	if err != nil {
		return Result{fatal: err}, fmt.Errorf("vocal range analysis failed: %w", err)
	}

	return Result{body: output.FromSummary(summ)}, nil
}

// ToMap produces the Result's wire-level mapping (spec.md §3): recognized
// range/ratio keys, or a single-key {"error": message} on a fatal
// condition.
func (r Result) ToMap() map[string]any {
	if r.fatal != nil {
		return map[string]any{"error": r.fatal.Error()}
	}

	return r.body.ToMap()
}
