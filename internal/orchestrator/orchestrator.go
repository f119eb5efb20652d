// Package orchestrator wires the pitch-to-range pipeline end to end (C7):
// preprocessing, C3's pitch post-processor, C4's per-frame register
// classifier, C5's cohesion filter, and C6's range summary. It holds no
// domain logic of its own, only the stage sequencing, frame-index
// bookkeeping, and cancellation checks.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/farcloser/vocalrange/internal/cohesion"
	"github.com/farcloser/vocalrange/internal/features"
	"github.com/farcloser/vocalrange/internal/pcmsource"
	"github.com/farcloser/vocalrange/internal/pitch"
	"github.com/farcloser/vocalrange/internal/register"
	"github.com/farcloser/vocalrange/internal/summary"
	"github.com/farcloser/vocalrange/internal/types"
)

// featureWindowSamples is the width of the audio window handed to C2 around
// each surviving frame's original center sample.
const featureWindowSamples = 4096

// State is the orchestrator's view of pipeline progress (spec.md §4.7).
type State int

const (
	StateLoaded State = iota
	StatePreprocessed
	StateTracked
	StateFiltered
	StateClassified
	StateSummarized
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StatePreprocessed:
		return "preprocessed"
	case StateTracked:
		return "tracked"
	case StateFiltered:
		return "filtered"
	case StateClassified:
		return "classified"
	case StateSummarized:
		return "summarized"
	default:
		return "error"
	}
}

// Options carries the input contract's two informational/behavioral flags
// plus the optional model handle.
type Options struct {
	// AlreadySeparated hints that instrument bleed has already been
	// removed upstream. Reserved: currently informational only.
	AlreadySeparated bool

	// NoFalsetto suppresses register classification: every retained frame
	// is treated as chest, and C5 uses the no_falsetto outlier budget.
	NoFalsetto bool

	Model *register.Model
}

// Diagnostic is one implementation-defined progress note; not part of the
// output contract, consumed only by callers that want visibility.
type Diagnostic struct {
	State State
	Note  string
}

// Progress, when non-nil, receives one Diagnostic per completed stage.
type Progress func(Diagnostic)

// Run executes the full pipeline. audio must already be decoded (see
// internal/pcmsource) and is checked, then peak-normalized, before use.
func Run(ctx context.Context, audio types.AudioBuffer, track types.PitchTrack, opts Options, progress Progress) (summary.Summary, error) {
	emit := func(s State, note string) {
		if progress != nil {
			progress(Diagnostic{State: s, Note: note})
		}
	}

	if err := pcmsource.CheckMinimum(audio); err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	emit(StateLoaded, "input accepted")

	normalized := pcmsource.NormalizePeak(audio)

	emit(StatePreprocessed, "peak-normalized")

	if err := ctx.Err(); err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	emit(StateTracked, fmt.Sprintf("%d pitch-track frames", len(track.Frames)))

	filtered, err := pitch.Process(track)
	if err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	emit(StateFiltered, fmt.Sprintf("%d frames survived C3", filtered.Frames.Len()))

	if err := ctx.Err(); err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	lists := classifyFrames(normalized, track, filtered, opts)

	emit(StateClassified, fmt.Sprintf("chest=%d falsetto=%d", len(lists.Chest), len(lists.Falsetto)))

	if err := ctx.Err(); err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	reconciled := cohesion.Reconcile(lists, filtered.Frames.F0, opts.NoFalsetto)

	if err := ctx.Err(); err != nil {
		emit(StateError, err.Error())
		return summary.Summary{}, err
	}

	result := summary.Summarize(reconciled)

	emit(StateSummarized, "range computed")

	return result, nil
}

// classifyFrames extracts a feature window per surviving frame and runs
// C4, or — under NoFalsetto — skips straight to treating every frame as
// chest (spec.md §6 input contract).
func classifyFrames(audio types.AudioBuffer, track types.PitchTrack, filtered pitch.Result, opts Options) cohesion.Lists {
	var lists cohesion.Lists

	for i := 0; i < filtered.Frames.Len(); i++ {
		f0 := filtered.Frames.F0[i]

		if opts.NoFalsetto {
			lists.Chest = append(lists.Chest, f0)
			continue
		}

		origIdx := filtered.Frames.OrigIndex[i]
		window := extractWindow(audio, track, origIdx)

		fv, ok := features.Extract(window, audio.SampleRate, f0)

		frame := register.Frame{
			F0:         f0,
			OrigF0:     filtered.Frames.OrigF0[i],
			MedianFreq: filtered.MedianFreq,
			Confidence: filtered.Frames.Confidence[i],
			Features:   fv,
			FeaturesOK: ok,
		}

		label := register.Classify(frame, opts.Model)

		switch label {
		case types.RegisterChest:
			lists.Chest = append(lists.Chest, f0)
		case types.RegisterFalsetto:
			lists.Falsetto = append(lists.Falsetto, f0)
		default:
			// unknown frames are dropped, never defaulted to a register
		}
	}

	return lists
}

// extractWindow centers a fixed-width audio window on the frame's original
// sample position (origIndex * hop_samples), clipped to the buffer bounds.
func extractWindow(audio types.AudioBuffer, track types.PitchTrack, origIndex int) []float32 {
	center := origIndex * track.HopSamples
	half := featureWindowSamples / 2

	lo := center - half
	if lo < 0 {
		lo = 0
	}

	hi := lo + featureWindowSamples
	if hi > len(audio.Samples) {
		hi = len(audio.Samples)
		lo = hi - featureWindowSamples

		if lo < 0 {
			lo = 0
		}
	}

	return audio.Samples[lo:hi]
}
