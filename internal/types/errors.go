package types

import "errors"

// Sentinel errors for the fatal conditions the pipeline can surface (spec.md
// §7). Each is wrapped with fmt.Errorf("%w: ...", ...) at the point of
// failure, following the teacher's fault.Err* convention; read_failed itself
// is reported directly via github.com/farcloser/primordium/fault.ErrReadFailure
// by internal/pcmsource, since that condition is identical to the teacher's
// own decode-failure case.
var (
	ErrTooShort        = errors.New("input shorter than the minimum analyzable duration")
	ErrSilent          = errors.New("peak amplitude below the silence floor")
	ErrTrackerFailed   = errors.New("no confidence threshold yielded enough frames")
	ErrOutOfVoiceRange = errors.New("all tracker frames lie outside the voice range")
	ErrNoUsableRange   = errors.New("unrealistic-range trim emptied the frame set")
)
