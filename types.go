package vocalrange

import "github.com/farcloser/vocalrange/internal/types"

// Sentinel errors surfaced by Analyze (spec.md §7), re-exported so callers
// can use errors.Is without importing internal/types directly.
var (
	ErrTooShort        = types.ErrTooShort
	ErrSilent          = types.ErrSilent
	ErrTrackerFailed   = types.ErrTrackerFailed
	ErrOutOfVoiceRange = types.ErrOutOfVoiceRange
	ErrNoUsableRange   = types.ErrNoUsableRange
)
