// Package pcmsource decodes a raw interleaved PCM byte buffer into a mono
// AudioBuffer, and provides the minimum-duration/silence check and the peak
// normalization applied before pitch tracking and feature extraction (the
// ingestion step ahead of C3).
package pcmsource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/vocalrange/internal/types"
)

// PCM normalization divisors, one per supported bit depth — the same
// 2^(n-1) constants the teacher's audit packages use to scale signed PCM
// into [-1, 1).
const (
	maxValue16 = 32768.0
	maxValue24 = 8388608.0
	maxValue32 = 2147483648.0

	minDurationSeconds = 0.3
	silenceFloor       = 0.0001

	normalizeTargetPeak = 0.95
)

// Decode reads raw interleaved signed-PCM bytes per format and downmixes to
// mono by averaging channels. It does not normalize: samples keep their
// [-1, 1) full-scale value (see NormalizePeak). Decode errors (a truncated trailing frame, an unsupported bit depth) are
// reported wrapped in fault.ErrReadFailure, matching the teacher's own
// decode-failure convention.
func Decode(data []byte, format types.PCMFormat) (types.AudioBuffer, error) {
	bytesPerSample := format.BitDepth / 8
	if bytesPerSample <= 0 || format.Channels <= 0 || format.SampleRate <= 0 {
		return types.AudioBuffer{}, fmt.Errorf("%w: invalid PCM format %+v", fault.ErrReadFailure, format)
	}

	frameSize := bytesPerSample * format.Channels
	if frameSize <= 0 || len(data)%frameSize != 0 {
		return types.AudioBuffer{}, fmt.Errorf("%w: PCM buffer is not a whole number of frames", fault.ErrReadFailure)
	}

	numFrames := len(data) / frameSize

	var maxVal float64

	switch format.BitDepth {
	case 16:
		maxVal = maxValue16
	case 24:
		maxVal = maxValue24
	case 32:
		maxVal = maxValue32
	default:
		return types.AudioBuffer{}, fmt.Errorf("%w: unsupported bit depth %d", fault.ErrReadFailure, format.BitDepth)
	}

	samples := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		base := i * frameSize

		var sum float64

		for ch := 0; ch < format.Channels; ch++ {
			offset := base + ch*bytesPerSample

			sample, err := readSample(data, offset, format.BitDepth)
			if err != nil {
				return types.AudioBuffer{}, err
			}

			sum += sample / maxVal
		}

		samples[i] = float32(sum / float64(format.Channels))
	}

	return types.AudioBuffer{Samples: samples, SampleRate: format.SampleRate}, nil
}

func readSample(data []byte, offset, bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		if offset+2 > len(data) {
			return 0, fmt.Errorf("%w: truncated 16-bit sample", fault.ErrReadFailure)
		}

		return float64(int16(binary.LittleEndian.Uint16(data[offset:]))), nil
	case 24:
		if offset+3 > len(data) {
			return 0, fmt.Errorf("%w: truncated 24-bit sample", fault.ErrReadFailure)
		}

		raw := int32(data[offset]) | int32(data[offset+1])<<8 | int32(data[offset+2])<<16
		if raw&0x800000 != 0 {
			raw |= -(1 << 24) // sign-extend
		}

		return float64(raw), nil
	case 32:
		if offset+4 > len(data) {
			return 0, fmt.Errorf("%w: truncated 32-bit sample", fault.ErrReadFailure)
		}

		return float64(int32(binary.LittleEndian.Uint32(data[offset:]))), nil
	default:
		return 0, fmt.Errorf("%w: unsupported bit depth %d", fault.ErrReadFailure, bitDepth)
	}
}

// CheckMinimum validates the two cheapest fatal preconditions before any
// further pipeline work: a minimum duration and a minimum peak amplitude.
// It must run against the raw, not-yet-normalized buffer: NormalizePeak
// would otherwise rescale genuine silence up to full scale and mask it.
func CheckMinimum(buf types.AudioBuffer) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("%w: invalid sample rate", types.ErrTooShort)
	}

	duration := float64(len(buf.Samples)) / float64(buf.SampleRate)
	if duration < minDurationSeconds {
		return fmt.Errorf("%w: %.3fs under the %.1fs minimum", types.ErrTooShort, duration, minDurationSeconds)
	}

	if peakOf(buf.Samples) < silenceFloor {
		return fmt.Errorf("%w: peak amplitude under the %.6f floor", types.ErrSilent, silenceFloor)
	}

	return nil
}

// NormalizePeak returns a copy of buf scaled so its peak sample magnitude
// is 0.95 (spec.md §3's "peak normalized to ≈0.95 before pitch tracking",
// leaving headroom below full scale). A buffer that is exactly all-zero is
// returned unchanged.
func NormalizePeak(buf types.AudioBuffer) types.AudioBuffer {
	peak := peakOf(buf.Samples)
	if peak <= 0 {
		return buf
	}

	scale := normalizeTargetPeak / peak

	out := make([]float32, len(buf.Samples))
	for i, s := range buf.Samples {
		out[i] = float32(float64(s) * scale)
	}

	return types.AudioBuffer{Samples: out, SampleRate: buf.SampleRate}
}

func peakOf(samples []float32) float64 {
	var peak float64

	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}

	return peak
}
