package features

import (
	"math"
	"testing"
)

const testSampleRate = 44100

// synthTone builds a harmonic-rich tone at f0Hz with n samples, harmonics
// decaying by decayDBPerHarmonic dB per partial.
func synthTone(f0Hz float64, n, sampleRate int, numPartials int, decayDBPerHarmonic float64) []float32 {
	out := make([]float32, n)

	for h := 1; h <= numPartials; h++ {
		amp := math.Pow(10, (-decayDBPerHarmonic*float64(h-1))/20.0)
		freq := f0Hz * float64(h)

		for i := 0; i < n; i++ {
			t := float64(i) / float64(sampleRate)
			out[i] += float32(amp * math.Sin(2*math.Pi*freq*t))
		}
	}

	return out
}

func TestExtractTooShortFrame(t *testing.T) {
	y := make([]float32, 100)

	_, ok := Extract(y, testSampleRate, 220.0)
	if ok {
		t.Fatalf("expected ok=false for a too-short frame")
	}
}

func TestExtractInvalidF0(t *testing.T) {
	y := synthTone(220.0, 4096, testSampleRate, 5, 6.0)

	_, ok := Extract(y, testSampleRate, 0)
	if ok {
		t.Fatalf("expected ok=false for f0<=0")
	}
}

func TestExtractHealthyToneReportsHarmonics(t *testing.T) {
	y := synthTone(220.0, 8192, testSampleRate, 6, 4.0)

	fv, ok := Extract(y, testSampleRate, 220.0)
	if !ok {
		t.Fatalf("expected a healthy harmonic tone to extract cleanly")
	}

	if fv.HarmonicCount < 3 {
		t.Fatalf("expected several harmonics above the noise floor, got %d", fv.HarmonicCount)
	}

	if fv.HarmonicSlopeDB >= 0 {
		t.Fatalf("expected a decaying (negative) harmonic slope, got %v", fv.HarmonicSlopeDB)
	}

	if fv.HNR < 0 || fv.HNR > 1 {
		t.Fatalf("expected HNR in [0,1], got %v", fv.HNR)
	}

	if fv.CentroidOverF0 <= 0 {
		t.Fatalf("expected a positive centroid ratio, got %v", fv.CentroidOverF0)
	}
}

func TestExtractSilenceIsUndefined(t *testing.T) {
	y := make([]float32, 8192)

	_, ok := Extract(y, testSampleRate, 220.0)
	if ok {
		t.Fatalf("expected ok=false for silence (H1 below floor)")
	}
}

func TestExtractSparseHarmonicsFallsBackToNeutralSlope(t *testing.T) {
	// A nearly pure tone (single strong partial) leaves too few harmonics
	// above the noise floor for a slope fit; expect the neutral default.
	y := synthTone(220.0, 8192, testSampleRate, 1, 0)

	fv, ok := Extract(y, testSampleRate, 220.0)
	if !ok {
		t.Fatalf("expected a pure tone to still extract")
	}

	if fv.HarmonicSlopeDB != neutralSlopeDB {
		t.Fatalf("expected neutral slope default %v, got %v", neutralSlopeDB, fv.HarmonicSlopeDB)
	}
}
