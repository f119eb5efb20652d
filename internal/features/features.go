// Package features implements the per-frame acoustic feature extractor
// (C2): harmonic peaks, harmonic-count, harmonic-decay slope, HNR, and
// spectral centroid, all derived from a single fixed-size FFT per frame.
package features

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/vocalrange/internal/types"
)

const (
	fftSize          = 8192
	minFrameSamples  = 512
	numHarmonics     = 10
	harmonicBandFrac = 0.035 // ±3.5% of target frequency
	h1FloorDB        = -60.0
	h1h2FloorDB      = -20.0
	harmonicFloorDB  = 8.0 // above the 5th-percentile magnitude floor
	neutralSlopeDB   = -6.0
	minSlopePoints   = 3
	hnrLagWindow     = 3
	defaultHNR       = 0.5
)

// plan caches the Hann window and gonum FFT for a given padded size, mirroring
// the plan-reuse idiom in CWBudde-algo-piano's analysis package (there keyed
// by FFT length via sync.Map) adapted onto gonum/dsp/fourier.
type plan struct {
	fft  *fourier.FFT
	hann []float64
}

var plans sync.Map // map[int]*plan

func getPlan(n int) *plan {
	if v, ok := plans.Load(n); ok {
		return v.(*plan)
	}

	p := &plan{
		fft:  fourier.NewFFT(n),
		hann: hannWindow(n),
	}

	actual, _ := plans.LoadOrStore(n, p)

	return actual.(*plan)
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	return w
}

// Extract computes the FeatureVector for one audio frame at the given
// sample rate and f0 estimate. It reports ok=false (the spec's "undefined")
// when the frame is too short, H1 is too weak, or no fundamental is
// detectable.
func Extract(y []float32, sampleRate int, f0Hz float64) (types.FeatureVector, bool) {
	if f0Hz <= 0 || len(y) < minFrameSamples {
		return types.FeatureVector{}, false
	}

	p := getPlan(fftSize)

	windowed := make([]float64, fftSize)

	n := len(y)
	if n > fftSize {
		n = fftSize
	}

	win := hannWindow(n)
	for i := 0; i < n; i++ {
		windowed[i] = float64(y[i]) * win[i]
	}

	spectrum := p.fft.Coefficients(nil, windowed)
	mags := make([]float64, len(spectrum))

	for i, c := range spectrum {
		mags[i] = cmplxAbs(c)
	}

	freqRes := float64(sampleRate) / float64(fftSize)
	noiseFloorDB := percentileDB(mags, 5)

	harmonicsDB := make([]float64, numHarmonics)
	for h := 1; h <= numHarmonics; h++ {
		harmonicsDB[h-1] = peakDB(mags, freqRes, f0Hz*float64(h))
	}

	h1 := harmonicsDB[0]
	if h1 <= h1FloorDB {
		return types.FeatureVector{}, false
	}

	h1MinusH2 := h1 - harmonicsDB[1]
	if h1MinusH2 < h1h2FloorDB {
		return types.FeatureVector{}, false
	}

	threshold := noiseFloorDB + harmonicFloorDB

	harmonicCount := 0
	for _, db := range harmonicsDB {
		if db > threshold {
			harmonicCount++
		}
	}

	slope := harmonicSlope(harmonicsDB, threshold)
	hnr := computeHNR(y, sampleRate, f0Hz)
	centroid := spectralCentroid(mags, freqRes)

	centroidOverF0 := 0.0
	if f0Hz > 0 {
		centroidOverF0 = centroid / f0Hz
	}

	return types.FeatureVector{
		H1MinusH2dB:     h1MinusH2,
		HarmonicCount:   harmonicCount,
		HarmonicSlopeDB: slope,
		HNR:             hnr,
		CentroidOverF0:  centroidOverF0,
		F0Hz:            f0Hz,
	}, true
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// peakDB finds the local peak magnitude within a band around targetHz,
// converts to dB, and refines the estimate with parabolic interpolation
// around the peak bin. The interpolated estimate is discarded (falling
// back to the raw bin magnitude) when it diverges: at least 2x the center
// bin magnitude, or negative.
func peakDB(mags []float64, freqRes, targetHz float64) float64 {
	if targetHz <= 0 {
		return h1FloorDB * 2 // well below any threshold
	}

	halfWinHz := math.Max(10.0, targetHz*harmonicBandFrac)
	lo := int(math.Max(1, math.Floor((targetHz-halfWinHz)/freqRes)))
	hi := int(math.Min(float64(len(mags)-2), math.Ceil((targetHz+halfWinHz)/freqRes)))

	if lo >= hi {
		return h1FloorDB * 2
	}

	peakBin := lo
	best := mags[lo]

	for i := lo + 1; i <= hi; i++ {
		if mags[i] > best {
			best = mags[i]
			peakBin = i
		}
	}

	a, b, c := mags[peakBin-1], mags[peakBin], mags[peakBin+1]

	peak := b

	denom := a - 2*b + c
	if math.Abs(denom) > 1e-12 {
		offset := 0.5 * (a - c) / denom
		interpolated := b - 0.25*(a-c)*offset

		if interpolated <= b*2.0 && interpolated >= 0 {
			peak = interpolated
		}
	}

	return 20.0 * math.Log10(math.Max(peak, 1e-10))
}

func percentileDB(mags []float64, pct float64) float64 {
	sorted := append([]float64(nil), mags...)
	sort.Float64s(sorted)

	v := stat.Quantile(pct/100.0, stat.Empirical, sorted, nil)

	return 20.0 * math.Log10(math.Max(v, 1e-12))
}

// harmonicSlope fits a line (dB per harmonic index) over the harmonics
// that clear the noise-floor threshold. With fewer than three valid
// points, report the neutral default.
func harmonicSlope(harmonicsDB []float64, threshold float64) float64 {
	var xs, ys []float64

	for i, db := range harmonicsDB {
		if db > threshold {
			xs = append(xs, float64(i+1))
			ys = append(ys, db)
		}
	}

	if len(xs) < minSlopePoints {
		return neutralSlopeDB
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)

	return beta
}

// computeHNR estimates harmonic-to-noise ratio as the max, zero-lag
// normalized autocorrelation within ±3 lags of the theoretical pitch
// period, clipped to [0,1]. Degenerate cases (too few samples around the
// target lag, or near-silent input) return the neutral default.
func computeHNR(y []float32, sampleRate int, f0Hz float64) float64 {
	n := len(y)
	win := hannWindow(n)

	windowed := make([]float64, n)
	for i, s := range y {
		windowed[i] = float64(s) * win[i]
	}

	zeroLag := autocorrAt(windowed, 0)
	if zeroLag < 1e-10 {
		return defaultHNR
	}

	lag := int(math.Round(float64(sampleRate) / f0Hz))
	if lag < hnrLagWindow+2 || lag >= n-hnrLagWindow-2 {
		return defaultHNR
	}

	best := math.Inf(-1)

	for d := -hnrLagWindow; d <= hnrLagWindow; d++ {
		v := autocorrAt(windowed, lag+d) / zeroLag
		if v > best {
			best = v
		}
	}

	return clamp01(best)
}

func autocorrAt(x []float64, lag int) float64 {
	if lag < 0 {
		lag = -lag
	}

	var sum float64

	for i := 0; i+lag < len(x); i++ {
		sum += x[i] * x[i+lag]
	}

	return sum
}

func spectralCentroid(mags []float64, freqRes float64) float64 {
	var weighted, total float64

	for i, m := range mags {
		freq := float64(i) * freqRes
		weighted += freq * m
		total += m
	}

	if total <= 0 {
		return 0
	}

	return weighted / total
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
