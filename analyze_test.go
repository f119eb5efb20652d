package vocalrange

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func encode16Mono(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}

	return out
}

func synthPCM16(seconds float64, sampleRate int, f0 float64) []byte {
	n := int(seconds * float64(sampleRate))
	samples := make([]int16, n)

	for i := range samples {
		t := float64(i) / float64(sampleRate)
		v := 0.5 * math.Sin(2*math.Pi*f0*t)
		samples[i] = int16(v * 32000)
	}

	return encode16Mono(samples)
}

func TestDecodeAndAnalyzeSteadyChestTone(t *testing.T) {
	const sampleRate = 16000

	data := synthPCM16(2.0, sampleRate, 221.0)

	audio, err := Decode(data, PCMFormat{SampleRate: sampleRate, BitDepth: 16, Channels: 1})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	hop := 160
	numFrames := len(audio.Samples) / hop
	frames := make([]PitchTrackFrame, numFrames)

	for i := range frames {
		frames[i] = PitchTrackFrame{F0Hz: 221.0, Confidence: 0.9}
	}

	track := PitchTrack{Frames: frames, HopSamples: hop, SampleRate: sampleRate}

	result, err := Analyze(context.Background(), audio, track, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected analyze error: %v", err)
	}

	m := result.ToMap()

	if m["chest_ratio"] != 100.0 {
		t.Fatalf("expected chest_ratio 100.0, got %v", m["chest_ratio"])
	}

	if _, hasFalsetto := m["falsetto_min"]; hasFalsetto {
		t.Fatalf("expected no falsetto section, got %v", m)
	}
}

func TestAnalyzeTooShortReturnsErrorMap(t *testing.T) {
	const sampleRate = 16000

	data := synthPCM16(0.05, sampleRate, 221.0)

	audio, err := Decode(data, PCMFormat{SampleRate: sampleRate, BitDepth: 16, Channels: 1})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	track := PitchTrack{
		Frames:     []PitchTrackFrame{{F0Hz: 221, Confidence: 0.9}},
		HopSamples: 160,
		SampleRate: sampleRate,
	}

	result, err := Analyze(context.Background(), audio, track, DefaultOptions())
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}

	m := result.ToMap()
	if _, ok := m["error"]; !ok {
		t.Fatalf("expected a single-key error map, got %v", m)
	}
}
