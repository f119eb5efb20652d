package notes

import (
	"math"
	"testing"
)

func TestHzToLabelReferenceA4(t *testing.T) {
	label, hz := HzToLabel(442.0)
	if label != "hiA" {
		t.Fatalf("expected hiA for 442Hz, got %s", label)
	}

	if math.Abs(hz-442.0) > 1e-6 {
		t.Fatalf("expected reference 442.0, got %v", hz)
	}
}

func TestHzToLabelMid2A(t *testing.T) {
	// mid2 spans A3..G#4 (spec.md §3): mid2A is A3, one octave below hiA.
	label, hz := HzToLabel(221.0)
	if label != "mid2A" {
		t.Fatalf("expected mid2A for 221Hz, got %s", label)
	}

	if math.Abs(hz-221.0) > 1e-6 {
		t.Fatalf("expected reference 221.0, got %v", hz)
	}
}

func TestHzToLabelInvalid(t *testing.T) {
	label, hz := HzToLabel(0)
	if label != "unknown" || hz != 0.0 {
		t.Fatalf("expected (unknown, 0.0), got (%s, %v)", label, hz)
	}

	label, hz = HzToLabel(-10)
	if label != "unknown" || hz != 0.0 {
		t.Fatalf("expected (unknown, 0.0) for negative hz, got (%s, %v)", label, hz)
	}
}

func TestHzToLabelNearestIsLogSpace(t *testing.T) {
	label, _ := HzToLabel(440.0)
	if label != "hiA" {
		t.Fatalf("expected hiA for 440Hz (close to A4=442), got %s", label)
	}

	// 455.05Hz lies between hiA (442) and hiA# (~468.28): just above their
	// log-space midpoint (~454.95) but below their linear midpoint
	// (~455.14), so only the log metric picks hiA#.
	label, _ = HzToLabel(455.05)
	if label != "hiA#" {
		t.Fatalf("expected hiA# for 455.05Hz under log-space nearest, got %s", label)
	}
}

func TestLabelToHzRoundTrip(t *testing.T) {
	for _, label := range []string{"hiA", "mid2C", "lowlowC", "hihihiA"} {
		hz, ok := LabelToHz(label)
		if !ok {
			t.Fatalf("expected %s to be found", label)
		}

		gotLabel, _ := HzToLabel(hz)
		if gotLabel != label {
			t.Fatalf("round trip mismatch for %s: got %s", label, gotLabel)
		}
	}
}

func TestLabelToHzAliasesMid1(t *testing.T) {
	mid1A, ok := LabelToHz("mid1A")
	if !ok {
		t.Fatalf("expected mid1A alias to resolve")
	}

	mid2A, ok := LabelToHz("mid2A")
	if !ok {
		t.Fatalf("expected mid2A to resolve")
	}

	if math.Abs(mid1A-mid2A) > 1e-6 {
		t.Fatalf("expected mid1A alias to equal mid2A frequency, got %v vs %v", mid1A, mid2A)
	}
}

func TestLabelToHzAliasesLo(t *testing.T) {
	loA, ok := LabelToHz("loA")
	if !ok {
		t.Fatalf("expected loA alias to resolve")
	}

	lowA, ok := LabelToHz("lowA")
	if !ok {
		t.Fatalf("expected lowA to resolve")
	}

	if loA != lowA {
		t.Fatalf("expected loA alias to equal lowA frequency, got %v vs %v", loA, lowA)
	}
}

func TestLabelToHzNotFound(t *testing.T) {
	_, ok := LabelToHz("totallyBogus")
	if ok {
		t.Fatalf("expected not-found for bogus label")
	}
}

func TestLabelToHzDoesNotAliasLowlow(t *testing.T) {
	// lowlow must not be caught by the "lo*" alias construction.
	_, ok := LabelToHz("lolowC")
	if ok {
		t.Fatalf("did not expect an alias for lolowC")
	}
}
