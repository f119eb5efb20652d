package register

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farcloser/vocalrange/internal/types"
)

func TestClassifyLowConfidenceIsUnknown(t *testing.T) {
	f := Frame{F0: 400, MedianFreq: 300, Confidence: 0.2}

	if got := Classify(f, nil); got != types.RegisterUnknown {
		t.Fatalf("expected unknown for low confidence, got %v", got)
	}
}

func TestClassifyBelowChestFloorIsChest(t *testing.T) {
	f := Frame{F0: 200, MedianFreq: 200, Confidence: 0.9}

	if got := Classify(f, nil); got != types.RegisterChest {
		t.Fatalf("expected chest below the physiological floor, got %v", got)
	}
}

func TestClassifyAboveMedianGateSkipsLowConfidence(t *testing.T) {
	// More than 1.5 octaves above the median needs confidence >= 0.65.
	f := Frame{F0: 900, OrigF0: 900, MedianFreq: 220, Confidence: 0.5}

	if got := Classify(f, nil); got != types.RegisterUnknown {
		t.Fatalf("expected unknown for insufficiently confident high jump, got %v", got)
	}
}

func TestClassifyRuleEngineFalsettoSignature(t *testing.T) {
	fv := types.FeatureVector{
		H1MinusH2dB:     18,
		HarmonicCount:   2,
		HarmonicSlopeDB: -10,
		HNR:             0.2,
		CentroidOverF0:  1.5,
		F0Hz:            650,
	}

	f := Frame{F0: 650, OrigF0: 650, MedianFreq: 300, Confidence: 0.9, Features: fv, FeaturesOK: true}

	if got := Classify(f, nil); got != types.RegisterFalsetto {
		t.Fatalf("expected falsetto for a strongly falsetto-shaped feature vector, got %v", got)
	}
}

func TestClassifyRuleEngineChestSignature(t *testing.T) {
	fv := types.FeatureVector{
		H1MinusH2dB:     -15,
		HarmonicCount:   9,
		HarmonicSlopeDB: -1,
		HNR:             0.9,
		CentroidOverF0:  6.0,
		F0Hz:            400,
	}

	f := Frame{F0: 400, OrigF0: 400, MedianFreq: 300, Confidence: 0.9, Features: fv, FeaturesOK: true}

	if got := Classify(f, nil); got != types.RegisterChest {
		t.Fatalf("expected chest for a strongly chest-shaped feature vector, got %v", got)
	}
}

func TestClassifyRuleEngineBelowThresholdDefaultsToChest(t *testing.T) {
	fv := types.FeatureVector{
		H1MinusH2dB:     -5,
		HarmonicCount:   5,
		HarmonicSlopeDB: -3,
		HNR:             0.6,
		CentroidOverF0:  3.2,
		F0Hz:            400,
	}

	f := Frame{F0: 400, OrigF0: 400, MedianFreq: 300, Confidence: 0.9, Features: fv, FeaturesOK: true}

	if got := Classify(f, nil); got != types.RegisterChest {
		t.Fatalf("expected chest below the falsetto ratio threshold, got %v", got)
	}
}

func TestModelPredictMissingFileYieldsNoModel(t *testing.T) {
	m := NewModel("/nonexistent/path/model.json")

	_, _, ok := m.Predict(types.FeatureVector{})
	if ok {
		t.Fatalf("expected ok=false for a missing model file")
	}
}

func TestModelPredictNilModel(t *testing.T) {
	var m *Model

	_, _, ok := m.Predict(types.FeatureVector{})
	if ok {
		t.Fatalf("expected ok=false for a nil model")
	}
}

func writeModel(t *testing.T, path string, w weights, modTime time.Time) {
	t.Helper()

	raw, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal model: %v", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}

	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes model: %v", err)
	}
}

func TestModelHotReloadsOnNewerMtime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	base := time.Now().Add(-time.Hour)

	// With an all-zero feature vector the prediction reduces to sigmoid(bias)
	// alone, so a strongly negative vs. strongly positive bias isolates which
	// generation of the file is in effect.
	writeModel(t, path, weights{B: -10}, base)

	m := NewModel(path)

	label, _, ok := m.Predict(types.FeatureVector{})
	if !ok {
		t.Fatalf("expected ok=true after loading the first model")
	}

	if label != types.RegisterChest {
		t.Fatalf("expected chest from the first model's negative bias, got %v", label)
	}

	writeModel(t, path, weights{B: 10}, base.Add(time.Minute))

	label, _, ok = m.Predict(types.FeatureVector{})
	if !ok {
		t.Fatalf("expected ok=true after reloading the second model")
	}

	if label != types.RegisterFalsetto {
		t.Fatalf("expected the newer model's positive bias to supersede the first, got %v", label)
	}
}
