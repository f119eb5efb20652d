package cohesion

import (
	"testing"
)

func TestReclassifyLowFalsetto(t *testing.T) {
	lists := Lists{Falsetto: []float64{250, 300, 450}}

	out := reclassifyLowFalsetto(lists)

	if len(out.Falsetto) != 1 || out.Falsetto[0] != 450 {
		t.Fatalf("expected only 450 to remain falsetto, got %v", out.Falsetto)
	}

	if len(out.Chest) != 2 {
		t.Fatalf("expected the two sub-330Hz frames moved to chest, got %v", out.Chest)
	}
}

func TestEmptyResultFallback(t *testing.T) {
	lists := Lists{}
	allFrames := []float64{220, 221, 222}

	out := applyEmptyFallback(lists, allFrames)

	if len(out.Chest) != 3 {
		t.Fatalf("expected all post-C3 frames treated as chest, got %v", out.Chest)
	}
}

func TestTrimOutliersKeepsSingleValue(t *testing.T) {
	// A pathological single-value list: the percentile equals the value
	// itself, so the bound lies above it and nothing is trimmed. (The
	// revert-on-empty path cannot be reached this way: the bound is never
	// below the list's minimum.)
	values := []float64{220}

	out := trimOutliers(values, chestPercentile)
	if len(out) != 1 {
		t.Fatalf("expected the single value preserved, got %v", out)
	}
}

func TestTrimOutliersDropsFarOutlier(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		values = append(values, 220)
	}

	values = append(values, 220*8) // three octaves up, a wild outlier

	out := trimOutliers(values, chestPercentile)

	for _, v := range out {
		if v > 220*2 {
			t.Fatalf("expected the wild outlier trimmed, found %v in %v", v, out)
		}
	}
}

func TestPruneIsolatedExtremesKeepsClusteredHighNotes(t *testing.T) {
	values := []float64{220, 220, 220, 220, 440, 440, 440, 440, 440}

	out := pruneIsolatedExtremes(values)

	count440 := 0

	for _, v := range out {
		if v == 440 {
			count440++
		}
	}

	if count440 != 5 {
		t.Fatalf("expected the clustered high notes retained, got %d of 5", count440)
	}
}

func TestPruneIsolatedExtremesDropsLoneSpike(t *testing.T) {
	values := []float64{220, 220, 220, 220, 220, 220, 900}

	out := pruneIsolatedExtremes(values)

	for _, v := range out {
		if v == 900 {
			t.Fatalf("expected the isolated spike at 900 dropped, got %v", out)
		}
	}
}

func TestReconcileHighEndPrefersFalsettoAtTop(t *testing.T) {
	lists := Lists{
		Chest:    []float64{220, 440, 660},
		Falsetto: []float64{660, 700},
	}

	out := reconcileHighEnd(lists)

	for _, v := range out.Chest {
		if v == 660 {
			t.Fatalf("expected chest's top-band frame dropped in favor of falsetto, got %v", out.Chest)
		}
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	lists := Lists{
		Chest:    []float64{220, 221, 222, 440},
		Falsetto: []float64{300, 650, 660},
	}

	out := Reconcile(lists, nil, false)

	if len(out.Chest) == 0 {
		t.Fatalf("expected a non-empty chest list")
	}
}
