package register

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/farcloser/vocalrange/internal/types"
)

// weights is the on-disk logistic-regression model: a linear combination of
// the six FeatureVector scalars producing a falsetto-vs-chest posterior via
// the logistic (sigmoid) link, the same JSON-plus-validation loading idiom
// CWBudde-algo-piano's preset package uses for its own model files.
type weights struct {
	W [6]float64 `json:"weights"`
	B float64    `json:"bias"`
}

func (w weights) predictFalsettoProb(fv types.FeatureVector) float64 {
	coef := mat.NewVecDense(6, w.W[:])
	x := mat.NewVecDense(6, []float64{
		fv.H1MinusH2dB,
		float64(fv.HarmonicCount),
		fv.HarmonicSlopeDB,
		fv.HNR,
		fv.CentroidOverF0,
		fv.F0Hz,
	})

	z := w.B + mat.Dot(coef, x)

	return 1.0 / (1.0 + math.Exp(-z))
}

// Model is a process-wide optional classifier handle with hot-reload:
// before each inference it compares the backing file's modification time
// against the cached one and reloads if newer. A missing or unparsable file
// never fails the pipeline: before any successful load it leaves the handle
// with no model; after one, the last loaded model keeps serving.
type Model struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	current atomic.Pointer[weights]
}

// NewModel creates a hot-reloading handle over path. The file is not read
// until the first Predict call.
func NewModel(path string) *Model {
	return &Model{path: path}
}

// refresh reloads the model if the backing file is newer than what's
// cached, or loads it for the first time. Errors are swallowed: the model
// simply continues to serve whatever it last loaded (possibly nothing).
func (m *Model) refresh() {
	info, err := os.Stat(m.path)
	if err != nil {
		slog.Warn("register: model stat failed, keeping the last loaded model, if any", "path", m.path, "error", err)

		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !info.ModTime().After(m.modTime) && m.current.Load() != nil {
		return
	}

	raw, err := os.ReadFile(m.path)
	if err != nil {
		slog.Warn("register: model read failed, keeping the last loaded model, if any", "path", m.path, "error", err)

		return
	}

	var w weights
	if err := json.Unmarshal(raw, &w); err != nil {
		slog.Warn("register: model parse failed, keeping the last loaded model, if any", "path", m.path, "error", err)

		return
	}

	m.modTime = info.ModTime()
	m.current.Store(&w)
}

// Predict returns (label, posterior, ok). ok is false when no model could
// ever be loaded.
func (m *Model) Predict(fv types.FeatureVector) (types.RegisterLabel, float64, bool) {
	if m == nil {
		return types.RegisterUnknown, 0, false
	}

	m.refresh()

	w := m.current.Load()
	if w == nil {
		return types.RegisterUnknown, 0, false
	}

	pFalsetto := w.predictFalsettoProb(fv)

	if pFalsetto >= 0.5 {
		return types.RegisterFalsetto, pFalsetto, true
	}

	return types.RegisterChest, 1 - pFalsetto, true
}
