package seyir

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-maqam/algorithms/common"
	"github.com/RyanBlaney/sonido-maqam/algorithms/maqam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	bayatiWalk = []int{0, 5, 9, 15, 21, 24, 30}
	rastWalk   = []int{0, 6, 10, 15, 21, 27, 31}
)

func TestNewTransitionModelNormalizesRows(t *testing.T) {
	m, err := NewTransitionModel("Test", mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 0, 0,
		0, 2, 2,
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Bins())
	assert.Equal(t, []float64{0.5, 0.5, 0}, m.Matrix().RawRowView(0))
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, m.Matrix().RawRowView(1), 1e-12)
	assert.Equal(t, []float64{0, 0.5, 0.5}, m.Matrix().RawRowView(2))
}

func TestNewTransitionModelRejects(t *testing.T) {
	_, err := NewTransitionModel("", mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTransitionModel("Wide", mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTransitionModel("Negative", mat.NewDense(2, 2, []float64{1, -1, 0, 1}))
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTransitionModel("NaN", mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 1}))
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestLogLikelihood(t *testing.T) {
	m, err := NewTransitionModel("Identity", mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.LogLikelihood(nil))
	assert.Equal(t, 0.0, m.LogLikelihood([]int{1}))
	assert.InDelta(t, math.Log(1+1e-9)+math.Log(1e-9), m.LogLikelihood([]int{0, 0, 1}), 1e-9)

	// out of range bins clamp to the edges: 5 -> 1, -3 -> 0
	assert.InDelta(t, math.Log(1e-9), m.LogLikelihood([]int{5, -3}), 1e-9)
}

func TestTransitionMatrix(t *testing.T) {
	m := TransitionMatrix([]int{0, 1, 1, 0, 2}, 3)

	assert.Equal(t, []float64{0, 0.5, 0.5}, m.RawRowView(0))
	assert.Equal(t, []float64{0.5, 0.5, 0}, m.RawRowView(1))
	assert.Equal(t, []float64{0, 0, 0}, m.RawRowView(2))
}

func TestModelSetOrderAndReplace(t *testing.T) {
	set := NewModelSet(2)
	for _, name := range []string{"Rast", "Bayati", "Hijaz"} {
		m, err := NewTransitionModel(name, mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
		require.NoError(t, err)
		require.NoError(t, set.Add(m))
	}

	replacement, err := NewTransitionModel("Bayati", mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	require.NoError(t, err)
	require.NoError(t, set.Add(replacement))

	assert.Equal(t, []string{"Rast", "Bayati", "Hijaz"}, set.Names())
	got, ok := set.Model("Bayati")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	wrong, err := NewTransitionModel("Big", mat.NewDense(3, 3, nil))
	require.NoError(t, err)
	assert.ErrorIs(t, set.Add(wrong), ErrInvalidModel)
}

func TestModelSetScoreEmpty(t *testing.T) {
	scores := NewModelSet(36).Score(bayatiWalk)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestLoadModelsYAML(t *testing.T) {
	doc := `
Bayati:
  - [0, 1, 0]
  - [0, 0, 1]
  - [1, 0, 0]
Rast:
  - [1, 1, 0]
  - [0, 0, 0]
  - [0, 2, 2]
`
	set, err := LoadModels(strings.NewReader(doc), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bayati", "Rast"}, set.Names())
	rast, _ := set.Model("Rast")
	assert.Equal(t, 0.5, rast.Probability(0, 1))
}

func TestLoadModelsJSONKeepsDocumentOrder(t *testing.T) {
	set, err := LoadModels(strings.NewReader(`{"Zed": [[1, 0], [0, 1]], "Alpha": [[0, 1], [1, 0]]}`), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zed", "Alpha"}, set.Names())

	scores := set.Score([]int{0, 0})
	assert.Greater(t, scores["Zed"], scores["Alpha"])
}

func TestLoadModelsRejects(t *testing.T) {
	docs := map[string]string{
		"wrong rows":    `{"Bayati": [[1, 0]]}`,
		"wrong columns": `{"Bayati": [[1, 0, 0], [0, 1]]}`,
		"negative":      `{"Bayati": [[1, -1], [0, 1]]}`,
		"not a map":     `[1, 2, 3]`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := LoadModels(strings.NewReader(doc), 2)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestBuiltinModelsPreferOwnScale(t *testing.T) {
	set, err := BuiltinModels(nil, maqam.DefaultBinsPerOctave)
	require.NoError(t, err)
	assert.Equal(t, maqam.DefaultCatalog().MaqamNames(), set.Names())

	best, ok := common.ArgMaxKey(set.Score(bayatiWalk))
	require.True(t, ok)
	assert.Equal(t, "Bayati", best)

	best, ok = common.ArgMaxKey(set.Score(rastWalk))
	require.True(t, ok)
	assert.Equal(t, "Rast", best)
}

func TestBuiltinModelsRescale(t *testing.T) {
	set, err := BuiltinModels(nil, 24)
	require.NoError(t, err)

	assert.Equal(t, 24, set.Bins())
	bayati, ok := set.Model("Bayati")
	require.True(t, ok)
	// 0 -> 5 at 36 bins is 0 -> 3 at 24 (3.33 rounds to 3)
	assert.Greater(t, bayati.Probability(0, 3), 0.4)

	_, err = BuiltinModels(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestProfileClassifier(t *testing.T) {
	set, err := BuiltinModels(nil, 36)
	require.NoError(t, err)
	classifier := NewProfileClassifier(set, 0)

	probabilities, err := classifier.PredictProba(context.Background(), TransitionMatrix(bayatiWalk, 36))
	require.NoError(t, err)
	require.Len(t, probabilities, set.Len())

	assert.InDelta(t, 1.0, floats.Sum(common.MapValues(probabilities)), 1e-9)
	best, _ := common.ArgMaxKey(probabilities)
	assert.Equal(t, "Bayati", best)
}

func TestProfileClassifierFlatObservation(t *testing.T) {
	set, err := BuiltinModels(nil, 36)
	require.NoError(t, err)

	probabilities, err := NewProfileClassifier(set, 0).PredictProba(context.Background(), mat.NewDense(36, 36, nil))
	require.NoError(t, err)

	for _, p := range probabilities {
		assert.InDelta(t, 1.0/float64(set.Len()), p, 1e-12)
	}
}

func TestProfileClassifierErrors(t *testing.T) {
	set, err := BuiltinModels(nil, 36)
	require.NoError(t, err)
	classifier := NewProfileClassifier(set, 0.5)

	_, err = classifier.PredictProba(context.Background(), mat.NewDense(12, 12, nil))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = classifier.PredictProba(ctx, TransitionMatrix(bayatiWalk, 36))
	assert.ErrorIs(t, err, context.Canceled)

	empty, err := NewProfileClassifier(nil, 0).PredictProba(context.Background(), mat.NewDense(36, 36, nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
