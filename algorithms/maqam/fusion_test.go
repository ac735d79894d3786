package maqam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuseClassifierWinsSelection(t *testing.T) {
	symbolic := Prediction{Maqam: "Bayati", Jins1: "Bayati", Jins2: "Nahawand", Confidence: 1, Kind: KindExact}
	transition := map[string]float64{"Rast": -1, "Bayati": -3}
	classifier := map[string]float64{"Hijaz": 0.6, "Bayati": 0.4}

	fused := Fuse(symbolic, transition, classifier)

	assert.Equal(t, "Hijaz", fused.Maqam)
	assert.Equal(t, SourceClassifier, fused.SelectedBy)
	assert.Equal(t, KindStatistical, fused.Kind)
	assert.InDelta(t, (1.0+0.6)/2, fused.Confidence, 1e-12)
	assert.Equal(t, symbolic, fused.Symbolic)
	assert.Equal(t, "Bayati", fused.Jins1, "jins stay those heard by the symbolic path")
}

func TestFuseTransitionScenario(t *testing.T) {
	fused := Fuse(UnknownPrediction(), map[string]float64{"Rast": -2.0, "Hijaz": -5.0}, nil)

	assert.Equal(t, "Rast", fused.Maqam)
	assert.Equal(t, SourceTransition, fused.SelectedBy)
	assert.Equal(t, 0.5, fused.Confidence)
	assert.Equal(t, []Contribution{
		{Source: SourceSymbolic, Value: 0},
		{Source: SourceTransition, Value: 1.0},
	}, fused.Contributions)
}

func TestFuseClassifierDisagreesWithSymbolic(t *testing.T) {
	symbolic := Prediction{Maqam: "Hijaz", Confidence: 0.4, Kind: KindExact}

	fused := Fuse(symbolic, nil, map[string]float64{"Rast": 0.9, "Hijaz": 0.1})

	assert.Equal(t, "Rast", fused.Maqam)
	assert.InDelta(t, 0.65, fused.Confidence, 1e-12)
	assert.Equal(t, []Contribution{
		{Source: SourceSymbolic, Value: 0.4},
		{Source: SourceClassifier, Value: 0.9},
	}, fused.Contributions)
}

func TestFuseDisagreementLowersConfidence(t *testing.T) {
	classifier := map[string]float64{"Rast": 0.9, "Hijaz": 0.1}

	agree := Fuse(Prediction{Maqam: "Rast", Confidence: 1, Kind: KindExact}, nil, classifier)
	disagree := Fuse(Prediction{Maqam: "Hijaz", Confidence: 0, Kind: KindExact}, nil, classifier)

	assert.Equal(t, "Rast", disagree.Maqam)
	assert.InDelta(t, 0.95, agree.Confidence, 1e-12)
	assert.InDelta(t, 0.45, disagree.Confidence, 1e-12)
}

func TestFuseAllSourcesAgree(t *testing.T) {
	symbolic := Prediction{Maqam: "Rast", Confidence: 0.875, Kind: KindExact, Family: "Rast"}
	transition := map[string]float64{"Rast": -2, "Bayati": -4, "Hijaz": -6}
	classifier := map[string]float64{"Rast": 0.5, "Bayati": 0.3, "Hijaz": 0.2}

	fused := Fuse(symbolic, transition, classifier)

	assert.Equal(t, "Rast", fused.Maqam)
	assert.Equal(t, KindExact, fused.Kind)
	assert.Equal(t, "Rast", fused.Family)
	assert.Len(t, fused.Contributions, 3)
	assert.InDelta(t, (0.875+0.5+1.0)/3, fused.Confidence, 1e-12)
}

func TestFuseEmptyMapsKeepSymbolic(t *testing.T) {
	symbolic := Prediction{Maqam: "Bayati", Confidence: 0.81, Variant: true, Kind: KindVariant}

	fused := Fuse(symbolic, map[string]float64{}, nil)

	assert.Equal(t, "Bayati", fused.Maqam)
	assert.Equal(t, SourceSymbolic, fused.SelectedBy)
	assert.Equal(t, 0.81, fused.Confidence)
	assert.True(t, fused.Variant)
}

func TestFuseSingletonTransitionHasNoRange(t *testing.T) {
	fused := Fuse(UnknownPrediction(), map[string]float64{"Rast": -3}, nil)

	assert.Equal(t, "Rast", fused.Maqam)
	assert.Equal(t, []Contribution{{Source: SourceSymbolic, Value: 0}}, fused.Contributions)
	assert.Equal(t, 0.0, fused.Confidence)
}

func TestFuseTieBreaksByName(t *testing.T) {
	fused := Fuse(UnknownPrediction(), nil, map[string]float64{"Rast": 0.5, "Bayati": 0.5})
	assert.Equal(t, "Bayati", fused.Maqam)
}

func TestFuseConfidenceBounds(t *testing.T) {
	symbolics := []Prediction{
		UnknownPrediction(),
		{Maqam: "Rast", Confidence: 1, Kind: KindExact},
		{Maqam: "Bayati-based", Confidence: 0.3, Kind: KindFallback},
	}
	maps := []map[string]float64{
		nil,
		{},
		{"Rast": 1.4},
		{"Rast": -0.2},
		{"Rast": -2, "Hijaz": -5},
		{"Rast": 0.7, "Bayati": 0.2, "Hijaz": 0.1},
		{"Rast": 3, "Bayati": 3},
	}

	for _, symbolic := range symbolics {
		for _, transition := range maps {
			for _, classifier := range maps {
				c := Fuse(symbolic, transition, classifier).Confidence
				assert.GreaterOrEqual(t, c, 0.0)
				assert.LessOrEqual(t, c, 1.0)
			}
		}
	}
}

func TestPredictorAnalyzeAndPredict(t *testing.T) {
	p := NewPredictor(nil)

	assert.Equal(t, "Bayati", p.Analyze(bayatiWalk).Maqam)

	fused := p.Predict(bayatiWalk, nil, nil)
	assert.Equal(t, "Bayati", fused.Maqam)
	assert.Equal(t, 1.0, fused.Confidence)
	assert.Equal(t, "Nahawand", fused.Jins2)

	fused = p.Predict(bayatiWalk, nil, map[string]float64{"Hijaz Kar": 1})
	assert.Equal(t, "Hijaz Kar", fused.Maqam)
	assert.Equal(t, "Hijaz", fused.Family)
	assert.Equal(t, KindStatistical, fused.Kind)
	assert.Equal(t, "Bayati", fused.Symbolic.Maqam)
}
