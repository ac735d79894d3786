package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestMinMaxNormalize(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMaxNormalize([]float64{-5, -3.5, -2}))
	assert.Equal(t, []float64{0, 0}, MinMaxNormalize([]float64{4, 4}))
}

func TestMinMaxScale(t *testing.T) {
	scaled, ok := MinMaxScale(-2, []float64{-2, -5})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, scaled, 1e-12)

	_, ok = MinMaxScale(1, []float64{1})
	assert.False(t, ok, "a single entry has no range")

	_, ok = MinMaxScale(1, []float64{1, 1, 1})
	assert.False(t, ok, "zero range is skipped")
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.3, Clamp01(0.3))
}

func TestArgMaxKey(t *testing.T) {
	_, ok := ArgMaxKey(nil)
	assert.False(t, ok)

	key, ok := ArgMaxKey(map[string]float64{"Rast": -2, "Hijaz": -5})
	assert.True(t, ok)
	assert.Equal(t, "Rast", key)

	// ties resolve to the smallest key on every call
	for range 20 {
		key, _ = ArgMaxKey(map[string]float64{"Saba": 0.5, "Bayati": 0.5, "Kurd": 0.1})
		assert.Equal(t, "Bayati", key)
	}
}

func TestMode(t *testing.T) {
	label, count := Mode([]string{"Rast", "Bayati", "Bayati", "Rast", "Hijaz"})
	assert.Equal(t, "Rast", label, "tie goes to first encountered")
	assert.Equal(t, 2, count)

	label, count = Mode(nil)
	assert.Equal(t, "", label)
	assert.Equal(t, 0, count)
}
