package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannPeriodic(t *testing.T) {
	h := NewHann(4, false)
	coeffs := h.Coefficients()

	require.Len(t, coeffs, 4)
	assert.InDelta(t, 0.0, coeffs[0], 1e-12)
	assert.InDelta(t, 0.5, coeffs[1], 1e-12)
	assert.InDelta(t, 1.0, coeffs[2], 1e-12)
	assert.InDelta(t, 0.5, coeffs[3], 1e-12)
}

func TestHannSymmetricEndpoints(t *testing.T) {
	coeffs := NewHann(5, true).Coefficients()
	assert.InDelta(t, 0.0, coeffs[0], 1e-12)
	assert.InDelta(t, 1.0, coeffs[2], 1e-12)
	assert.InDelta(t, 0.0, coeffs[4], 1e-12)
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4, false)
	signal := []float64{2, 2, 2, 2}

	require.NoError(t, h.ApplyInPlace(signal))
	assert.InDeltaSlice(t, []float64{0, 1, 2, 1}, signal, 1e-12)

	assert.Error(t, h.ApplyInPlace([]float64{1, 2}))
}

func TestHammingAndBlackman(t *testing.T) {
	hamming := NewHamming(4, false).Coefficients()
	assert.InDeltaSlice(t, []float64{0.08, 0.54, 1.0, 0.54}, hamming, 1e-12)

	blackman := NewBlackman(5, true).Coefficients()
	assert.InDelta(t, 0.0, blackman[0], 1e-12)
	assert.InDelta(t, 1.0, blackman[2], 1e-12)
	assert.InDelta(t, 0.0, blackman[4], 1e-12)

	assert.Equal(t, []float64{1}, NewBlackman(1, true).Coefficients())
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		w, err := New(name, 8)
		require.NoError(t, err, name)
		assert.Equal(t, 8, w.Size())
	}

	w, err := New("", 4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, NewHann(4, false).Coefficients(), w.Coefficients(), 1e-12)

	_, err = New("kaiser", 8)
	assert.Error(t, err)

	_, err = New("hann", 0)
	assert.Error(t, err)
}
