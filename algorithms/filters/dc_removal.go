package filters

import (
	"math"
)

// DefaultPole gives a cutoff of roughly 18 Hz at 22.05 kHz
const DefaultPole = 0.995

// DCRemoval is a one-pole DC blocker:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// Chroma frames are normalized to unit energy, so a DC offset or a slow
// drift would otherwise leak into the lowest bins of every frame.
type DCRemoval struct {
	pole float64

	x1 float64
	y1 float64
}

// NewDCRemoval creates a blocker with DefaultPole
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{pole: DefaultPole}
}

// NewDCRemovalWithCutoff derives the pole from a -3dB cutoff using
// R = 1 - 2π·fc/fs, clamped to (0, 1).
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	if sampleRate <= 0 || cutoffFreq <= 0 {
		return NewDCRemoval()
	}

	pole := 1.0 - 2.0*math.Pi*cutoffFreq/float64(sampleRate)
	pole = math.Min(math.Max(pole, 0.001), 0.999)

	return &DCRemoval{pole: pole}
}

// Process filters a single sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessBuffer filters a whole buffer, continuing from the current state
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// Reset clears the filter state between discontinuous segments
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

// Pole returns R
func (dc *DCRemoval) Pole() float64 {
	return dc.pole
}

// CutoffFrequency approximates the -3dB point as (1-R)·fs/2π
func (dc *DCRemoval) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return (1.0 - dc.pole) * float64(sampleRate) / (2.0 * math.Pi)
}
