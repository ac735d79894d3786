package chroma

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-maqam/algorithms/spectral"
	"github.com/RyanBlaney/sonido-maqam/algorithms/windowing"
)

// ChromaSTFT computes an octave-folded chromagram from an STFT.
//
// Unlike the classic 12-bin chroma, the octave is split into binsPerOctave
// equal steps so quarter tones survive: at 36 bins a semitone spans 3 bins.
// Bin 0 is the pitch class of the reference frequency.
type ChromaSTFT struct {
	sampleRate    int
	stft          *spectral.STFT
	referenceFreq float64 // pitch class of bin 0
	binsPerOctave int
	minFreq       float64 // Minimum frequency to consider
	maxFreq       float64 // Maximum frequency to consider
}

// NewChromaSTFT creates a chromagram calculator
func NewChromaSTFT(sampleRate, binsPerOctave int, referenceFreq float64) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate:    sampleRate,
		stft:          spectral.NewSTFT(),
		referenceFreq: referenceFreq,
		binsPerOctave: binsPerOctave,
		minFreq:       80.0,   // Approximate E2
		maxFreq:       5000.0, // keeps the first few harmonics of melodic instruments
	}
}

// SetFrequencyRange limits the spectrum folded into the chromagram
func (cs *ChromaSTFT) SetFrequencyRange(minFreq, maxFreq float64) {
	cs.minFreq = minFreq
	cs.maxFreq = maxFreq
}

// BinsPerOctave returns the chroma resolution
func (cs *ChromaSTFT) BinsPerOctave() int {
	return cs.binsPerOctave
}

// ComputeChroma returns a frame-major chromagram ([frame][bin]) with every
// frame normalized to unit sum. A nil window means a periodic Hann window.
func (cs *ChromaSTFT) ComputeChroma(signal []float64, windowSize, hopSize int, window spectral.Window) ([][]float64, error) {
	if cs.binsPerOctave <= 0 {
		return nil, fmt.Errorf("bins per octave must be positive")
	}
	if cs.referenceFreq <= 0 {
		return nil, fmt.Errorf("reference frequency must be positive")
	}
	if window == nil {
		window = windowing.NewHann(windowSize, false)
	}

	stftResult, err := cs.stft.ComputeWithWindow(signal, windowSize, hopSize, cs.sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	return cs.convertSTFTToChroma(stftResult), nil
}

func (cs *ChromaSTFT) convertSTFTToChroma(stftResult *spectral.STFTResult) [][]float64 {
	chromagram := make([][]float64, stftResult.TimeFrames)
	chromaMapping := cs.calculateChromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	for t := range stftResult.TimeFrames {
		chromagram[t] = make([]float64, cs.binsPerOctave)

		for f, magnitude := range stftResult.Magnitude[t] {
			if bin := chromaMapping[f]; bin >= 0 {
				// Use magnitude squared for energy
				chromagram[t][bin] += magnitude * magnitude
			}
		}

		normalizeFrame(chromagram[t])
	}

	return chromagram
}

// calculateChromaMapping maps FFT bins to chroma bins, -1 outside the range
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := range freqBins {
		frequency := float64(f) * freqResolution
		if frequency < cs.minFreq || frequency > cs.maxFreq || frequency <= 0 {
			mapping[f] = -1
			continue
		}
		mapping[f] = cs.FrequencyToBin(frequency)
	}

	return mapping
}

// FrequencyToBin folds a frequency into its chroma bin
func (cs *ChromaSTFT) FrequencyToBin(frequency float64) int {
	steps := int(math.Round(float64(cs.binsPerOctave) * math.Log2(frequency/cs.referenceFreq)))
	return ((steps % cs.binsPerOctave) + cs.binsPerOctave) % cs.binsPerOctave
}

// BinFrequency returns the frequency of bin in the reference octave
func (cs *ChromaSTFT) BinFrequency(bin int) float64 {
	return cs.referenceFreq * math.Pow(2, float64(bin)/float64(cs.binsPerOctave))
}

func normalizeFrame(frame []float64) {
	totalEnergy := 0.0
	for _, energy := range frame {
		totalEnergy += energy
	}

	if totalEnergy > 1e-10 {
		for i := range frame {
			frame[i] /= totalEnergy
		}
	}
}
