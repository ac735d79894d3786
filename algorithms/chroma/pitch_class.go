package chroma

import (
	"gonum.org/v1/gonum/floats"
)

// DominantBins picks the strongest bin of every frame, turning a chromagram
// into the melody line. Empty frames map to bin 0.
func DominantBins(chromagram [][]float64) []int {
	dominant := make([]int, len(chromagram))

	for t, frame := range chromagram {
		if len(frame) == 0 {
			continue
		}
		dominant[t] = floats.MaxIdx(frame)
	}

	return dominant
}

// MeanProfile averages the chromagram over time. Short frames contribute
// zeros for their missing bins.
func MeanProfile(chromagram [][]float64) []float64 {
	if len(chromagram) == 0 {
		return nil
	}

	bins := 0
	for _, frame := range chromagram {
		bins = max(bins, len(frame))
	}

	profile := make([]float64, bins)
	for _, frame := range chromagram {
		floats.Add(profile[:len(frame)], frame)
	}
	floats.Scale(1/float64(len(chromagram)), profile)

	return profile
}

// FindTonic returns the bin with the highest sustained energy, which in
// maqam performance is usually the rukooz. ok is false for an empty
// chromagram.
func FindTonic(chromagram [][]float64) (tonic int, ok bool) {
	profile := MeanProfile(chromagram)
	if len(profile) == 0 {
		return 0, false
	}
	return floats.MaxIdx(profile), true
}

// Normalize transposes a bin sequence so that tonic becomes bin 0
func Normalize(sequence []int, tonic, binsPerOctave int) []int {
	normalized := make([]int, len(sequence))
	if binsPerOctave <= 0 {
		copy(normalized, sequence)
		return normalized
	}

	for i, bin := range sequence {
		normalized[i] = ((bin-tonic)%binsPerOctave + binsPerOctave) % binsPerOctave
	}

	return normalized
}

// ToSequence collapses a chromagram to a tonic-relative bin sequence
func ToSequence(chromagram [][]float64, tonic, binsPerOctave int) []int {
	return Normalize(DominantBins(chromagram), tonic, binsPerOctave)
}
