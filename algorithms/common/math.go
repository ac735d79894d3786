package common

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical helpers shared by the algorithm packages, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// MinMaxNormalize normalizes data to [0, 1] range. Constant data maps to
// all zeros.
func MinMaxNormalize(data []float64) []float64 {
	if len(data) == 0 {
		return data
	}

	min := floats.Min(data)
	max := floats.Max(data)

	normalized := make([]float64, len(data))
	if math.Abs(max-min) < 1e-10 {
		return normalized
	}

	for i, val := range data {
		normalized[i] = (val - min) / (max - min)
	}

	return normalized
}

// MinMaxScale places value inside the range spanned by values. ok is false
// when fewer than two values are given or the range is zero.
func MinMaxScale(value float64, values []float64) (scaled float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}

	min := floats.Min(values)
	max := floats.Max(values)
	if max-min <= 0 {
		return 0, false
	}

	return (value - min) / (max - min), true
}

// Clamp01 limits x to [0, 1]. NaN becomes 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// SortedKeys returns the keys of m in lexicographic order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ArgMaxKey returns the key holding the largest value. Ties go to the
// lexicographically smallest key so results do not depend on map order.
func ArgMaxKey(m map[string]float64) (string, bool) {
	if len(m) == 0 {
		return "", false
	}

	keys := SortedKeys(m)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}

	// floats.MaxIdx returns the first index of the maximum
	return keys[floats.MaxIdx(values)], true
}

// MapValues returns the values of m in key order
func MapValues(m map[string]float64) []float64 {
	keys := SortedKeys(m)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}

// Mode returns the most frequent label. Ties go to the label encountered
// first.
func Mode(labels []string) (string, int) {
	counts := make(map[string]int, len(labels))
	best, bestCount := "", 0

	for _, label := range labels {
		counts[label]++
	}
	for _, label := range labels {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}

	return best, bestCount
}
