package maqam

import "slices"

// MinDistinctPositions is the least evidence MatchJins will score
const MinDistinctPositions = 3

// MatchJins finds the jins template best covered by the observed positions.
//
// A template offset counts as present when any observed position lies within
// tolerance bins of it; each offset counts once. The score is the covered
// fraction of the template, so extra observed positions cost nothing. The
// first template reaching the highest score wins.
func (c *Catalog) MatchJins(observed []int, tolerance int) Match {
	positions := distinctPositions(observed)
	if len(positions) < MinDistinctPositions {
		return unknownMatch()
	}
	if tolerance < 0 {
		tolerance = 0
	}

	best := unknownMatch()
	for _, j := range c.ajnas {
		score := coverage(j.Intervals, positions, tolerance)
		if score > best.Confidence {
			best = Match{Jins: j.Name, Confidence: score}
		}
	}

	return best
}

func coverage(template, positions []int, tolerance int) float64 {
	matches := 0
	for _, offset := range template {
		if containsNear(positions, offset, tolerance) {
			matches++
		}
	}
	return float64(matches) / float64(len(template))
}

// containsNear reports whether a sorted position set holds a value within
// tolerance of target
func containsNear(sorted []int, target, tolerance int) bool {
	i, _ := slices.BinarySearch(sorted, target-tolerance)
	return i < len(sorted) && sorted[i] <= target+tolerance
}

func distinctPositions(observed []int) []int {
	positions := slices.Clone(observed)
	slices.Sort(positions)
	return slices.Compact(positions)
}

// Segment splits a tonic-relative sequence at boundary. Values below the
// boundary go to lower unchanged; the rest go to upper re-based so the
// boundary becomes 0. Order is preserved and nothing is dropped.
func Segment(sequence []int, boundary int) (lower, upper []int) {
	lower = make([]int, 0, len(sequence))
	upper = make([]int, 0, len(sequence))

	for _, bin := range sequence {
		if bin < boundary {
			lower = append(lower, bin)
		} else {
			upper = append(upper, bin-boundary)
		}
	}

	return lower, upper
}
