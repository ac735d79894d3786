package maqam

import (
	"math"
	"slices"
)

// SearchConfig bounds the segmentation search
type SearchConfig struct {
	// Boundaries are the candidate jins2 roots, tried in order
	Boundaries []int `json:"boundaries"`

	// Tolerance is the matching slack in bins. At 36 bins/octave anything
	// above 0 makes Bayati, Rast and Nahawand indistinguishable.
	Tolerance int `json:"tolerance"`

	MinLower int `json:"min_lower"` // shortest usable lower region
	MinUpper int `json:"min_upper"` // shortest usable upper region

	// ShareGhammaz offers the boundary bin to the jins1 match whenever the
	// upper region sounds its own root: the ghammaz closes jins1 and opens
	// jins2.
	ShareGhammaz bool `json:"share_ghammaz"`
}

// DefaultSearchConfig returns the 36-bin search settings. ShareGhammaz is
// on; set it to false to match the lower and upper regions strictly
// independently.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Boundaries:   slices.Clone(DefaultJins2Roots),
		Tolerance:    0,
		MinLower:     3,
		MinUpper:     2,
		ShareGhammaz: true,
	}
}

// BoundariesFor derives the diminished 4th, perfect 4th, tritone and
// perfect 5th at another resolution
func BoundariesFor(binsPerOctave int) []int {
	semitones := []float64{4, 5, 6, 7}
	boundaries := make([]int, 0, len(semitones))
	for _, st := range semitones {
		bin := int(math.Round(st * float64(binsPerOctave) / 12))
		if len(boundaries) == 0 || bin > boundaries[len(boundaries)-1] {
			boundaries = append(boundaries, bin)
		}
	}
	return boundaries
}

// Candidate records what the search saw at one boundary
type Candidate struct {
	Boundary   int        `json:"boundary"`
	Skipped    bool       `json:"skipped"` // a region was too short
	Jins1      Match      `json:"jins1"`
	Jins2      Match      `json:"jins2"`
	Prediction Prediction `json:"prediction"`
}

// Searcher tries every candidate boundary and keeps the best inference
type Searcher struct {
	catalog *Catalog
	config  SearchConfig
}

// NewSearcher creates a searcher over catalog. A nil catalog means the
// default catalog.
func NewSearcher(catalog *Catalog, config SearchConfig) *Searcher {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	config.Boundaries = slices.Clone(config.Boundaries)
	return &Searcher{catalog: catalog, config: config}
}

// Catalog returns the catalog the searcher matches against
func (s *Searcher) Catalog() *Catalog {
	return s.catalog
}

// Candidates evaluates every boundary in configuration order
func (s *Searcher) Candidates(sequence []int) []Candidate {
	candidates := make([]Candidate, 0, len(s.config.Boundaries))

	for _, boundary := range s.config.Boundaries {
		lower, upper := Segment(sequence, boundary)
		candidate := Candidate{Boundary: boundary}

		if len(lower) < s.config.MinLower || len(upper) < s.config.MinUpper {
			candidate.Skipped = true
			candidates = append(candidates, candidate)
			continue
		}

		if s.config.ShareGhammaz && containsNear(distinctPositions(upper), 0, s.config.Tolerance) {
			lower = append(lower, boundary)
		}

		candidate.Jins1 = s.catalog.MatchJins(lower, s.config.Tolerance)
		candidate.Jins2 = s.catalog.MatchJins(upper, s.config.Tolerance)
		candidate.Prediction = s.catalog.InferMaqam(candidate.Jins1, candidate.Jins2)
		candidate.Prediction.Jins2Root = boundary
		candidate.Prediction.HasBoundary = true

		candidates = append(candidates, candidate)
	}

	return candidates
}

// Analyze returns the highest-confidence candidate, or the unknown sentinel
// when every boundary was skipped or scored 0. Earlier boundaries win ties.
func (s *Searcher) Analyze(sequence []int) Prediction {
	best := UnknownPrediction()

	for _, candidate := range s.Candidates(sequence) {
		if candidate.Skipped {
			continue
		}
		if candidate.Prediction.Confidence > best.Confidence {
			best = candidate.Prediction
		}
	}

	return best
}
