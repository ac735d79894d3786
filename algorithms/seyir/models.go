package seyir

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-maqam/algorithms/maqam"
	"github.com/goccy/go-yaml"
	"gonum.org/v1/gonum/mat"
)

// ModelSet holds one transition model per maqam, in insertion order
type ModelSet struct {
	bins   int
	models []*TransitionModel
	index  map[string]int
}

// NewModelSet creates an empty set of the given resolution
func NewModelSet(bins int) *ModelSet {
	return &ModelSet{
		bins:  bins,
		index: make(map[string]int),
	}
}

// Add inserts a model, replacing any model of the same name in place
func (s *ModelSet) Add(model *TransitionModel) error {
	if model.Bins() != s.bins {
		return fmt.Errorf("%w: %q has %d bins, set has %d", ErrInvalidModel, model.Name(), model.Bins(), s.bins)
	}

	if idx, ok := s.index[model.Name()]; ok {
		s.models[idx] = model
		return nil
	}

	s.index[model.Name()] = len(s.models)
	s.models = append(s.models, model)
	return nil
}

// Bins returns the resolution every model in the set shares
func (s *ModelSet) Bins() int {
	return s.bins
}

// Len returns the number of models
func (s *ModelSet) Len() int {
	return len(s.models)
}

// Names lists model names in insertion order
func (s *ModelSet) Names() []string {
	names := make([]string, len(s.models))
	for i, m := range s.models {
		names[i] = m.Name()
	}
	return names
}

// Model looks up a model by name
func (s *ModelSet) Model(name string) (*TransitionModel, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.models[idx], true
}

// Score returns the log-likelihood of the sequence under every model
func (s *ModelSet) Score(sequence []int) map[string]float64 {
	scores := make(map[string]float64, len(s.models))
	for _, m := range s.models {
		scores[m.Name()] = m.LogLikelihood(sequence)
	}
	return scores
}

// LoadModels reads a {name: matrix} document. JSON is accepted as YAML.
// Models keep the order they appear in the document.
func LoadModels(r io.Reader, bins int) (*ModelSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read models: %w", err)
	}

	var order yaml.MapSlice
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	var matrices map[string][][]float64
	if err := yaml.Unmarshal(data, &matrices); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	set := NewModelSet(bins)
	for _, item := range order {
		name := fmt.Sprint(item.Key)

		dense, err := denseFromRows(name, matrices[name], bins)
		if err != nil {
			return nil, err
		}

		model, err := NewTransitionModel(name, dense)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func denseFromRows(name string, rows [][]float64, bins int) (*mat.Dense, error) {
	if len(rows) != bins {
		return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrInvalidModel, name, len(rows), bins)
	}

	data := make([]float64, 0, bins*bins)
	for i, row := range rows {
		if len(row) != bins {
			return nil, fmt.Errorf("%w: %q row %d has %d columns, want %d", ErrInvalidModel, name, i, len(row), bins)
		}
		data = append(data, row...)
	}

	return mat.NewDense(bins, bins, data), nil
}

// Weights of the hand-authored models. Everything off the scale gets the
// floor.
const (
	stepUpWeight   = 0.4
	stepDownWeight = 0.3
	repeatWeight   = 0.2
	offScaleWeight = 1e-6
)

// BuiltinModels derives one model per catalog maqam from its scale
// template: stepwise motion between neighbouring degrees and repeated notes
// carry the weight. Scales are rescaled when bins differs from the catalog
// resolution.
func BuiltinModels(catalog *maqam.Catalog, bins int) (*ModelSet, error) {
	if catalog == nil {
		catalog = maqam.DefaultCatalog()
	}
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bins must be positive", ErrInvalidModel)
	}

	set := NewModelSet(bins)
	for _, name := range catalog.MaqamNames() {
		scale, ok := catalog.ScaleTemplate(name)
		if !ok {
			continue
		}
		scale = rescale(scale, catalog.BinsPerOctave(), bins)

		weights := mat.NewDense(bins, bins, nil)
		for i := range bins {
			for j := range bins {
				weights.Set(i, j, offScaleWeight)
			}
		}

		for i, degree := range scale {
			next := scale[(i+1)%len(scale)]
			weights.Set(degree, degree, repeatWeight)
			if next != degree {
				weights.Set(degree, next, stepUpWeight)
				weights.Set(next, degree, stepDownWeight)
			}
		}

		model, err := NewTransitionModel(name, weights)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func rescale(scale []int, from, to int) []int {
	if from == to {
		return scale
	}

	out := make([]int, 0, len(scale))
	for _, bin := range scale {
		out = append(out, int(math.Round(float64(bin)*float64(to)/float64(from)))%to)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
