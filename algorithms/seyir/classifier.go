package seyir

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Classifier turns an observed transition matrix into maqam probabilities
type Classifier interface {
	PredictProba(ctx context.Context, features *mat.Dense) (map[string]float64, error)
}

// DefaultTemperature sharpens the softmax over correlations in [-1, 1]
const DefaultTemperature = 0.1

// ProfileClassifier compares the observed transition matrix with every
// model by Pearson correlation and turns the correlations into
// probabilities with a softmax.
type ProfileClassifier struct {
	models      *ModelSet
	temperature float64
	flattened   [][]float64
}

// NewProfileClassifier builds a classifier over a model set. A
// non-positive temperature uses DefaultTemperature.
func NewProfileClassifier(models *ModelSet, temperature float64) *ProfileClassifier {
	if models == nil {
		models = NewModelSet(0)
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	flattened := make([][]float64, len(models.models))
	for i, m := range models.models {
		flattened[i] = flatten(m.matrix)
	}

	return &ProfileClassifier{
		models:      models,
		temperature: temperature,
		flattened:   flattened,
	}
}

// PredictProba returns a probability per model, summing to 1. An empty
// model set yields an empty map.
func (c *ProfileClassifier) PredictProba(ctx context.Context, features *mat.Dense) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probabilities := make(map[string]float64, len(c.flattened))
	if len(c.flattened) == 0 {
		return probabilities, nil
	}

	rows, cols := features.Dims()
	if rows != c.models.bins || cols != c.models.bins {
		return nil, fmt.Errorf("feature matrix is %dx%d, want %dx%d", rows, cols, c.models.bins, c.models.bins)
	}

	observed := flatten(features)
	logits := make([]float64, len(c.flattened))
	for i, profile := range c.flattened {
		r := stat.Correlation(observed, profile, nil)
		if math.IsNaN(r) {
			// a flat observation carries no shape to compare
			r = 0
		}
		logits[i] = r / c.temperature
	}

	softmax(logits)
	for i, m := range c.models.models {
		probabilities[m.Name()] = logits[i]
	}

	return probabilities, nil
}

func softmax(logits []float64) {
	floats.AddConst(-floats.Max(logits), logits)
	for i, v := range logits {
		logits[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(logits), logits)
}

func flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			out = append(out, m.At(i, j))
		}
	}
	return out
}
