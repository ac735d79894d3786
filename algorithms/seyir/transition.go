package seyir

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidModel is wrapped by every model construction or loading error
var ErrInvalidModel = errors.New("invalid transition model")

// probabilityFloor keeps log-likelihoods finite for unseen transitions
const probabilityFloor = 1e-9

// TransitionModel is a first-order Markov model of melodic motion between
// pitch bins. Rows are the current bin, columns the next; every row sums
// to 1.
type TransitionModel struct {
	name   string
	matrix *mat.Dense
}

// NewTransitionModel copies and row-normalizes a square, non-negative
// matrix. Rows without any weight become uniform.
func NewTransitionModel(name string, weights mat.Matrix) (*TransitionModel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidModel)
	}

	rows, cols := weights.Dims()
	if rows == 0 || rows != cols {
		return nil, fmt.Errorf("%w: %q is %dx%d, want a square matrix", ErrInvalidModel, name, rows, cols)
	}

	matrix := mat.DenseCopyOf(weights)
	for i := range rows {
		row := matrix.RawRowView(i)
		for j, w := range row {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: %q has weight %v at (%d, %d)", ErrInvalidModel, name, w, i, j)
			}
		}

		sum := floats.Sum(row)
		if sum == 0 {
			for j := range row {
				row[j] = 1 / float64(cols)
			}
			continue
		}
		floats.Scale(1/sum, row)
	}

	return &TransitionModel{name: name, matrix: matrix}, nil
}

// Name returns the maqam the model describes
func (m *TransitionModel) Name() string {
	return m.name
}

// Bins returns the model resolution
func (m *TransitionModel) Bins() int {
	rows, _ := m.matrix.Dims()
	return rows
}

// Probability returns P(to | from)
func (m *TransitionModel) Probability(from, to int) float64 {
	bins := m.Bins()
	return m.matrix.At(clampBin(from, bins), clampBin(to, bins))
}

// Matrix returns a copy of the transition probabilities
func (m *TransitionModel) Matrix() *mat.Dense {
	return mat.DenseCopyOf(m.matrix)
}

// LogLikelihood scores a bin sequence under the model. Out-of-range bins
// are clamped to the model's edge bins.
func (m *TransitionModel) LogLikelihood(sequence []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(sequence); i++ {
		total += math.Log(m.Probability(sequence[i], sequence[i+1]) + probabilityFloor)
	}
	return total
}

func clampBin(bin, bins int) int {
	return min(max(bin, 0), bins-1)
}

// TransitionMatrix counts the observed transitions of a sequence and
// normalizes each row. Rows of bins never left stay zero.
func TransitionMatrix(sequence []int, bins int) *mat.Dense {
	counts := mat.NewDense(bins, bins, nil)

	for i := 0; i+1 < len(sequence); i++ {
		from, to := clampBin(sequence[i], bins), clampBin(sequence[i+1], bins)
		counts.Set(from, to, counts.At(from, to)+1)
	}

	for i := range bins {
		row := counts.RawRowView(i)
		if sum := floats.Sum(row); sum > 0 {
			floats.Scale(1/sum, row)
		}
	}

	return counts
}
