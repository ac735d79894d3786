package windowing

import (
	"fmt"
	"math"
	"strings"
)

// Function is a precomputed analysis window
type Function interface {
	ApplyInPlace(signal []float64) error
	Size() int
	Coefficients() []float64
}

// CosineSum is a generalized cosine-sum window:
//
//	w[i] = a0 - a1*cos(2πi/N) + a2*cos(4πi/N) - ...
type CosineSum struct {
	name         string
	size         int
	coefficients []float64
}

// NewHamming creates a Hamming window
func NewHamming(size int, symmetric bool) *CosineSum {
	return newCosineSum("hamming", size, symmetric, 0.54, 0.46)
}

// NewBlackman creates a classic Blackman window
func NewBlackman(size int, symmetric bool) *CosineSum {
	return newCosineSum("blackman", size, symmetric, 0.42, 0.5, 0.08)
}

func newCosineSum(name string, size int, symmetric bool, terms ...float64) *CosineSum {
	w := &CosineSum{
		name:         name,
		size:         size,
		coefficients: make([]float64, size),
	}
	if size == 1 {
		w.coefficients[0] = 1
		return w
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	for i := range size {
		arg := 2 * math.Pi * float64(i) / denominator
		sign := 1.0
		for k, a := range terms {
			w.coefficients[i] += sign * a * math.Cos(float64(k)*arg)
			sign = -sign
		}
	}
	return w
}

func (w *CosineSum) ApplyInPlace(signal []float64) error {
	if len(signal) != w.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.size)
	}

	for i := range signal {
		signal[i] *= w.coefficients[i]
	}

	return nil
}

func (w *CosineSum) Size() int {
	return w.size
}

// Name returns the window type
func (w *CosineSum) Name() string {
	return w.name
}

func (w *CosineSum) Coefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// Names lists the window types accepted by New
var Names = []string{"hann", "hamming", "blackman"}

// New builds a periodic window by name, for STFT framing
func New(name string, size int) (Function, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch strings.ToLower(name) {
	case "", "hann":
		return NewHann(size, false), nil
	case "hamming":
		return NewHamming(size, false), nil
	case "blackman":
		return NewBlackman(size, false), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", name)
	}
}
