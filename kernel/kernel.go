// Package kernel provides pairwise similarity functions and gram matrices.
//
// The set of kernels is closed: Linear, Polynomial and Gaussian. Kernels are
// plain values holding their hyperparameters and never change after
// construction, so a single kernel may be shared by any number of models.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// Kernel computes k(x, y) for two feature vectors of equal length.
type Kernel interface {
	// Name returns the kernel type, e.g. "gaussian".
	Name() string

	// Eval returns k(x, y). x and y must have the same length.
	Eval(x, y []float64) float64
}

// Linear is k(x, y) = xᵗy + C.
type Linear struct {
	C float64
}

// NewLinear returns a linear kernel with bias c.
func NewLinear(c float64) Linear {
	return Linear{C: c}
}

func (Linear) Name() string { return "linear" }

func (k Linear) Eval(x, y []float64) float64 {
	return floats.Dot(x, y) + k.C
}

// Polynomial is k(x, y) = (A·xᵗy + C)^D.
type Polynomial struct {
	A float64
	C float64
	D float64
}

// NewPolynomial returns a polynomial kernel with scale a, bias c and degree d.
func NewPolynomial(a, c, d float64) Polynomial {
	return Polynomial{A: a, C: c, D: d}
}

func (Polynomial) Name() string { return "polynomial" }

func (k Polynomial) Eval(x, y []float64) float64 {
	return math.Pow(k.A*floats.Dot(x, y)+k.C, k.D)
}

// Gaussian is the RBF kernel k(x, y) = exp(−‖x−y‖² / (2S²)).
type Gaussian struct {
	S float64
}

// NewGaussian returns a Gaussian kernel with bandwidth s. s must be non-zero.
func NewGaussian(s float64) (Gaussian, error) {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return Gaussian{}, errors.NewValidationError("sigma", "must be a finite non-zero bandwidth", s)
	}
	return Gaussian{S: s}, nil
}

func (Gaussian) Name() string { return "gaussian" }

func (k Gaussian) Eval(x, y []float64) float64 {
	d := floats.Distance(x, y, 2)
	return math.Exp(-d * d / (2 * k.S * k.S))
}

// Evaluate is Eval with argument checks: a nil kernel fails with
// ErrUninitializedBase and vectors of different length with ErrInvalidArgument.
func Evaluate(k Kernel, x, y []float64) (float64, error) {
	if k == nil {
		return 0, errors.NewUninitializedError("Kernel", "Eval")
	}
	if len(x) != len(y) {
		return 0, errors.NewDimensionError("kernel.Evaluate", len(x), len(y), 0)
	}
	return k.Eval(x, y), nil
}
