// Package preprocessing converts user data into the feature-major layout used
// throughout gradkit and provides optional feature scaling.
//
// Models and solvers take X as a d×M matrix whose columns are samples. Data
// usually arrives row-major (one sample per row), so the functions here are
// the only place a transpose happens.
package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// ToFeatureMajor transposes row-major samples into a d×M matrix. Every row
// must have the same, non-zero length.
func ToFeatureMajor(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NewModelError("ToFeatureMajor", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	d, m := len(rows[0]), len(rows)
	X := mat.NewDense(d, m, nil)
	for j, row := range rows {
		if len(row) != d {
			return nil, errors.Wrapf(errors.NewDimensionError("ToFeatureMajor", d, len(row), 0), "row %d", j)
		}
		X.SetCol(j, row)
	}
	return X, nil
}

// VectorToFeatureMajor treats a bare vector of N values as N samples of a
// single feature, giving a 1×N matrix.
func VectorToFeatureMajor(v []float64) (*mat.Dense, error) {
	if len(v) == 0 {
		return nil, errors.NewModelError("VectorToFeatureMajor", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	return mat.NewDense(1, len(v), append([]float64(nil), v...)), nil
}

// FromRowMajor copies an M×d gonum matrix into a new d×M matrix.
func FromRowMajor(A mat.Matrix) (*mat.Dense, error) {
	if A == nil {
		return nil, errors.NewValueError("FromRowMajor", "input matrix must not be nil")
	}
	if _, _, err := dims("FromRowMajor", A); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(A.T()), nil
}

// Labels copies y into a vector.
func Labels(y []float64) (*mat.VecDense, error) {
	if len(y) == 0 {
		return nil, errors.NewModelError("Labels", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	return mat.NewVecDense(len(y), append([]float64(nil), y...)), nil
}

// SignLabels maps {0, 1} labels to {−1, +1}. Labels already in {−1, +1} pass
// through; anything else is an error.
func SignLabels(y *mat.VecDense) (*mat.VecDense, error) {
	if y == nil || y.IsEmpty() {
		return nil, errors.NewModelError("SignLabels", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	out := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		switch v := y.AtVec(i); v {
		case 0, -1:
			out.SetVec(i, -1)
		case 1:
			out.SetVec(i, 1)
		default:
			return nil, errors.NewValidationError("labels", "must be in {0, 1} or {-1, +1}", v)
		}
	}
	return out, nil
}
