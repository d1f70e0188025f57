package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// CheckSamples は X (d×M) と y (長さ M) を検証し、d と M を返す
// 不一致は ErrInvalidArgument としてマークされた DimensionError になる。
func CheckSamples(op string, X mat.Matrix, y *mat.VecDense) (d, m int, err error) {
	if X == nil || y == nil {
		return 0, 0, errors.NewValueError(op, "samples and labels must not be nil")
	}
	d, m = X.Dims()
	if d == 0 || m == 0 {
		return 0, 0, emptyData(op)
	}
	if y.Len() != m {
		return 0, 0, errors.NewDimensionError(op, m, y.Len(), 1)
	}
	return d, m, nil
}

// CheckWeights は w の長さが p であることを検証する
func CheckWeights(op string, w *mat.VecDense, p int) error {
	if w == nil {
		return errors.NewValueError(op, "weights must not be nil")
	}
	if w.Len() != p {
		return errors.NewDimensionError(op, p, w.Len(), 0)
	}
	return nil
}

// CheckFeatures は予測対象の X の特徴量次元 (行数) を検証する
func CheckFeatures(op string, want int, X mat.Matrix) error {
	if X == nil {
		return errors.NewValueError(op, "samples must not be nil")
	}
	d, m := X.Dims()
	if d == 0 || m == 0 {
		return emptyData(op)
	}
	if d != want {
		return errors.NewDimensionError(op, want, d, 0)
	}
	return nil
}

func emptyData(op string) error {
	return errors.NewModelError(op, "empty data", errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
}
