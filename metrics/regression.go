// Package metrics は学習結果を評価するための指標を提供する。
//
// 回帰指標（MSE, RMSE, MAE, R², MAPE, 説明分散）と二値分類指標
// （AUC, log loss, 正解率）を含む。ラベルは {0, 1} と {-1, +1} の
// どちらでも受け付ける。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// pair は2つのベクトルを検証してスライスとして返す
func pair(op string, yTrue, yPred *mat.VecDense) ([]float64, []float64, error) {
	if yTrue == nil || yPred == nil {
		return nil, nil, errors.NewValueError(op, "input vector must not be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return nil, nil, errors.Mark(errors.NewValueError(op, "empty vector"), errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return nil, nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return mat.Col(nil, 0, yTrue), mat.Col(nil, 0, yPred), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	dist := floats.Distance(t, p, 2)
	return dist * dist / float64(len(t)), nil
}

// MSEMatrix は n×1 行列に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := firstColumns("MSEMatrix", yTrue, yPred, true)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

// firstColumns は2つの行列の第1列を取り出す。strict のときは列数1のみ許す。
func firstColumns(op string, yTrue, yPred mat.Matrix, strict bool) (*mat.VecDense, *mat.VecDense, error) {
	if yTrue == nil || yPred == nil {
		return nil, nil, errors.NewValueError(op, "input matrix must not be nil")
	}
	if isEmpty(yTrue) || isEmpty(yPred) {
		return nil, nil, errors.Mark(errors.NewValueError(op, "empty matrix"), errors.ErrEmptyData)
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue != rPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return nil, nil, errors.NewDimensionError(op, cTrue, cPred, 1)
	}
	if strict && cTrue != 1 {
		return nil, nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)), nil
}

// isEmpty reports whether m is a zero-value matrix. mat panics on Dims of
// some empty types, so the check goes through mat.Dense where possible.
func isEmpty(m mat.Matrix) bool {
	if d, ok := m.(*mat.Dense); ok {
		return d.IsEmpty()
	}
	if v, ok := m.(*mat.VecDense); ok {
		return v.IsEmpty()
	}
	r, c := m.Dims()
	return r == 0 || c == 0
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Distance(t, p, 1) / float64(len(t)), nil
}

// R2Score は決定係数（R²）を計算する。yTrue が定数のときはエラー。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if stat.Variance(t, nil) == 0 || len(t) == 1 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return stat.RSquaredFrom(p, t, nil), nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する。yTrue が0の要素は無視する。
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i, v := range t {
		if v == 0 {
			continue
		}
		sum += math.Abs(v-p[i]) / math.Abs(v)
		valid++
	}
	if valid == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore は説明分散スコア 1 - Var(yTrue-yPred)/Var(yTrue) を計算する
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	residual := make([]float64, len(t))
	floats.SubTo(residual, t, p)

	_, varTrue := stat.PopMeanVariance(t, nil)
	if varTrue == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	_, varResidual := stat.PopMeanVariance(residual, nil)
	return 1 - varResidual/varTrue, nil
}
