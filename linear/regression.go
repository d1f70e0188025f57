// Package linear は線形最小二乗と二値ロジスティック回帰の損失・勾配モデルを提供する
//
// どちらもパラメトリックモデルで、重みの長さは特徴量次元 d に等しい。
// サンプル行列 X は d×M で、各列が1サンプル。
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/core/parallel"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// LeastSquares は線形最小二乗モデル
//
//	loss(w) = (1/M) Σ (x_iᵗw − y_i)²
//	grad(w) = (2/M) X (Xᵗw − y)
type LeastSquares struct {
	model.Base
	l2 float64
}

// NewLeastSquares は新しい線形最小二乗モデルを作成する
func NewLeastSquares(opts ...Option) (*LeastSquares, error) {
	o := applyOptions(opts)
	if o.l2 < 0 {
		return nil, errors.NewValidationError("l2_penalty", "must be non-negative", o.l2)
	}
	m := &LeastSquares{l2: o.l2}
	m.Init("LeastSquares", true)
	if o.initial != nil {
		if err := m.SetInitialWeights(o.initial); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// residuals は Xᵗw − y を返す
func residuals(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) *mat.VecDense {
	r := Margins(w, X)
	r.SubVec(r, y)
	return r
}

// Loss は平均二乗誤差を返す
func (m *LeastSquares) Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error) {
	const op = "LeastSquares.Loss"
	d, n, err := model.CheckSamples(op, X, y)
	if err != nil {
		return 0, err
	}
	if err := model.CheckWeights(op, w, d); err != nil {
		return 0, err
	}

	r := residuals(w, X, y)
	loss := mat.Dot(r, r) / float64(n)
	return AddRidge(m.l2, w, loss, nil), nil
}

// Gradient は (2/M) X (Xᵗw − y) を返す
func (m *LeastSquares) Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	const op = "LeastSquares.Gradient"
	d, n, err := model.CheckSamples(op, X, y)
	if err != nil {
		return nil, err
	}
	if err := model.CheckWeights(op, w, d); err != nil {
		return nil, err
	}

	r := residuals(w, X, y)
	g := mat.NewVecDense(d, nil)
	g.MulVec(X, r)
	g.ScaleVec(2/float64(n), g)
	AddRidge(m.l2, w, 0, g)
	return g, nil
}

// Predict は現在の重みで Xᵗw を返す
func (m *LeastSquares) Predict(X mat.Matrix) (*mat.VecDense, error) {
	w, err := m.CurrentWeights("Predict")
	if err != nil {
		return nil, err
	}
	if err := model.CheckFeatures("LeastSquares.Predict", w.Len(), X); err != nil {
		return nil, err
	}
	return Margins(w, X), nil
}

// GetParams はハイパーパラメータを返す
func (m *LeastSquares) GetParams() map[string]interface{} {
	return map[string]interface{}{"l2_penalty": m.l2}
}

// maxCondition を超える条件数の X Xᵗ は特異とみなす
const maxCondition = 1e12

// SolveNormalEquation は正規方程式 (X Xᵗ) w = X y を解いて最小二乗解を返す
//
// 勾配降下の収束先の確認に使う。X Xᵗ が特異なら ErrSingularMatrix。
func SolveNormalEquation(X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	const op = "linear.SolveNormalEquation"
	d, n, err := model.CheckSamples(op, X, y)
	if err != nil {
		return nil, err
	}

	// 並列処理の閾値（この値以下の要素数では逐次処理を使用）
	const parallelThreshold = 1 << 16

	// X Xᵗ は対称なので上三角だけ計算して写す
	xxt := mat.NewSymDense(d, nil)
	parallel.ParallelizeWithThreshold(d, d*d*n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < d; j++ {
				var s float64
				for k := 0; k < n; k++ {
					s += X.At(i, k) * X.At(j, k)
				}
				xxt.SetSym(i, j, s)
			}
		}
	})

	xy := mat.NewVecDense(d, nil)
	xy.MulVec(X, y)

	var chol mat.Cholesky
	if ok := chol.Factorize(xxt); !ok || chol.Cond() > maxCondition {
		return nil, errors.NewModelError(op, "singular matrix", errors.ErrSingularMatrix)
	}
	w := mat.NewVecDense(d, nil)
	if err := chol.SolveVecTo(w, xy); err != nil {
		return nil, errors.NewModelError(op, "singular matrix", errors.Mark(err, errors.ErrSingularMatrix))
	}
	return w, nil
}
