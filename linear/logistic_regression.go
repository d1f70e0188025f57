package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// BinaryLogistic は二値ロジスティック回帰モデル（ラベルは −1 / +1）
//
//	loss(w) = (1/M) Σ log(1+exp(−y_i wᵗx_i))
//	grad(w) = (1/M) Σ −y_i x_i σ(−y_i wᵗx_i)
type BinaryLogistic struct {
	model.Base
	l2 float64
}

// NewBinaryLogistic は新しい二値ロジスティック回帰モデルを作成する
func NewBinaryLogistic(opts ...Option) (*BinaryLogistic, error) {
	o := applyOptions(opts)
	if o.l2 < 0 {
		return nil, errors.NewValidationError("l2_penalty", "must be non-negative", o.l2)
	}
	m := &BinaryLogistic{l2: o.l2}
	m.Init("BinaryLogistic", true)
	if o.initial != nil {
		if err := m.SetInitialWeights(o.initial); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *BinaryLogistic) check(op string, w *mat.VecDense, X mat.Matrix, y *mat.VecDense) error {
	d, _, err := model.CheckSamples(op, X, y)
	if err != nil {
		return err
	}
	return model.CheckWeights(op, w, d)
}

// Loss は平均ロジスティック損失を返す
func (m *BinaryLogistic) Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error) {
	if err := m.check("BinaryLogistic.Loss", w, X, y); err != nil {
		return 0, err
	}
	return AddRidge(m.l2, w, LogisticLoss(w, X, y), nil), nil
}

// Gradient は平均ロジスティック損失の勾配を返す
func (m *BinaryLogistic) Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	if err := m.check("BinaryLogistic.Gradient", w, X, y); err != nil {
		return nil, err
	}
	g := LogisticGradient(w, X, y)
	AddRidge(m.l2, w, 0, g)
	return g, nil
}

// Predict は各サンプルがラベル +1 である確率 σ(wᵗx) を返す
func (m *BinaryLogistic) Predict(X mat.Matrix) (*mat.VecDense, error) {
	w, err := m.CurrentWeights("Predict")
	if err != nil {
		return nil, err
	}
	if err := model.CheckFeatures("BinaryLogistic.Predict", w.Len(), X); err != nil {
		return nil, err
	}
	return Probabilities(w, X), nil
}

// GetParams はハイパーパラメータを返す
func (m *BinaryLogistic) GetParams() map[string]interface{} {
	return map[string]interface{}{"l2_penalty": m.l2}
}
