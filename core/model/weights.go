package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// WeightsVersion はスナップショット形式のバージョン
const WeightsVersion = "1"

// ModelWeights はモデルの重みのスナップショット（CLI の出力用）
type ModelWeights struct {
	// ModelType はモデルの種類（LeastSquares, KernelLogistic 等）
	ModelType string `json:"model_type"`

	// Version はスナップショット形式のバージョン
	Version string `json:"version"`

	// Parametric は重みの次元が特徴量次元と一致するかどうか
	Parametric bool `json:"parametric"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// State は学習状態
	State ModelState `json:"state"`
}

// ExportWeights はモデルの現在の重みとハイパーパラメータをスナップショットにする
func ExportWeights(m Model) *ModelWeights {
	mw := &ModelWeights{
		ModelType:  m.Name(),
		Version:    WeightsVersion,
		Parametric: m.Parametric(),
	}
	if w := m.Weights(); w != nil {
		mw.Coefficients = make([]float64, w.Len())
		for i := range mw.Coefficients {
			mw.Coefficients[i] = w.AtVec(i)
		}
	}
	if pg, ok := m.(ParameterGetter); ok {
		mw.Hyperparameters = pg.GetParams()
	}
	if st, ok := m.(interface{ State() ModelState }); ok {
		mw.State = st.State()
	}
	return mw
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	b, err := json.MarshalIndent(mw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal model weights")
	}
	return b, nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}

	if mw.State.Fitted && len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", len(mw.Coefficients))
	}

	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:    mw.ModelType,
		Version:      mw.Version,
		Parametric:   mw.Parametric,
		State:        mw.State,
		Coefficients: make([]float64, len(mw.Coefficients)),
	}
	copy(clone.Coefficients, mw.Coefficients)

	if mw.Hyperparameters != nil {
		clone.Hyperparameters = make(map[string]interface{}, len(mw.Hyperparameters))
		for k, v := range mw.Hyperparameters {
			clone.Hyperparameters[k] = v
		}
	}

	return clone
}
