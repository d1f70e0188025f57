// Package model defines the contract shared by all loss/gradient models and
// the state every model embeds.
//
// The variant set is closed: linear.LeastSquares, linear.BinaryLogistic,
// kernel_model.KernelLogistic and kernel_model.StochasticKernelLogistic.
// Solvers only see the Model interface and never the concrete type.
package model

import "gonum.org/v1/gonum/mat"

// Model はソルバーから駆動される損失・勾配モデルのインターフェース
//
// X は d×M の行列で、各列が1サンプル。y は長さ M のラベルベクトル。
// w の長さは Parametric() が true なら d、false ならモデル固有（学習データ数や辞書サイズ）。
type Model interface {
	// Name はモデルの種類名を返す
	Name() string

	// Parametric は重みの次元が特徴量次元で固定されるかどうかを返す
	Parametric() bool

	// Gradient は重み w における損失の勾配を返す
	Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error)

	// Loss は重み w における損失値を返す
	Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error)

	// Predict は現在の重みで各サンプルのスコア（確率）を返す
	Predict(X mat.Matrix) (*mat.VecDense, error)

	// Weights は現在の重みのコピーを返す。未設定なら nil
	Weights() *mat.VecDense

	// Acquire は重みを書き換える排他的なリースを取得する
	Acquire() (*Lease, error)
}

// Grower は学習中に重みの次元が増える非パラメトリックモデルのインターフェース
//
// Grow は1サンプル x (d×1) とラベル y を見て、必要なら内部の辞書を拡張し、
// 拡張後の次元に合わせた重みを返す。拡張しない場合は w をそのまま返す。
type Grower interface {
	Grow(w *mat.VecDense, x mat.Matrix, y float64) (*mat.VecDense, bool, error)
}

// Sized は学習データ数 M から重みの次元を決める非パラメトリックモデルのインターフェース
type Sized interface {
	WeightDim(X mat.Matrix) int
}

// LossRecorder は損失履歴を持つソルバーのインターフェース
type LossRecorder interface {
	// GetLossValues は記録された損失値を時系列順に返す（コピー）
	GetLossValues() []float64
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}
