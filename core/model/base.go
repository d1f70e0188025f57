package model

import (
	"sync"

	"github.com/tevino/abool"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// Base は全てのモデルが埋め込む構造体
//
// 重み・排他リース・学習状態を保持する。Base 単体を Model として使うと
// Gradient / Loss / Predict は ErrUninitializedBase を返す。
type Base struct {
	name       string
	parametric bool
	state      StateManager

	mu      sync.RWMutex
	weights *mat.VecDense
	leased  abool.AtomicBool
}

// Init はモデル名とパラメトリック性を設定する。コンストラクタから一度だけ呼ぶ
func (b *Base) Init(name string, parametric bool) {
	b.name = name
	b.parametric = parametric
}

// Name はモデルの種類名を返す
func (b *Base) Name() string {
	if b.name == "" {
		return "Base"
	}
	return b.name
}

// Parametric は重みの次元が特徴量次元で固定されるかどうかを返す
func (b *Base) Parametric() bool {
	return b.parametric
}

// Gradient は基底では未実装
func (b *Base) Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	return nil, errors.NewUninitializedError(b.Name(), "Gradient")
}

// Loss は基底では未実装
func (b *Base) Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error) {
	return 0, errors.NewUninitializedError(b.Name(), "Loss")
}

// Predict は基底では未実装
func (b *Base) Predict(X mat.Matrix) (*mat.VecDense, error) {
	return nil, errors.NewUninitializedError(b.Name(), "Predict")
}

// Weights は現在の重みのコピーを返す。未設定なら nil
func (b *Base) Weights() *mat.VecDense {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneVec(b.weights)
}

// CurrentWeights は予測用に重みを取り出す。未設定なら NotFittedError
func (b *Base) CurrentWeights(method string) (*mat.VecDense, error) {
	w := b.Weights()
	if w == nil {
		return nil, errors.NewNotFittedError(b.Name(), method)
	}
	return w, nil
}

// SetInitialWeights は学習開始時の重みを設定する
// ソルバーがリースを保持している間は ErrModelBusy を返す
func (b *Base) SetInitialWeights(w *mat.VecDense) error {
	if !b.leased.SetToIf(false, true) {
		return errors.WithStack(errors.ErrModelBusy)
	}
	defer b.leased.UnSet()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.weights = cloneVec(w)
	return nil
}

// IsFitted はソルバーによる更新が一度でも完了したかどうかを返す
func (b *Base) IsFitted() bool {
	return b.state.IsFitted()
}

// State は学習状態のスナップショットを返す
func (b *Base) State() ModelState {
	return b.state.GetState()
}

// Leased はソルバーがリースを保持しているかどうかを返す
func (b *Base) Leased() bool {
	return b.leased.IsSet()
}

// Acquire は重みを書き換える排他的なリースを取得する
// 既に別のリースが存在する場合は ErrModelBusy を返す
func (b *Base) Acquire() (*Lease, error) {
	if !b.leased.SetToIf(false, true) {
		return nil, errors.WithStack(errors.ErrModelBusy)
	}
	return &Lease{base: b}, nil
}

// Lease はモデルの重みに対する唯一の書き込み口
//
// ソルバーは Fit の間だけリースを保持し、終了時に Release する。
type Lease struct {
	base     *Base
	released bool
	updated  bool
}

// Weights はリース時点の重みのコピーを返す
func (l *Lease) Weights() *mat.VecDense {
	return l.base.Weights()
}

// Set は重みを置き換える（コピーして保持する）
func (l *Lease) Set(w *mat.VecDense) {
	if l.released {
		return
	}
	l.base.mu.Lock()
	l.base.weights = cloneVec(w)
	l.base.mu.Unlock()
	l.updated = true
}

// SetDimensions は学習に使ったデータの形状を記録する
func (l *Lease) SetDimensions(nFeatures, nSamples int) {
	l.base.state.SetDimensions(nFeatures, nSamples)
}

// Release はリースを返却する。二度目以降の呼び出しは何もしない
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true
	if l.updated {
		l.base.state.SetFitted()
	}
	l.base.leased.UnSet()
}

func cloneVec(v *mat.VecDense) *mat.VecDense {
	if v == nil {
		return nil
	}
	out := mat.NewVecDense(v.Len(), nil)
	out.CopyVec(v)
	return out
}
