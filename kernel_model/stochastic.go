package kernel_model

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/linear"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// StochasticKernelLogistic is online kernel logistic regression over a
// growing dictionary of retained samples d_1..d_n:
//
//	F(w, x) = Σ w_i k(d_i, x)
//
// One weight belongs to each dictionary entry. Grow appends a sample when
// the prediction error 1 − σ(y·F(w, x)) is strictly greater than ErrMax.
// Entries are never removed.
type StochasticKernelLogistic struct {
	model.Base

	kernel kernel.Kernel
	lambda float64
	errMax float64
	logger log.Logger

	mu   sync.RWMutex
	dict [][]float64
}

// NewStochasticKernelLogistic returns a model with an empty dictionary.
// WithStableGram and WithInitialWeights are rejected: no gram matrix is
// formed and the weights start empty alongside the dictionary.
func NewStochasticKernelLogistic(k kernel.Kernel, opts ...Option) (*StochasticKernelLogistic, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.stable {
		return nil, errors.NewValidationError("stable_gram", "not supported by StochasticKernelLogistic", o.stable)
	}
	if o.initial != nil {
		return nil, errors.NewValidationError("initial_weights", "not supported by StochasticKernelLogistic", o.initial.Len())
	}
	m := &StochasticKernelLogistic{
		kernel: k,
		lambda: o.lambda,
		errMax: o.errMax,
	}
	m.Init("StochasticKernelLogistic", false)
	m.logger = o.logger.With(log.ModelNameKey, m.Name())
	if k != nil {
		m.logger = m.logger.With(log.KernelNameKey, k.Name())
	}
	return m, nil
}

// ErrMax returns the dictionary growth threshold.
func (m *StochasticKernelLogistic) ErrMax() float64 {
	return m.errMax
}

// Dictionary returns a copy of the retained samples in insertion order.
func (m *StochasticKernelLogistic) Dictionary() [][]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]float64, len(m.dict))
	for i, d := range m.dict {
		out[i] = append([]float64(nil), d...)
	}
	return out
}

// DictionarySize returns the number of retained samples.
func (m *StochasticKernelLogistic) DictionarySize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dict)
}

// WeightDim is the dictionary size; X is not consulted.
func (m *StochasticKernelLogistic) WeightDim(mat.Matrix) int {
	return m.DictionarySize()
}

// F evaluates the kernel expansion Σ w_i k(d_i, x). An empty dictionary
// gives 0.
func (m *StochasticKernelLogistic) F(w *mat.VecDense, x []float64) (float64, error) {
	if m.kernel == nil {
		return 0, errors.NewUninitializedError("Kernel", "F")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.f(w, x)
}

// f requires m.mu to be held.
func (m *StochasticKernelLogistic) f(w *mat.VecDense, x []float64) (float64, error) {
	n := len(m.dict)
	if n == 0 {
		return 0, nil
	}
	if err := model.CheckWeights("StochasticKernelLogistic.F", w, n); err != nil {
		return 0, err
	}
	if len(x) != len(m.dict[0]) {
		return 0, errors.NewDimensionError("StochasticKernelLogistic.F", len(m.dict[0]), len(x), 0)
	}
	var s float64
	for i, d := range m.dict {
		s += w.AtVec(i) * m.kernel.Eval(d, x)
	}
	return s, nil
}

// sample extracts the only column of a d×1 matrix.
func sample(op string, X mat.Matrix) ([]float64, error) {
	if X == nil {
		return nil, errors.NewValueError(op, "sample must not be nil")
	}
	d, n := X.Dims()
	if d == 0 {
		return nil, errors.NewDimensionError(op, 1, 0, 0)
	}
	if n != 1 {
		return nil, errors.NewDimensionError(op, 1, n, 1)
	}
	return mat.Col(nil, 0, X), nil
}

// Grow appends x (a d×1 sample with label y) to the dictionary when
// 1 − σ(y·F(w, x)) > ErrMax and returns w padded with a zero coefficient.
// Otherwise it returns w unchanged and false. w may be nil while the
// dictionary is empty.
func (m *StochasticKernelLogistic) Grow(w *mat.VecDense, X mat.Matrix, y float64) (*mat.VecDense, bool, error) {
	const op = "StochasticKernelLogistic.Grow"
	if m.kernel == nil {
		return nil, false, errors.NewUninitializedError("Kernel", "Grow")
	}
	x, err := sample(op, X)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	score, err := m.f(w, x)
	if err != nil {
		return nil, false, err
	}
	predErr := 1 - linear.Sigmoid(y*score)
	if predErr <= m.errMax {
		return w, false, nil
	}

	n := len(m.dict)
	m.dict = append(m.dict, x)
	grown := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		grown.SetVec(i, w.AtVec(i))
	}
	m.logger.Debug("dictionary grown",
		log.DictionarySizeKey, n+1,
		"prediction_error", predErr,
	)
	return grown, true, nil
}

// dictMatrix returns the dictionary as a d×n matrix. m.mu must be held.
func (m *StochasticKernelLogistic) dictMatrix() *mat.Dense {
	n := len(m.dict)
	d := len(m.dict[0])
	D := mat.NewDense(d, n, nil)
	for j, col := range m.dict {
		D.SetCol(j, col)
	}
	return D
}

// checkDict validates w against a non-empty dictionary and X against its
// feature dimension.
func (m *StochasticKernelLogistic) checkDict(op string, w *mat.VecDense, X mat.Matrix) error {
	if m.kernel == nil {
		return errors.NewUninitializedError("Kernel", op)
	}
	if len(m.dict) == 0 {
		return errors.NewModelError("StochasticKernelLogistic."+op, "empty dictionary",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	if err := model.CheckWeights("StochasticKernelLogistic."+op, w, len(m.dict)); err != nil {
		return err
	}
	return model.CheckFeatures("StochasticKernelLogistic."+op, len(m.dict[0]), X)
}

// Gradient returns −y k_x σ(−y k_xᵗw) + λw for a single sample X (d×1),
// where k_x = [k(d_i, x)].
func (m *StochasticKernelLogistic) Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	const op = "StochasticKernelLogistic.Gradient"
	x, err := sample(op, X)
	if err != nil {
		return nil, err
	}
	if y == nil || y.Len() != 1 {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return nil, errors.NewDimensionError(op, 1, got, 1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkDict("Gradient", w, X); err != nil {
		return nil, err
	}

	kx := kernel.Vector(m.kernel, m.dict, x)
	g := linear.LogisticGradient(w, kx, y)
	linear.AddRidge(m.lambda, w, 0, g)
	return g, nil
}

// Loss returns the mean logistic loss of the kernel expansion over the
// columns of X plus (λ/2)‖w‖².
func (m *StochasticKernelLogistic) Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error) {
	if _, _, err := model.CheckSamples("StochasticKernelLogistic.Loss", X, y); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkDict("Loss", w, X); err != nil {
		return 0, err
	}

	Z, err := kernel.GramMatrix(m.kernel, m.dictMatrix(), X)
	if err != nil {
		return 0, err
	}
	return linear.AddRidge(m.lambda, w, linear.LogisticLoss(w, Z, y), nil), nil
}

// Predict returns σ(F(w, x)) for each column of X.
func (m *StochasticKernelLogistic) Predict(X mat.Matrix) (*mat.VecDense, error) {
	w, err := m.CurrentWeights("Predict")
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkDict("Predict", w, X); err != nil {
		return nil, err
	}

	Z, err := kernel.GramMatrix(m.kernel, m.dictMatrix(), X)
	if err != nil {
		return nil, err
	}
	return linear.Probabilities(w, Z), nil
}

// GetParams returns the hyperparameters.
func (m *StochasticKernelLogistic) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"lambda":  m.lambda,
		"err_max": m.errMax,
	}
	if m.kernel != nil {
		params["kernel"] = m.kernel.Name()
	}
	return params
}
