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

// KernelLogistic is binary logistic regression on the gram matrix K = K(X, X):
//
//	loss(w) = (1/M) Σ log(1+exp(−y_i k_iᵗw)) + (λ/2)‖w‖²
//	grad(w) = (1/M) Σ −y_i k_i σ(−y_i k_iᵗw) + λw
//
// where k_i is column i of K. There is one weight per training sample.
//
// K is cached per model. The cache is keyed on the contents of X, so
// passing a different X recomputes it; Invalidate drops it explicitly.
//
// The training samples used by Predict are the X of the first Loss or
// Gradient call, replaced by every call made while a solver holds the
// model's lease. Evaluating Loss on other data after a fit leaves them alone.
type KernelLogistic struct {
	model.Base

	kernel kernel.Kernel
	lambda float64
	stable bool
	cache  gramCache
	logger log.Logger

	mu    sync.RWMutex
	basis *mat.Dense
}

// NewKernelLogistic returns a kernel logistic regression model over k.
// A nil kernel is accepted here but every computation on it fails with
// ErrUninitializedBase.
func NewKernelLogistic(k kernel.Kernel, opts ...Option) (*KernelLogistic, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	m := &KernelLogistic{
		kernel: k,
		lambda: o.lambda,
		stable: o.stable,
	}
	m.Init("KernelLogistic", false)
	m.logger = o.logger.With(log.ModelNameKey, m.Name())
	if k != nil {
		m.logger = m.logger.With(log.KernelNameKey, k.Name())
	}
	if o.initial != nil {
		if err := m.SetInitialWeights(o.initial); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WeightDim is the number of training samples.
func (m *KernelLogistic) WeightDim(X mat.Matrix) int {
	_, n := X.Dims()
	return n
}

// gram validates the inputs and returns the cached K(X, X).
func (m *KernelLogistic) gram(op string, w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.Dense, error) {
	if m.kernel == nil {
		return nil, errors.NewUninitializedError("Kernel", op)
	}
	_, n, err := model.CheckSamples("KernelLogistic."+op, X, y)
	if err != nil {
		return nil, err
	}
	if err := model.CheckWeights("KernelLogistic."+op, w, n); err != nil {
		return nil, err
	}
	K, err := m.cache.get(m.kernel, X, m.stable, m.logger)
	if err != nil {
		return nil, err
	}
	m.recordBasis(X)
	return K, nil
}

func (m *KernelLogistic) recordBasis(X mat.Matrix) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.basis != nil && (!m.Leased() || mat.Equal(m.basis, X)) {
		return
	}
	m.basis = mat.DenseCopyOf(X)
}

// trainingSamples returns the prediction basis, or nil before any Loss or
// Gradient call. Invalidate does not touch it.
func (m *KernelLogistic) trainingSamples() *mat.Dense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.basis
}

// Loss returns the regularized logistic loss in kernel space.
func (m *KernelLogistic) Loss(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (float64, error) {
	K, err := m.gram("Loss", w, X, y)
	if err != nil {
		return 0, err
	}
	return linear.AddRidge(m.lambda, w, linear.LogisticLoss(w, K, y), nil), nil
}

// Gradient returns the gradient of Loss with respect to w.
func (m *KernelLogistic) Gradient(w *mat.VecDense, X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	K, err := m.gram("Gradient", w, X, y)
	if err != nil {
		return nil, err
	}
	g := linear.LogisticGradient(w, K, y)
	linear.AddRidge(m.lambda, w, 0, g)
	return g, nil
}

// Predict returns σ(K(X_train, X)ᵗw), the probability of label +1 for each
// column of X. X_train is the training basis described on KernelLogistic.
func (m *KernelLogistic) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if m.kernel == nil {
		return nil, errors.NewUninitializedError("Kernel", "Predict")
	}
	w, err := m.CurrentWeights("Predict")
	if err != nil {
		return nil, err
	}
	train := m.trainingSamples()
	if train == nil {
		return nil, errors.NewNotFittedError(m.Name(), "Predict")
	}
	d, n := train.Dims()
	if err := model.CheckFeatures("KernelLogistic.Predict", d, X); err != nil {
		return nil, err
	}
	if err := model.CheckWeights("KernelLogistic.Predict", w, n); err != nil {
		return nil, err
	}

	Kx, err := kernel.GramMatrix(m.kernel, train, X)
	if err != nil {
		return nil, err
	}
	return linear.Probabilities(w, Kx), nil
}

// Invalidate drops the cached gram matrix. It reports whether one was held.
func (m *KernelLogistic) Invalidate() bool {
	had := m.cache.invalidate()
	if had {
		m.logger.Debug("gram cache invalidated", log.CacheEventKey, "invalidate")
	}
	return had
}

// CacheStats returns how often K(X, X) was served from the cache and how
// often it had to be computed.
func (m *KernelLogistic) CacheStats() (hits, misses int) {
	return m.cache.stats()
}

// GetParams returns the hyperparameters.
func (m *KernelLogistic) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"lambda":      m.lambda,
		"stable_gram": m.stable,
	}
	if m.kernel != nil {
		params["kernel"] = m.kernel.Name()
	}
	return params
}
