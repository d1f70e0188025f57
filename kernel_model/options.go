// Package kernel_model provides logistic regression in kernel feature space.
//
// KernelLogistic replaces the samples by their gram matrix K(X, X) and has
// one weight per training sample. StochasticKernelLogistic keeps a growing
// dictionary of retained samples and is driven one sample at a time by
// solver.Stochastic. Both are non-parametric models.
package kernel_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// DefaultErrMax is the prediction error above which StochasticKernelLogistic
// adds a sample to its dictionary.
const DefaultErrMax = 0.1

// Option configures KernelLogistic and StochasticKernelLogistic.
type Option func(*options)

type options struct {
	lambda  float64
	errMax  float64
	stable  bool
	initial *mat.VecDense
	logger  log.Logger
}

// WithLambda sets the ridge penalty: (λ/2)‖w‖² is added to the loss and λw
// to the gradient.
func WithLambda(lambda float64) Option {
	return func(o *options) {
		o.lambda = lambda
	}
}

// WithErrMax sets the dictionary growth threshold of StochasticKernelLogistic.
// It must lie in [0, 0.5): an empty dictionary predicts with error exactly 0.5.
func WithErrMax(errMax float64) Option {
	return func(o *options) {
		o.errMax = errMax
	}
}

// WithStableGram makes KernelLogistic use kernel.GramMatrixStable for K(X, X).
func WithStableGram(stable bool) Option {
	return func(o *options) {
		o.stable = stable
	}
}

// WithInitialWeights sets the weights a solver starts from.
func WithInitialWeights(w *mat.VecDense) Option {
	return func(o *options) {
		o.initial = w
	}
}

// WithLogger overrides the component logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{errMax: DefaultErrMax}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lambda < 0 {
		return o, errors.NewValidationError("lambda", "must be non-negative", o.lambda)
	}
	if o.errMax < 0 || o.errMax >= 0.5 {
		return o, errors.NewValidationError("err_max", "must lie in [0, 0.5)", o.errMax)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("kernel_model")
	}
	return o, nil
}
