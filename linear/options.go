package linear

import "gonum.org/v1/gonum/mat"

// Option is a function that configures LeastSquares and BinaryLogistic
type Option func(*options)

type options struct {
	l2      float64
	initial *mat.VecDense
}

// WithL2Penalty adds (λ/2)‖w‖² to the loss and λw to the gradient.
// The default of 0 leaves the plain least squares / logistic objective.
func WithL2Penalty(lambda float64) Option {
	return func(o *options) {
		o.l2 = lambda
	}
}

// WithInitialWeights sets the weights a solver starts from
func WithInitialWeights(w *mat.VecDense) Option {
	return func(o *options) {
		o.initial = w
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
