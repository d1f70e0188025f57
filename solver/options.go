// Package solver drives a model.Model towards a minimum of its loss by
// gradient descent.
//
// Batch uses the full dataset for every update and stops by one of the
// ConvergenceType policies. Stochastic performs exactly one update per Fit
// call on a single sample and leaves epoch control to the caller.
//
// A solver holds the model's Lease for the duration of each Fit call, so two
// solvers cannot update the same model at once: the second Fit fails with
// errors.ErrModelBusy.
package solver

import (
	"math"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// DefaultMaxIter bounds the precision-based policies of Batch.Fit.
const DefaultMaxIter = 1_000_000

// Option configures Batch and Stochastic.
type Option func(*config)

type config struct {
	maxIter int
	logger  log.Logger
}

// WithMaxIter caps the number of updates of a step_precision or
// loss_precision fit. Hitting the cap emits a ConvergenceWarning.
func WithMaxIter(n int) Option {
	return func(c *config) {
		c.maxIter = n
	}
}

// WithLogger overrides the component logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func applyOptions(opts []Option) (config, error) {
	c := config{maxIter: DefaultMaxIter}
	for _, opt := range opts {
		opt(&c)
	}
	if c.maxIter <= 0 {
		return c, errors.NewValidationError("max_iter", "must be positive", c.maxIter)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("solver")
	}
	return c, nil
}

func checkStepSize(op string, stepSize float64) error {
	if stepSize <= 0 || math.IsNaN(stepSize) || math.IsInf(stepSize, 0) {
		return errors.NewValidationError("step_size", op+": must be a positive finite number", stepSize)
	}
	return nil
}
