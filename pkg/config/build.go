package config

import (
	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/kernel_model"
	"github.com/YuminosukeSato/gradkit/linear"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/preprocessing"
)

// model.type values
const (
	ModelLeastSquares             = "least_squares"
	ModelBinaryLogistic           = "binary_logistic"
	ModelKernelLogistic           = "kernel_logistic"
	ModelStochasticKernelLogistic = "stochastic_kernel_logistic"
)

// BuildKernel returns the kernel described by c.
func BuildKernel(c KernelConfig) (kernel.Kernel, error) {
	switch c.Type {
	case "linear":
		return kernel.NewLinear(c.C), nil
	case "polynomial":
		return kernel.NewPolynomial(c.A, c.C, c.Degree), nil
	case "gaussian":
		g, err := kernel.NewGaussian(c.Sigma)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, errors.NewValidationError("kernel.type", "unknown kernel", c.Type)
	}
}

// BuildModel returns a fresh, unfitted model for cfg.
func BuildModel(cfg *Config) (model.Model, error) {
	var (
		m   model.Model
		err error
	)
	switch cfg.Model.Type {
	case ModelLeastSquares:
		m, err = linear.NewLeastSquares(linear.WithL2Penalty(cfg.Model.Lambda))
	case ModelBinaryLogistic:
		m, err = linear.NewBinaryLogistic(linear.WithL2Penalty(cfg.Model.Lambda))
	case ModelKernelLogistic, ModelStochasticKernelLogistic:
		m, err = buildKernelModel(cfg)
	default:
		return nil, errors.NewValidationError("model.type", "unknown model", cfg.Model.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "build %s", cfg.Model.Type)
	}
	return m, nil
}

func buildKernelModel(cfg *Config) (model.Model, error) {
	k, err := BuildKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	if cfg.Model.Type == ModelStochasticKernelLogistic {
		m, err := kernel_model.NewStochasticKernelLogistic(k,
			kernel_model.WithLambda(cfg.Model.Lambda),
			kernel_model.WithErrMax(cfg.Model.ErrMax),
		)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	m, err := kernel_model.NewKernelLogistic(k,
		kernel_model.WithLambda(cfg.Model.Lambda),
		kernel_model.WithStableGram(cfg.Model.StableGram),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// BuildScaler returns the scaler named by c.Scale, or nil for "none".
func BuildScaler(c DataConfig) (model.Transformer, error) {
	switch c.Scale {
	case "", "none":
		return nil, nil
	case "standard":
		return preprocessing.NewStandardScaler(true, true), nil
	case "minmax":
		s, err := preprocessing.NewMinMaxScaler([2]float64{0, 1})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.NewValidationError("data.scale", "unknown scaler", c.Scale)
	}
}

// Logistic reports whether the configured model expects ±1 labels.
func (c *Config) Logistic() bool {
	return c.Model.Type != ModelLeastSquares
}
