// Package config loads gradkit run settings with viper.
//
// Values are resolved in viper's usual order: explicitly set command line
// flags, GRADKIT_* environment variables (dots become underscores, so
// solver.step_size is GRADKIT_SOLVER_STEP_SIZE), the YAML file, and finally
// the defaults below.
package config

import (
	"math"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/gradkit/kernel_model"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
	"github.com/YuminosukeSato/gradkit/solver"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "gradkit"

// Config is the complete configuration of one run.
type Config struct {
	Kernel KernelConfig `mapstructure:"kernel"`
	Model  ModelConfig  `mapstructure:"model"`
	Solver SolverConfig `mapstructure:"solver"`
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
}

// KernelConfig selects the kernel of the kernel models.
type KernelConfig struct {
	// Type is one of linear, polynomial, gaussian.
	Type   string  `mapstructure:"type"`
	C      float64 `mapstructure:"c"`
	A      float64 `mapstructure:"a"`
	Degree float64 `mapstructure:"degree"`
	Sigma  float64 `mapstructure:"sigma"`
}

// ModelConfig selects the model variant and its hyperparameters.
type ModelConfig struct {
	// Type is one of least_squares, binary_logistic, kernel_logistic,
	// stochastic_kernel_logistic.
	Type       string  `mapstructure:"type"`
	Lambda     float64 `mapstructure:"lambda"`
	ErrMax     float64 `mapstructure:"err_max"`
	StableGram bool    `mapstructure:"stable_gram"`
}

// SolverConfig selects batch or stochastic descent.
type SolverConfig struct {
	// Type is batch or stochastic.
	Type        string  `mapstructure:"type"`
	StepSize    float64 `mapstructure:"step_size"`
	Convergence string  `mapstructure:"convergence"`
	Value       float64 `mapstructure:"value"`
	MaxIter     int     `mapstructure:"max_iter"`
	// Epochs is the number of passes of the stochastic solver.
	Epochs int `mapstructure:"epochs"`
}

// DataConfig describes the CSV input.
type DataConfig struct {
	// LabelColumn is the zero-based label column; negative counts from the end.
	LabelColumn int  `mapstructure:"label_column"`
	Header      bool `mapstructure:"header"`
	// ZeroOneLabels maps {0,1} labels to {-1,+1} for the logistic models.
	ZeroOneLabels bool `mapstructure:"zero_one_labels"`
	// Scale is none, standard or minmax.
	Scale string `mapstructure:"scale"`
}

// LogConfig configures pkg/log.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]interface{}{
	"kernel.type":          "gaussian",
	"kernel.c":             0.0,
	"kernel.a":             1.0,
	"kernel.degree":        2.0,
	"kernel.sigma":         1.0,
	"model.type":           "least_squares",
	"model.lambda":         0.0,
	"model.err_max":        kernel_model.DefaultErrMax,
	"model.stable_gram":    false,
	"solver.type":          "batch",
	"solver.step_size":     0.01,
	"solver.convergence":   "loss_precision",
	"solver.value":         1e-6,
	"solver.max_iter":      solver.DefaultMaxIter,
	"solver.epochs":        1,
	"data.label_column":    -1,
	"data.header":          false,
	"data.zero_one_labels": false,
	"data.scale":           "none",
	"log.level":            "warn",
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"kernel":          "kernel.type",
	"sigma":           "kernel.sigma",
	"degree":          "kernel.degree",
	"model":           "model.type",
	"lambda":          "model.lambda",
	"err-max":         "model.err_max",
	"stable":          "model.stable_gram",
	"solver":          "solver.type",
	"step-size":       "solver.step_size",
	"convergence":     "solver.convergence",
	"value":           "solver.value",
	"max-iter":        "solver.max_iter",
	"epochs":          "solver.epochs",
	"label-column":    "data.label_column",
	"header":          "data.header",
	"zero-one-labels": "data.zero_one_labels",
	"scale":           "data.scale",
	"log-level":       "log.level",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("kernel", "gaussian", "kernel type: linear, polynomial, gaussian")
	fs.Float64("sigma", 1, "gaussian kernel width")
	fs.Float64("degree", 2, "polynomial kernel degree")
	fs.String("model", "least_squares", "model: least_squares, binary_logistic, kernel_logistic, stochastic_kernel_logistic")
	fs.Float64("lambda", 0, "L2 penalty")
	fs.Float64("err-max", kernel_model.DefaultErrMax, "dictionary growth threshold of the stochastic kernel model")
	fs.Bool("stable", false, "add the stability term to gram matrices")
	fs.String("solver", "batch", "solver: batch, stochastic")
	fs.Float64("step-size", 0.01, "gradient step size")
	fs.String("convergence", "loss_precision", "batch stopping rule: step_precision, loss_precision, iterations")
	fs.Float64("value", 1e-6, "threshold or iteration count of the stopping rule")
	fs.Int("max-iter", solver.DefaultMaxIter, "iteration cap of the precision stopping rules")
	fs.Int("epochs", 1, "passes over the data of the stochastic solver")
	fs.Int("label-column", -1, "zero-based label column, negative counts from the end")
	fs.Bool("header", false, "skip the first CSV line")
	fs.Bool("zero-one-labels", false, "map {0,1} labels to {-1,+1}")
	fs.String("scale", "none", "feature scaling: none, standard, minmax")
	fs.String("log-level", "warn", "log level: debug, info, warn, error")
}

// Load resolves the configuration from path (may be empty), the environment
// and the flags of fs registered by RegisterFlags (fs may be nil).
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Kernel.Type = strings.ToLower(strings.TrimSpace(c.Kernel.Type))
	c.Model.Type = strings.ToLower(strings.TrimSpace(c.Model.Type))
	c.Solver.Type = strings.ToLower(strings.TrimSpace(c.Solver.Type))
	c.Data.Scale = strings.ToLower(strings.TrimSpace(c.Data.Scale))
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Kernel.Type {
	case "linear", "polynomial":
	case "gaussian":
		if c.Kernel.Sigma == 0 || math.IsNaN(c.Kernel.Sigma) || math.IsInf(c.Kernel.Sigma, 0) {
			return errors.NewValidationError("kernel.sigma", "must be non-zero and finite", c.Kernel.Sigma)
		}
	default:
		return errors.NewValidationError("kernel.type", "unknown kernel", c.Kernel.Type)
	}

	switch c.Model.Type {
	case ModelLeastSquares, ModelBinaryLogistic, ModelKernelLogistic, ModelStochasticKernelLogistic:
	default:
		return errors.NewValidationError("model.type", "unknown model", c.Model.Type)
	}
	if c.Model.Lambda < 0 || math.IsNaN(c.Model.Lambda) {
		return errors.NewValidationError("model.lambda", "must be non-negative", c.Model.Lambda)
	}
	if c.Model.ErrMax < 0 || c.Model.ErrMax >= 0.5 || math.IsNaN(c.Model.ErrMax) {
		return errors.NewValidationError("model.err_max", "must be in [0, 0.5)", c.Model.ErrMax)
	}

	switch c.Solver.Type {
	case "batch":
		if _, err := solver.ParseConvergence(c.Solver.Convergence); err != nil {
			return errors.Wrap(err, "solver.convergence")
		}
		if c.Model.Type == ModelStochasticKernelLogistic {
			return errors.NewValidationError("solver.type", "the stochastic kernel model needs the stochastic solver", c.Solver.Type)
		}
	case "stochastic":
		if c.Solver.Epochs <= 0 {
			return errors.NewValidationError("solver.epochs", "must be positive", c.Solver.Epochs)
		}
	default:
		return errors.NewValidationError("solver.type", "unknown solver", c.Solver.Type)
	}
	if c.Solver.StepSize <= 0 || math.IsNaN(c.Solver.StepSize) || math.IsInf(c.Solver.StepSize, 0) {
		return errors.NewValidationError("solver.step_size", "must be a positive finite number", c.Solver.StepSize)
	}
	if c.Solver.MaxIter <= 0 {
		return errors.NewValidationError("solver.max_iter", "must be positive", c.Solver.MaxIter)
	}

	switch c.Data.Scale {
	case "none", "standard", "minmax":
	default:
		return errors.NewValidationError("data.scale", "unknown scaler", c.Data.Scale)
	}

	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
