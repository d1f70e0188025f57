// Package log defines standard attribute keys for gradkit operations.
//
// Using these keys keeps solver, model and kernel logs consistent so they can
// be filtered and aggregated. Keys follow a hierarchical naming convention
// (e.g. "model.name", "data.samples").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model variant.
	// Examples: "LeastSquares", "KernelLogistic"
	ModelNameKey = "model.name"

	// KernelNameKey identifies the kernel variant used by a kernel model.
	// Examples: "linear", "polynomial", "gaussian"
	KernelNameKey = "kernel.name"

	// SolverNameKey identifies the solver driving a model.
	// Examples: "batch", "stochastic"
	SolverNameKey = "solver.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (columns of a sample matrix).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the feature dimension (rows of a sample matrix).
	FeaturesKey = "data.features"

	// WeightsKey indicates the length of the weight vector.
	WeightsKey = "model.weights"

	// DictionarySizeKey records the size of a stochastic kernel dictionary.
	DictionarySizeKey = "model.dictionary_size"
)

// Training Progress
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the loss value after an update.
	LossKey = "metrics.loss"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// IterationKey records the current iteration number.
	IterationKey = "training.iteration"

	// StepNormKey records ‖w_new − w_old‖ for an update.
	StepNormKey = "training.step_norm"

	// ConvergenceKey records the convergence policy in use.
	ConvergenceKey = "training.convergence"

	// ConvergenceValueKey records the threshold or iteration budget of the policy.
	ConvergenceValueKey = "training.convergence_value"

	// StepSizeKey records the gradient step size.
	StepSizeKey = "hyperparams.step_size"

	// RegularizationKey records the ridge penalty (lambda).
	RegularizationKey = "hyperparams.regularization"
)

// Cache Context
const (
	// CacheEventKey records gram cache activity: "hit", "miss", "invalidate".
	CacheEventKey = "cache.event"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorDetailKey holds the structured fields of a gradkit error.
	ErrorDetailKey = "error.detail"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationGram      = "gram_matrix"
	OperationTransform = "transform"

	PhaseTraining      = "training"
	PhasePreprocessing = "preprocessing"

	ErrorInvalidInput = "INVALID_INPUT"
)
