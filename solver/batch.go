package solver

import (
	"context"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// Batch is full-dataset gradient descent over a fixed (X, y).
type Batch struct {
	model model.Model
	X     mat.Matrix
	y     *mat.VecDense

	maxIter int
	logger  log.Logger

	mu     sync.Mutex
	losses []float64
}

// NewBatch binds m to the d×M samples X and the M labels y. The solver keeps
// references to X and y; callers must not modify them while fitting.
func NewBatch(m model.Model, X mat.Matrix, y *mat.VecDense, opts ...Option) (*Batch, error) {
	if m == nil {
		return nil, errors.NewUninitializedError("Model", "NewBatch")
	}
	if _, _, err := model.CheckSamples("solver.NewBatch", X, y); err != nil {
		return nil, err
	}
	c, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Batch{
		model:   m,
		X:       X,
		y:       y,
		maxIter: c.maxIter,
		logger:  c.logger.With(log.SolverNameKey, "batch", log.ModelNameKey, m.Name()),
	}, nil
}

// Model returns the bound model.
func (b *Batch) Model() model.Model {
	return b.model
}

// GetLossValues returns a copy of the losses recorded after every update,
// oldest first.
func (b *Batch) GetLossValues() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]float64(nil), b.losses...)
}

func (b *Batch) record(loss float64) {
	b.mu.Lock()
	b.losses = append(b.losses, loss)
	b.mu.Unlock()
}

// weightDim is d for parametric models and model-defined otherwise.
func (b *Batch) weightDim() int {
	d, n := b.X.Dims()
	if b.model.Parametric() {
		return d
	}
	if s, ok := b.model.(model.Sized); ok {
		return s.WeightDim(b.X)
	}
	return n
}

// Fit runs w ← w − stepSize·∇L(w) until the convergence policy named by
// convergenceType is met:
//
//	"step_precision"  ‖w_new − w_old‖₂ < value
//	"loss_precision"  |L(w_new) − L(w_old)| < value
//	"iterations"      int(value) updates
//
// It starts from the model's weights when their length fits, otherwise from
// zeros. The weights are written back and the loss recorded after every
// update, so on error they reflect the completed iterations only. An unknown
// convergenceType fails before anything is touched.
func (b *Batch) Fit(stepSize float64, convergenceType string, value float64) error {
	conv, err := ParseConvergence(convergenceType)
	if err != nil {
		return err
	}
	if err := checkStepSize("Batch.Fit", stepSize); err != nil {
		return err
	}
	if conv != Iterations && (value <= 0 || math.IsNaN(value)) {
		return errors.NewValidationError("convergence_value", conv.String()+" threshold must be positive", value)
	}
	if conv == Iterations && !(value >= 0 && value < math.MaxInt) {
		return errors.NewValidationError("convergence_value", "iteration count must be in [0, MaxInt)", value)
	}

	lease, err := b.model.Acquire()
	if err != nil {
		return err
	}
	defer lease.Release()

	d, n := b.X.Dims()
	p := b.weightDim()
	w := lease.Weights()
	if w == nil || w.Len() != p {
		w = mat.NewVecDense(p, nil)
	}

	start := time.Now()
	b.logger.Info("fit started",
		log.OperationKey, log.OperationFit,
		log.FeaturesKey, d,
		log.SamplesKey, n,
		log.WeightsKey, p,
		log.StepSizeKey, stepSize,
		log.ConvergenceKey, conv.String(),
		log.ConvergenceValueKey, value,
	)

	prevLoss, err := b.model.Loss(w, b.X, b.y)
	if err != nil {
		return errors.Wrap(err, "batch fit: initial loss")
	}

	limit := b.maxIter
	if conv == Iterations {
		limit = int(value)
	}

	debug := b.logger.Enabled(context.Background(), log.LevelDebug)
	iter := 0
	lastLoss := prevLoss
	converged := conv == Iterations
	for iter < limit {
		iter++

		g, err := b.model.Gradient(w, b.X, b.y)
		if err != nil {
			return errors.Wrapf(err, "batch fit: iteration %d", iter)
		}
		next := mat.NewVecDense(p, nil)
		next.AddScaledVec(w, -stepSize, g)
		if err := errors.CheckVector("gradient_update", next, iter); err != nil {
			b.logger.Error("fit aborted", err, log.IterationKey, iter)
			return err
		}

		loss, err := b.model.Loss(next, b.X, b.y)
		if err != nil {
			return errors.Wrapf(err, "batch fit: iteration %d", iter)
		}
		if err := errors.CheckScalar("loss_calculation", loss, iter); err != nil {
			b.logger.Error("fit aborted", err, log.IterationKey, iter)
			return err
		}

		var delta mat.VecDense
		delta.SubVec(next, w)
		stepNorm := mat.Norm(&delta, 2)

		lease.Set(next)
		b.record(loss)
		w = next
		lastLoss = loss

		if debug {
			b.logger.Debug("iteration",
				log.IterationKey, iter,
				log.LossKey, loss,
				log.StepNormKey, stepNorm,
			)
		}

		if conv == StepPrecision && stepNorm < value ||
			conv == LossPrecision && math.Abs(loss-prevLoss) < value {
			converged = true
			break
		}
		prevLoss = loss
	}
	lease.SetDimensions(d, n)

	if !converged {
		warning := errors.NewConvergenceWarning("BatchGradientDescent", iter,
			conv.String()+" threshold not reached; consider a larger step size or WithMaxIter")
		errors.Warn(warning)
	}

	b.logger.Info("fit finished",
		log.IterationKey, iter,
		log.LossKey, lastLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		"converged", converged,
	)
	return nil
}
