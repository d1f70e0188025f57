package solver

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// Stochastic is single-sample gradient descent. It holds no data.
type Stochastic struct {
	model  model.Model
	logger log.Logger

	mu     sync.Mutex
	losses []float64
}

// NewStochastic binds a solver to m.
func NewStochastic(m model.Model, opts ...Option) (*Stochastic, error) {
	if m == nil {
		return nil, errors.NewUninitializedError("Model", "NewStochastic")
	}
	c, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Stochastic{
		model:  m,
		logger: c.logger.With(log.SolverNameKey, "stochastic", log.ModelNameKey, m.Name()),
	}, nil
}

// Model returns the bound model.
func (s *Stochastic) Model() model.Model {
	return s.model
}

// GetLossValues returns a copy of the losses recorded after every Fit,
// oldest first.
func (s *Stochastic) GetLossValues() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.losses...)
}

// Fit performs exactly one update on the sample x with label y:
//
//	w ← w_old − stepSize·∇L(w_old; x, y)
//
// and records L(w; x, y). For a model.Grower, w_old is the weight vector
// after the model has decided whether to add x to its dictionary.
func (s *Stochastic) Fit(stepSize float64, x mat.Vector, y float64) error {
	if err := checkStepSize("Stochastic.Fit", stepSize); err != nil {
		return err
	}
	if x == nil || x.Len() == 0 {
		return errors.NewValueError("Stochastic.Fit", "sample must not be empty")
	}

	lease, err := s.model.Acquire()
	if err != nil {
		return err
	}
	defer lease.Release()

	w := lease.Weights()
	if g, ok := s.model.(model.Grower); ok {
		grown, grew, err := g.Grow(w, x, y)
		if err != nil {
			return errors.Wrap(err, "stochastic fit: grow")
		}
		w = grown
		if grew {
			// the dictionary already changed; keep weights in step with it
			lease.Set(w)
		}
	} else if p := s.weightDim(x); w == nil || w.Len() != p {
		w = mat.NewVecDense(p, nil)
	}

	iter := s.updates() + 1
	label := mat.NewVecDense(1, []float64{y})
	grad, err := s.model.Gradient(w, x, label)
	if err != nil {
		return errors.Wrap(err, "stochastic fit")
	}
	next := mat.NewVecDense(w.Len(), nil)
	next.AddScaledVec(w, -stepSize, grad)
	if err := errors.CheckVector("gradient_update", next, iter); err != nil {
		return err
	}

	loss, err := s.model.Loss(next, x, label)
	if err != nil {
		return errors.Wrap(err, "stochastic fit")
	}
	if err := errors.CheckScalar("loss_calculation", loss, iter); err != nil {
		return err
	}

	lease.Set(next)
	lease.SetDimensions(x.Len(), 1)
	s.mu.Lock()
	s.losses = append(s.losses, loss)
	s.mu.Unlock()

	s.logger.Debug("update",
		log.LossKey, loss,
		log.WeightsKey, next.Len(),
		log.StepSizeKey, stepSize,
	)
	return nil
}

// FitEpoch calls Fit once for every column of the d×M matrix X, in order.
// It stops at the first failing sample.
func (s *Stochastic) FitEpoch(stepSize float64, X mat.Matrix, y *mat.VecDense) error {
	d, n, err := model.CheckSamples("Stochastic.FitEpoch", X, y)
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		x := mat.NewVecDense(d, mat.Col(nil, j, X))
		if err := s.Fit(stepSize, x, y.AtVec(j)); err != nil {
			return errors.Wrapf(err, "sample %d", j)
		}
	}
	s.logger.Info("epoch finished",
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.LossKey, s.lastLoss(),
	)
	return nil
}

func (s *Stochastic) updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.losses)
}

func (s *Stochastic) lastLoss() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.losses) == 0 {
		return 0
	}
	return s.losses[len(s.losses)-1]
}

// weightDim is d for parametric models and model-defined otherwise.
func (s *Stochastic) weightDim(x mat.Vector) int {
	if s.model.Parametric() {
		return x.Len()
	}
	if sz, ok := s.model.(model.Sized); ok {
		return sz.WeightDim(x)
	}
	return 1
}
