package solver

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// ConvergenceType selects when Batch.Fit stops.
type ConvergenceType int

const (
	// StepPrecision stops once ‖w_new − w_old‖₂ < value.
	StepPrecision ConvergenceType = iota + 1
	// LossPrecision stops once |loss_new − loss_old| < value.
	LossPrecision
	// Iterations stops after int(value) updates.
	Iterations
)

var convergenceNames = map[string]ConvergenceType{
	"step_precision": StepPrecision,
	"loss_precision": LossPrecision,
	"iterations":     Iterations,
}

func (c ConvergenceType) String() string {
	switch c {
	case StepPrecision:
		return "step_precision"
	case LossPrecision:
		return "loss_precision"
	case Iterations:
		return "iterations"
	default:
		return "unknown"
	}
}

// ParseConvergence maps "step_precision", "loss_precision" or "iterations"
// to a ConvergenceType. Anything else is an InvalidArgument error.
func ParseConvergence(s string) (ConvergenceType, error) {
	c, ok := convergenceNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.NewValueError("solver.ParseConvergence",
			fmt.Sprintf("unknown convergence type %q; expected step_precision, loss_precision or iterations", s))
	}
	return c, nil
}
