// Package gradkit fits linear and kernel models by gradient descent.
//
// A model supplies a loss L(w; X, y) and its gradient; a solver walks the
// weights downhill. Samples are always laid out feature-major: X is a d×M
// matrix whose columns are the M samples. Use package preprocessing to
// convert row-major data.
//
// # Installation
//
//	go get github.com/YuminosukeSato/gradkit
//
// # Quick Start
//
// Least squares from a zero start:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gradkit/linear"
//	    "github.com/YuminosukeSato/gradkit/solver"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // two samples, (1, 0) and (0, 1)
//	    X := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
//	    y := mat.NewVecDense(2, []float64{1, 2})
//
//	    m, err := linear.NewLeastSquares()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    gd, err := solver.NewBatch(m, X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := gd.Fit(0.1, "loss_precision", 1e-10); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(m.Weights().T()))
//	}
//
// # Packages
//
//   - kernel: Linear, Polynomial and Gaussian kernels and gram matrices
//   - linear: LeastSquares and BinaryLogistic
//   - kernel_model: KernelLogistic and StochasticKernelLogistic
//   - solver: Batch and Stochastic gradient descent
//   - core/model: the Model contract, weight ownership and snapshots
//   - metrics, preprocessing: evaluation and data layout
//   - pkg/config, pkg/dataset, pkg/report: the plumbing of cmd/gradkit
//
// # Error Handling
//
// Errors carry stack traces (github.com/cockroachdb/errors) and are
// classified by the sentinels in pkg/errors:
//
//	if errors.IsInvalidArgument(err) { ... }
//	if errors.Is(err, errors.ErrModelBusy) { ... }
//
// # License
//
// gradkit is released under the MIT License.
package gradkit
