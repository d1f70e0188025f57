package kernel

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/parallel"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// StabilityTerm is added by GramMatrixStable so that gram matrices of
// overlapping sample sets can be inverted.
const StabilityTerm = 1e-3

// Columns copies the columns of a d×M matrix into M slices of length d.
func Columns(X mat.Matrix) [][]float64 {
	_, m := X.Dims()
	cols := make([][]float64, m)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	return cols
}

// GramMatrix returns the M×N matrix K with K[i,j] = k(X[:,i], Y[:,j]) for a
// d×M matrix X and a d×N matrix Y.
//
// X and Y must have the same number of rows. Large matrices are filled row
// by row in parallel; every entry is computed independently so the result
// does not depend on the number of workers.
func GramMatrix(k Kernel, X, Y mat.Matrix) (_ *mat.Dense, err error) {
	defer errors.Recover(&err, "kernel.GramMatrix")

	if k == nil {
		return nil, errors.NewUninitializedError("Kernel", "GramMatrix")
	}
	if X == nil || Y == nil {
		return nil, errors.NewValueError("kernel.GramMatrix", "sample matrices must not be nil")
	}
	dx, m := X.Dims()
	dy, n := Y.Dims()
	if dx != dy {
		return nil, errors.Wrap(
			errors.NewDimensionError("kernel.GramMatrix", dx, dy, 0),
			"to compute a gram matrix both inputs must have the same number of rows",
		)
	}

	xs := Columns(X)
	ys := Columns(Y)
	result := mat.NewDense(m, n, nil)

	// a panicking Kernel.Eval must not escape a worker goroutine
	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(m, m*n*dx, parallel.DefaultThreshold, func(start, end int) {
		werr := errors.SafeExecute("kernel.GramMatrix", func() error {
			for i := start; i < end; i++ {
				row := result.RawRowView(i)
				for j := range row {
					row[j] = k.Eval(xs[i], ys[j])
				}
			}
			return nil
		})
		if werr != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = werr
			}
			mu.Unlock()
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// GramMatrixStable is GramMatrix plus StabilityTerm:
//   - on the only entry of a 1×1 result,
//   - on the diagonal (i, i), i < min(M, N), when M > 1 and N > 1,
//   - on the last element of a single-row or single-column result.
func GramMatrixStable(k Kernel, X, Y mat.Matrix) (*mat.Dense, error) {
	K, err := GramMatrix(k, X, Y)
	if err != nil {
		return nil, err
	}
	m, n := K.Dims()
	switch {
	case m == 0 || n == 0:
	case m > 1 && n > 1:
		for i := 0; i < min(m, n); i++ {
			K.Set(i, i, K.At(i, i)+StabilityTerm)
		}
	default:
		// 1×1 is covered here too: its last element is its only one.
		K.Set(m-1, n-1, K.At(m-1, n-1)+StabilityTerm)
	}
	return K, nil
}

// Vector returns [k(basis[0], x), ..., k(basis[n-1], x)], or nil for an
// empty basis.
func Vector(k Kernel, basis [][]float64, x []float64) *mat.VecDense {
	if len(basis) == 0 {
		return nil
	}
	v := mat.NewVecDense(len(basis), nil)
	for i, b := range basis {
		v.SetVec(i, k.Eval(b, x))
	}
	return v
}
