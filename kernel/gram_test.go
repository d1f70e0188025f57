package kernel

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/gradkit/core/parallel"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

func randomSamples(d, m int, seed uint64) *mat.Dense {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed)}
	data := make([]float64, d*m)
	for i := range data {
		data[i] = norm.Rand()
	}
	return mat.NewDense(d, m, data)
}

func TestGramMatrixMatchesKernel(t *testing.T) {
	gauss, err := NewGaussian(1.5)
	require.NoError(t, err)
	X := randomSamples(3, 5, 1)
	Y := randomSamples(3, 4, 2)

	for _, k := range []Kernel{NewLinear(0.5), NewPolynomial(1, 1, 3), gauss} {
		t.Run(k.Name(), func(t *testing.T) {
			K, err := GramMatrix(k, X, Y)
			require.NoError(t, err)

			r, c := K.Dims()
			require.Equal(t, 5, r)
			require.Equal(t, 4, c)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					want := k.Eval(mat.Col(nil, i, X), mat.Col(nil, j, Y))
					assert.Equal(t, want, K.At(i, j), "K[%d,%d]", i, j)
				}
			}
		})
	}
}

func TestGramMatrixRowMismatch(t *testing.T) {
	X := mat.NewDense(2, 3, nil)
	Y := mat.NewDense(3, 3, nil)

	_, err := GramMatrix(NewLinear(0), X, Y)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)

	_, err = GramMatrixStable(NewLinear(0), X, Y)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestGramMatrixNilKernel(t *testing.T) {
	X := mat.NewDense(1, 1, []float64{1})
	_, err := GramMatrix(nil, X, X)
	assert.True(t, errors.IsUninitialized(err))
}

func TestGramMatrixParallelIsDeterministic(t *testing.T) {
	gauss, err := NewGaussian(2)
	require.NoError(t, err)

	// Large enough to cross the parallel threshold.
	X := randomSamples(8, 60, 3)
	Y := randomSamples(8, 50, 4)
	require.Greater(t, 60*50*8, parallel.DefaultThreshold)

	K, err := GramMatrix(gauss, X, Y)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		for j := 0; j < 50; j++ {
			assert.Equal(t, gauss.Eval(mat.Col(nil, i, X), mat.Col(nil, j, Y)), K.At(i, j))
		}
	}
}

// panicKernel panics once x[0] reaches at.
type panicKernel struct{ at float64 }

func (panicKernel) Name() string { return "panic" }

func (k panicKernel) Eval(x, y []float64) float64 {
	if x[0] >= k.at {
		panic("kernel blew up")
	}
	return x[0] * y[0]
}

func TestGramMatrixRecoversKernelPanic(t *testing.T) {
	tests := []struct {
		name string
		m    int
	}{
		{"sequential", 3},
		{"parallel", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(8, tt.m, nil)
			for j := 0; j < tt.m; j++ {
				X.Set(0, j, float64(j))
			}
			K, err := GramMatrix(panicKernel{at: float64(tt.m - 1)}, X, X)
			require.Error(t, err)
			assert.Nil(t, K)

			var pe *errors.PanicError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "kernel blew up", pe.PanicValue)
		})
	}
	require.Greater(t, 60*60*8, parallel.DefaultThreshold)
}

func TestGramMatrixStableDuplicateColumns(t *testing.T) {
	gauss, err := NewGaussian(1)
	require.NoError(t, err)

	// Columns 0 and 2 are identical.
	X := mat.NewDense(2, 3, []float64{
		1, 4, 1,
		2, -1, 2,
	})

	for _, k := range []Kernel{NewLinear(0), gauss} {
		t.Run(k.Name(), func(t *testing.T) {
			K, err := GramMatrix(k, X, X)
			require.NoError(t, err)
			assert.InDelta(t, 0, mat.Det(K), 1e-9, "plain gram matrix should be singular")

			KS, err := GramMatrixStable(k, X, X)
			require.NoError(t, err)
			assert.Greater(t, mat.Det(KS), 1e-9)

			var inv mat.Dense
			assert.NoError(t, inv.Inverse(KS))
		})
	}
}

func TestGramMatrixStableShapes(t *testing.T) {
	lin := NewLinear(0)

	tests := []struct {
		name    string
		X, Y    *mat.Dense
		touched [][2]int
	}{
		{
			name:    "1x1",
			X:       mat.NewDense(2, 1, []float64{1, 2}),
			Y:       mat.NewDense(2, 1, []float64{3, 4}),
			touched: [][2]int{{0, 0}},
		},
		{
			name:    "single row",
			X:       mat.NewDense(2, 1, []float64{1, 2}),
			Y:       mat.NewDense(2, 3, []float64{1, 0, 2, 0, 1, 2}),
			touched: [][2]int{{0, 2}},
		},
		{
			name:    "single column",
			X:       mat.NewDense(2, 3, []float64{1, 0, 2, 0, 1, 2}),
			Y:       mat.NewDense(2, 1, []float64{1, 2}),
			touched: [][2]int{{2, 0}},
		},
		{
			name:    "rectangular",
			X:       mat.NewDense(1, 3, []float64{1, 2, 3}),
			Y:       mat.NewDense(1, 2, []float64{4, 5}),
			touched: [][2]int{{0, 0}, {1, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			K, err := GramMatrix(lin, tt.X, tt.Y)
			require.NoError(t, err)
			KS, err := GramMatrixStable(lin, tt.X, tt.Y)
			require.NoError(t, err)

			var diff mat.Dense
			diff.Sub(KS, K)
			r, c := diff.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					want := 0.0
					for _, p := range tt.touched {
						if p == [2]int{i, j} {
							want = StabilityTerm
						}
					}
					assert.InDelta(t, want, diff.At(i, j), 1e-12, "(%d,%d)", i, j)
				}
			}
		})
	}
}

func TestVector(t *testing.T) {
	assert.Nil(t, Vector(NewLinear(0), nil, []float64{1}))

	basis := [][]float64{{1, 0}, {0, 1}}
	v := Vector(NewLinear(1), basis, []float64{2, 3})
	assert.Equal(t, []float64{3, 4}, v.RawVector().Data)
}
