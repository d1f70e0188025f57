package kernel_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/linear"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

func column(v ...float64) *mat.Dense {
	return mat.NewDense(len(v), 1, v)
}

func TestStochasticGrowFromEmpty(t *testing.T) {
	m, err := NewStochasticKernelLogistic(gaussian(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, m.DictionarySize())

	// An empty dictionary predicts 0, so the error is 0.5 > DefaultErrMax.
	w, grew, err := m.Grow(nil, column(1, 2), 1)
	require.NoError(t, err)
	assert.True(t, grew)
	assert.Equal(t, 1, m.DictionarySize())
	assert.Equal(t, []float64{0}, w.RawVector().Data)
	assert.Equal(t, [][]float64{{1, 2}}, m.Dictionary())
}

func TestStochasticGrowOnlyAboveErrMax(t *testing.T) {
	m, err := NewStochasticKernelLogistic(gaussian(t, 1), WithErrMax(0.2))
	require.NoError(t, err)

	w, _, err := m.Grow(nil, column(0, 0), 1)
	require.NoError(t, err)
	w.SetVec(0, 5)

	// F = 5·k(0,0) = 5 for the same point: error 1−σ(5) ≈ 0.0067
	same, grew, err := m.Grow(w, column(0, 0), 1)
	require.NoError(t, err)
	assert.False(t, grew)
	assert.Same(t, w, same)
	assert.Equal(t, 1, m.DictionarySize())

	// Wrong label: error σ(5) ≈ 0.993
	grown, grew, err := m.Grow(w, column(0, 0.1), -1)
	require.NoError(t, err)
	assert.True(t, grew)
	assert.Equal(t, []float64{5, 0}, grown.RawVector().Data)
	assert.Equal(t, 2, m.DictionarySize())
}

func TestStochasticDictionaryNonDecreasing(t *testing.T) {
	m, err := NewStochasticKernelLogistic(gaussian(t, 0.5), WithErrMax(0.3))
	require.NoError(t, err)

	X, y := twoClusters()
	var w *mat.VecDense
	prev := 0
	for epoch := 0; epoch < 3; epoch++ {
		for j := 0; j < 6; j++ {
			x := mat.NewDense(2, 1, mat.Col(nil, j, X))
			before := m.DictionarySize()

			var score float64
			if before > 0 {
				score, err = m.F(w, mat.Col(nil, j, X))
				require.NoError(t, err)
			}
			predErr := 1 - linear.Sigmoid(y.AtVec(j)*score)

			var grew bool
			w, grew, err = m.Grow(w, x, y.AtVec(j))
			require.NoError(t, err)
			assert.Equal(t, predErr > m.ErrMax(), grew)

			size := m.DictionarySize()
			assert.GreaterOrEqual(t, size, prev)
			assert.Equal(t, size, w.Len())
			prev = size

			g, err := m.Gradient(w, x, mat.NewVecDense(1, []float64{y.AtVec(j)}))
			require.NoError(t, err)
			w.AddScaledVec(w, -0.5, g)
		}
	}
}

func TestStochasticF(t *testing.T) {
	k := kernel.NewLinear(0)
	m, err := NewStochasticKernelLogistic(k, WithErrMax(0))
	require.NoError(t, err)

	f, err := m.F(nil, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	w, _, err := m.Grow(nil, column(1, 0), 1)
	require.NoError(t, err)
	w, _, err = m.Grow(w, column(0, 1), 1)
	require.NoError(t, err)
	require.Equal(t, 2, w.Len())

	w.SetVec(0, 2)
	w.SetVec(1, 3)
	f, err = m.F(w, []float64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, 2*4.0+3*5.0, f)

	_, err = m.F(w, []float64{1})
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.F(mat.NewVecDense(3, nil), []float64{1, 1})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestStochasticGradientAndLoss(t *testing.T) {
	k := gaussian(t, 1)
	m, err := NewStochasticKernelLogistic(k, WithLambda(0.2), WithErrMax(0))
	require.NoError(t, err)

	var w *mat.VecDense
	for _, x := range [][]float64{{0, 0}, {1, 0}, {0, 1}} {
		w, _, err = m.Grow(w, column(x...), 1)
		require.NoError(t, err)
	}
	require.Equal(t, 3, w.Len())
	w = mat.NewVecDense(3, []float64{0.3, -0.1, 0.2})

	x := column(0.5, 0.5)
	y := mat.NewVecDense(1, []float64{-1})

	g, err := m.Gradient(w, x, y)
	require.NoError(t, err)
	num := numericGradient(t, func(v *mat.VecDense) (float64, error) { return m.Loss(v, x, y) }, w)
	assert.InDeltaSlice(t, num, g.RawVector().Data, 1e-6)

	// Loss accepts several samples, Gradient only one.
	X := mat.NewDense(2, 2, []float64{0, 1, 0, 1})
	Y := mat.NewVecDense(2, []float64{1, -1})
	_, err = m.Loss(w, X, Y)
	require.NoError(t, err)

	_, err = m.Gradient(w, X, Y)
	require.Error(t, err)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestStochasticErrors(t *testing.T) {
	t.Run("empty dictionary", func(t *testing.T) {
		m, err := NewStochasticKernelLogistic(kernel.NewLinear(0))
		require.NoError(t, err)
		_, err = m.Gradient(mat.NewVecDense(1, nil), column(1), mat.NewVecDense(1, []float64{1}))
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("nil kernel", func(t *testing.T) {
		m, err := NewStochasticKernelLogistic(nil)
		require.NoError(t, err)
		_, _, err = m.Grow(nil, column(1), 1)
		assert.True(t, errors.IsUninitialized(err))
	})

	t.Run("err_max range", func(t *testing.T) {
		for _, v := range []float64{-0.1, 0.5, 1} {
			_, err := NewStochasticKernelLogistic(kernel.NewLinear(0), WithErrMax(v))
			assert.True(t, errors.IsInvalidArgument(err), "err_max=%v", v)
		}
	})

	t.Run("unsupported options", func(t *testing.T) {
		_, err := NewStochasticKernelLogistic(kernel.NewLinear(0), WithStableGram(true))
		assert.True(t, errors.IsInvalidArgument(err))
		_, err = NewStochasticKernelLogistic(kernel.NewLinear(0), WithInitialWeights(mat.NewVecDense(3, nil)))
		assert.True(t, errors.IsInvalidArgument(err))

		m, err := NewStochasticKernelLogistic(kernel.NewLinear(0), WithStableGram(false))
		require.NoError(t, err)
		assert.Nil(t, m.Weights())
	})

	t.Run("feature mismatch", func(t *testing.T) {
		m, err := NewStochasticKernelLogistic(kernel.NewLinear(0))
		require.NoError(t, err)
		_, _, err = m.Grow(nil, column(1, 2), 1)
		require.NoError(t, err)
		_, _, err = m.Grow(mat.NewVecDense(1, nil), column(1, 2, 3), 1)
		assert.True(t, errors.IsInvalidArgument(err))
	})
}

func TestStochasticPredict(t *testing.T) {
	m, err := NewStochasticKernelLogistic(gaussian(t, 1))
	require.NoError(t, err)

	w, _, err := m.Grow(nil, column(1, 1), 1)
	require.NoError(t, err)
	w, _, err = m.Grow(w, column(-1, -1), -1)
	require.NoError(t, err)
	require.Equal(t, 2, w.Len())

	w.SetVec(0, 3)
	w.SetVec(1, -3)
	lease, err := m.Acquire()
	require.NoError(t, err)
	lease.Set(w)
	lease.Release()

	p, err := m.Predict(mat.NewDense(2, 2, []float64{1, -1, 1, -1}))
	require.NoError(t, err)
	assert.Greater(t, p.AtVec(0), 0.5)
	assert.Less(t, p.AtVec(1), 0.5)
	assert.Equal(t, 2, m.WeightDim(nil))
}
