package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

type paramModel struct {
	Base
}

func (p *paramModel) GetParams() map[string]interface{} {
	return map[string]interface{}{"lambda": 0.5}
}

func TestExportWeights(t *testing.T) {
	m := &paramModel{}
	m.Init("KernelLogistic", false)

	lease, err := m.Acquire()
	require.NoError(t, err)
	lease.Set(mat.NewVecDense(3, []float64{0.1, 0.2, 0.3}))
	lease.Release()

	mw := ExportWeights(m)
	assert.Equal(t, "KernelLogistic", mw.ModelType)
	assert.False(t, mw.Parametric)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, mw.Coefficients)
	assert.Equal(t, 0.5, mw.Hyperparameters["lambda"])
	assert.True(t, mw.State.Fitted)
	require.NoError(t, mw.Validate())

	b, err := mw.ToJSON()
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "KernelLogistic", decoded["model_type"])
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name string
		mw   ModelWeights
		ok   bool
	}{
		{"missing type", ModelWeights{Version: "1"}, false},
		{"missing version", ModelWeights{ModelType: "LeastSquares"}, false},
		{"fitted without coefficients", ModelWeights{ModelType: "LeastSquares", Version: "1", State: ModelState{Fitted: true}}, false},
		{"unfitted snapshot", ModelWeights{ModelType: "LeastSquares", Version: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mw.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}

func TestModelWeightsClone(t *testing.T) {
	mw := &ModelWeights{
		ModelType:       "BinaryLogistic",
		Version:         WeightsVersion,
		Coefficients:    []float64{1, 2},
		Hyperparameters: map[string]interface{}{"a": 1},
	}
	c := mw.Clone()
	c.Coefficients[0] = 9
	c.Hyperparameters["a"] = 2

	assert.Equal(t, 1.0, mw.Coefficients[0])
	assert.Equal(t, 1, mw.Hyperparameters["a"])
}
