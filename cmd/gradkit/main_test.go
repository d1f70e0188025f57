package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		log.SetProvider(log.NewProvider(os.Stderr, log.LevelWarn))
	})
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o600))
	return path
}

func decodeTrain(t *testing.T, out string) trainResult {
	t.Helper()
	var res trainResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestTrainLeastSquares(t *testing.T) {
	// y = 2·x0 − x1
	data := writeCSV(t, "1,0,2", "0,1,-1", "1,1,1", "2,1,3")
	plot := filepath.Join(t.TempDir(), "loss.png")

	out, _, err := run(t, "train", "--data", data,
		"--model", "least_squares",
		"--convergence", "iterations", "--value", "2000", "--step-size", "0.1",
		"--plot", plot,
	)
	require.NoError(t, err)

	res := decodeTrain(t, out)
	assert.Equal(t, "LeastSquares", res.Model.ModelType)
	require.Len(t, res.Model.Coefficients, 2)
	assert.InDelta(t, 2, res.Model.Coefficients[0], 1e-6)
	assert.InDelta(t, -1, res.Model.Coefficients[1], 1e-6)
	assert.Equal(t, 2000, res.Updates)
	assert.True(t, res.Model.State.Fitted)
	assert.InDelta(t, 0, res.Metrics["mse"], 1e-10)
	assert.InDelta(t, 1, res.Metrics["r2"], 1e-8)

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrainBinaryLogistic(t *testing.T) {
	data := writeCSV(t,
		"x0,x1,y",
		"-2,-1,0", "-1,-2,0", "-1.5,-1.5,0",
		"2,1,1", "1,2,1", "1.5,1.5,1",
	)
	out, stderr, err := run(t, "train", "--data", data, "--header",
		"--model", "binary_logistic", "--zero-one-labels",
		"--convergence", "iterations", "--value", "200", "--step-size", "0.5",
		"--log-level", "info",
	)
	require.NoError(t, err)

	res := decodeTrain(t, out)
	assert.Equal(t, 1.0, res.Metrics["accuracy"])
	assert.Equal(t, 1.0, res.Metrics["auc"])
	assert.Less(t, res.Metrics["log_loss"], 0.1)
	assert.Contains(t, stderr, "fit finished")
	assert.NotContains(t, out, "fit finished", "logs must not go to stdout")
}

func TestTrainRejectsZeroOneLabelsWithoutMapping(t *testing.T) {
	data := writeCSV(t, "1,0", "2,1")
	_, _, err := run(t, "train", "--data", data, "--model", "binary_logistic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero_one_labels")
}

func TestTrainStochasticKernel(t *testing.T) {
	data := writeCSV(t,
		"-2,-2,-1", "-2.2,-1.9,-1", "2,2,1", "2.1,1.8,1",
	)
	out, _, err := run(t, "train", "--data", data,
		"--model", "stochastic_kernel_logistic", "--solver", "stochastic",
		"--kernel", "gaussian", "--sigma", "1", "--epochs", "3", "--step-size", "0.5",
	)
	require.NoError(t, err)

	res := decodeTrain(t, out)
	assert.Equal(t, 12, res.Updates)
	assert.Greater(t, res.DictionarySize, 0)
	assert.Len(t, res.Model.Coefficients, res.DictionarySize)
	assert.Equal(t, 1.0, res.Metrics["accuracy"])
}

func TestTrainWithConfigFile(t *testing.T) {
	data := writeCSV(t, "-1,-1", "-2,-1", "1,1", "2,1")
	cfgPath := filepath.Join(t.TempDir(), "gradkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
kernel:
  type: gaussian
  sigma: 1
model:
  type: kernel_logistic
  lambda: 0.01
solver:
  step_size: 0.5
  convergence: loss_precision
  value: 1e-6
data:
  scale: standard
`), 0o600))

	out, _, err := run(t, "train", "--config", cfgPath, "--data", data)
	require.NoError(t, err)

	res := decodeTrain(t, out)
	assert.Equal(t, "KernelLogistic", res.Model.ModelType)
	assert.Len(t, res.Model.Coefficients, 4)
	assert.Equal(t, 1.0, res.Metrics["accuracy"])
}

func TestTrainErrors(t *testing.T) {
	data := writeCSV(t, "1,2", "2,4")

	_, _, err := run(t, "train")
	assert.Error(t, err, "--data is required")

	_, _, err = run(t, "train", "--data", data, "--model", "svm")
	assert.Error(t, err)

	_, _, err = run(t, "train", "--data", data, "--convergence", "gradient_norm")
	assert.Error(t, err)

	_, _, err = run(t, "train", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestGram(t *testing.T) {
	data := writeCSV(t, "1,2,0", "3,4,0")

	tests := []struct {
		name   string
		args   []string
		stable bool
	}{
		{name: "plain", args: nil},
		{name: "stable", args: []string{"--stable"}, stable: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"gram", "--data", data, "--kernel", "linear"}, tt.args...)
			out, _, err := run(t, args...)
			require.NoError(t, err)

			var res gramResult
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, "linear", res.Kernel)
			assert.Equal(t, 2, res.Rows)
			assert.Equal(t, 2, res.Cols)

			want := [][]float64{{5, 11}, {11, 25}}
			if tt.stable {
				want[0][0] += kernel.StabilityTerm
				want[1][1] += kernel.StabilityTerm
			}
			for i := range want {
				assert.InDeltaSlice(t, want[i], res.Data[i], 1e-12)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gradkit dev\n", out)
}
