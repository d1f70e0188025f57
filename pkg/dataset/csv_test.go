package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		opts       Options
		wantRows   [][]float64
		wantLabels []float64
	}{
		{
			name:       "label last",
			input:      "1,2,0\n3,4,1\n",
			opts:       Options{LabelColumn: -1},
			wantRows:   [][]float64{{1, 2}, {3, 4}},
			wantLabels: []float64{0, 1},
		},
		{
			name:       "label first with header",
			input:      "y,a,b\n-1, 0.5, 2\n1, 1.5, -2\n",
			opts:       Options{LabelColumn: 0, Header: true},
			wantRows:   [][]float64{{0.5, 2}, {1.5, -2}},
			wantLabels: []float64{-1, 1},
		},
		{
			name:       "single feature",
			input:      "7,1\n8,2\n9,3\n",
			opts:       Options{LabelColumn: 1},
			wantRows:   [][]float64{{7}, {8}, {9}},
			wantLabels: []float64{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Read(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, ds.Rows)
			assert.Equal(t, tt.wantLabels, ds.Labels)
			assert.Equal(t, len(tt.wantRows[0]), ds.Features())
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
	}{
		{"not a number", "1,x,0\n", Options{LabelColumn: -1}},
		{"ragged", "1,2,0\n1,0\n", Options{LabelColumn: -1}},
		{"label out of range", "1,2,0\n", Options{LabelColumn: 5}},
		{"label only", "1\n", Options{LabelColumn: 0}},
		{"empty", "", Options{LabelColumn: -1}},
		{"header only", "a,b\n", Options{LabelColumn: -1, Header: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.opts)
			assert.Error(t, err)
		})
	}

	_, err := Read(strings.NewReader(""), Options{})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestFeatureMajor(t *testing.T) {
	ds, err := Read(strings.NewReader("1,2,0\n3,4,1\n5,6,1\n"), Options{LabelColumn: -1})
	require.NoError(t, err)

	X, y, err := ds.FeatureMajor()
	require.NoError(t, err)
	d, m := X.Dims()
	assert.Equal(t, 2, d)
	assert.Equal(t, 3, m)
	assert.Equal(t, []float64{1, 3, 5}, X.RawRowView(0))
	assert.Equal(t, []float64{0, 1, 1}, y.RawVector().Data)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,1\n2,4\n"), 0o600))

	ds, err := ReadFile(path, Options{LabelColumn: -1})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}
