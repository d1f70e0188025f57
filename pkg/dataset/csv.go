// Package dataset reads labelled samples from CSV files, one sample per row.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/preprocessing"
)

// Options controls how a CSV file is split into features and labels.
type Options struct {
	// LabelColumn is the zero-based label column. Negative values count from
	// the end, so -1 is the last column.
	LabelColumn int
	// Header skips the first record.
	Header bool
}

// Dataset holds row-major samples as read from the file.
type Dataset struct {
	Rows   [][]float64
	Labels []float64
}

// Features returns the number of feature columns.
func (d *Dataset) Features() int {
	if len(d.Rows) == 0 {
		return 0
	}
	return len(d.Rows[0])
}

// FeatureMajor converts the dataset to the d×M layout used by the models.
func (d *Dataset) FeatureMajor() (*mat.Dense, *mat.VecDense, error) {
	X, err := preprocessing.ToFeatureMajor(d.Rows)
	if err != nil {
		return nil, nil, err
	}
	y, err := preprocessing.Labels(d.Labels)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", path)
	}
	return ds, nil
}

// Read parses every record of r. All records must have the same number of
// fields and every field must be a number; the first offending record
// aborts the read.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true

	ds := &Dataset{}
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if line == 1 && opts.Header {
			continue
		}

		label := opts.LabelColumn
		if label < 0 {
			label += len(rec)
		}
		if label < 0 || label >= len(rec) {
			return nil, errors.NewValidationError("label_column", "out of range for line "+strconv.Itoa(line), opts.LabelColumn)
		}
		if len(rec) < 2 {
			return nil, errors.NewValueError("dataset.Read", "line "+strconv.Itoa(line)+": need at least one feature and a label")
		}

		x := make([]float64, 0, len(rec)-1)
		var y float64
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "line %d column %d", line, i), errors.ErrInvalidArgument)
			}
			if i == label {
				y = v
			} else {
				x = append(x, v)
			}
		}
		ds.Rows = append(ds.Rows, x)
		ds.Labels = append(ds.Labels, y)
	}

	if len(ds.Rows) == 0 {
		return nil, errors.NewModelError("dataset.Read", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	return ds, nil
}
