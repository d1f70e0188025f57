package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// constantFeature 未満のばらつきしかない特徴量はスケールを1にする
const constantFeature = 1e-8

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)

// StandardScaler は各特徴量を平均0、標準偏差1に変換する。
// 入力は d×M の特徴量優先レイアウト（行が特徴量、列がサンプル）。
type StandardScaler struct {
	model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64
	// Scale は各特徴量の母標準偏差
	Scale []float64

	// WithMean は平均を引くかどうか
	WithMean bool
	// WithStd は標準偏差で割るかどうか
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// Fit は各行（特徴量）の平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	d, m, err := dims("StandardScaler.Fit", X)
	if err != nil {
		return err
	}

	s.Mean = make([]float64, d)
	s.Scale = make([]float64, d)
	row := make([]float64, m)
	for i := 0; i < d; i++ {
		mat.Row(row, i, X)
		mean, variance := stat.PopMeanVariance(row, nil)
		if s.WithMean {
			s.Mean[i] = mean
		}
		s.Scale[i] = 1
		if std := math.Sqrt(variance); s.WithStd && std >= constantFeature {
			s.Scale[i] = std
		}
	}

	s.SetDimensions(d, m)
	s.SetFitted()
	return nil
}

// Transform は学習済みの統計量で標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	return s.apply("StandardScaler.Transform", X, func(i int, row []float64) {
		floats.AddConst(-s.Mean[i], row)
		floats.Scale(1/s.Scale[i], row)
	})
}

// FitTransform は Fit の後に同じデータを Transform する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	return s.apply("StandardScaler.InverseTransform", X, func(i int, row []float64) {
		floats.Scale(s.Scale[i], row)
		floats.AddConst(s.Mean[i], row)
	})
}

func (s *StandardScaler) apply(op string, X mat.Matrix, fn func(i int, row []float64)) (mat.Matrix, error) {
	nFeatures, _ := s.GetDimensions()
	return transformRows(op, nFeatures, X, fn)
}

// GetParams はスケーラーのパラメータを返す
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

func (s *StandardScaler) String() string {
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
}

// MinMaxScaler は各特徴量を FeatureRange の範囲に線形変換する。
// 入力レイアウトは StandardScaler と同じ。
type MinMaxScaler struct {
	model.StateManager

	// DataMin, DataMax は学習データの各特徴量の最小値・最大値
	DataMin []float64
	DataMax []float64
	// Scale は max - min（定数特徴量では1）
	Scale []float64

	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する。
// featureRange[0] < featureRange[1] でなければエラー。
func NewMinMaxScaler(featureRange [2]float64) (*MinMaxScaler, error) {
	if !(featureRange[0] < featureRange[1]) {
		return nil, errors.NewValidationError("feature_range", "min must be less than max", featureRange)
	}
	return &MinMaxScaler{FeatureRange: featureRange}, nil
}

// Fit は各特徴量の最小値・最大値を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	d, n, err := dims("MinMaxScaler.Fit", X)
	if err != nil {
		return err
	}

	m.DataMin = make([]float64, d)
	m.DataMax = make([]float64, d)
	m.Scale = make([]float64, d)
	row := make([]float64, n)
	for i := 0; i < d; i++ {
		mat.Row(row, i, X)
		m.DataMin[i] = floats.Min(row)
		m.DataMax[i] = floats.Max(row)
		m.Scale[i] = m.DataMax[i] - m.DataMin[i]
		if m.Scale[i] < constantFeature {
			m.Scale[i] = 1
		}
	}

	m.SetDimensions(d, n)
	m.SetFitted()
	return nil
}

// Transform は (x - min) / scale を FeatureRange へ写す
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}
	width := m.FeatureRange[1] - m.FeatureRange[0]
	nFeatures, _ := m.GetDimensions()
	return transformRows("MinMaxScaler.Transform", nFeatures, X, func(i int, row []float64) {
		floats.AddConst(-m.DataMin[i], row)
		floats.Scale(width/m.Scale[i], row)
		floats.AddConst(m.FeatureRange[0], row)
	})
}

// FitTransform は Fit の後に同じデータを Transform する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.RequireFitted("MinMaxScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	width := m.FeatureRange[1] - m.FeatureRange[0]
	nFeatures, _ := m.GetDimensions()
	return transformRows("MinMaxScaler.InverseTransform", nFeatures, X, func(i int, row []float64) {
		floats.AddConst(-m.FeatureRange[0], row)
		floats.Scale(m.Scale[i]/width, row)
		floats.AddConst(m.DataMin[i], row)
	})
}

// GetParams はスケーラーのパラメータを返す
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
	}
}

func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g])", m.FeatureRange[0], m.FeatureRange[1])
}

func dims(op string, X mat.Matrix) (int, int, error) {
	if X == nil {
		return 0, 0, errors.NewValueError(op, "input matrix must not be nil")
	}
	if d, ok := X.(*mat.Dense); ok && d.IsEmpty() {
		return 0, 0, errors.NewModelError(op, "empty data", errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}
	return r, c, nil
}

// transformRows は X をコピーして各行に fn を適用する
func transformRows(op string, nFeatures int, X mat.Matrix, fn func(i int, row []float64)) (*mat.Dense, error) {
	if _, _, err := dims(op, X); err != nil {
		return nil, err
	}
	if err := model.CheckFeatures(op, nFeatures, X); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(X)
	d, _ := out.Dims()
	for i := 0; i < d; i++ {
		fn(i, out.RawRowView(i))
	}
	return out, nil
}
