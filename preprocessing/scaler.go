// Package preprocessing rescales feature matrices before they are embedded.
// Distance-based methods are sensitive to feature scale, so features with
// large ranges dominate neighborhoods unless they are normalized first.
package preprocessing

import (
	"fmt"
	"math"
	"strings"

	"github.com/GSawko/shogun/core/model"
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// constantTolerance は定数特徴量とみなす幅
const constantTolerance = 1e-8

// StandardScaler centers each feature to zero mean and scales it to unit
// population standard deviation.
type StandardScaler struct {
	model.BaseTransformer

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差。定数特徴量では1
	Scale []float64

	NFeatures int

	WithMean bool
	WithStd  bool
}

// NewStandardScaler returns a StandardScaler.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	scaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// Fit computes the per-column mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd && std >= constantTolerance {
			s.Scale[j] = std
		}
	}

	s.SetFitted()
	return nil
}

// Transform applies (x - mean) / scale column-wise.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.Wrap(errors.ErrNotFitted, "StandardScaler.Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform fits X and returns it transformed.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) String() string {
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
}

// MinMaxScaler maps each feature linearly onto FeatureRange.
type MinMaxScaler struct {
	model.BaseTransformer

	DataMin []float64
	// Scale は max - min。定数特徴量では1
	Scale []float64

	NFeatures    int
	FeatureRange [2]float64
}

// NewMinMaxScaler returns a MinMaxScaler targeting featureRange.
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// Fit records the per-column minimum and range of X.
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MinMaxScaler.Fit")
	}
	if !(m.FeatureRange[1] > m.FeatureRange[0]) {
		return errors.NewValueError("MinMaxScaler.Fit",
			fmt.Sprintf("feature range [%g, %g] is empty", m.FeatureRange[0], m.FeatureRange[1]))
	}

	m.NFeatures = c
	m.DataMin = make([]float64, c)
	m.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		m.DataMin[j] = lo
		m.Scale[j] = 1
		if hi-lo >= constantTolerance {
			m.Scale[j] = hi - lo
		}
	}

	m.SetFitted()
	return nil
}

// Transform maps X onto the feature range using the fitted statistics.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.Wrap(errors.ErrNotFitted, "MinMaxScaler.Transform")
	}
	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	span := m.FeatureRange[1] - m.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*span + m.FeatureRange[0]
	}, X)
	return result, nil
}

// FitTransform fits X and returns it transformed.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g])", m.FeatureRange[0], m.FeatureRange[1])
}

// ParseScaler returns the transformer registered under name: "standard",
// "minmax", or "none" (nil transformer).
func ParseScaler(name string) (model.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "standard":
		return NewStandardScaler(true, true), nil
	case "minmax":
		return NewMinMaxScaler([2]float64{0, 1}), nil
	}
	return nil, errors.NewConfigurationError("scale", "must be one of none, standard, minmax", name)
}
