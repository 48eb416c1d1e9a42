// Package data provides gonum-backed implementations of the kernel,
// distance and feature providers consumed by the manifold package.
//
// Providers are read-only views. They never copy the underlying matrix, so
// the caller must not mutate it while an embedding call is in flight.
package data

import (
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Features exposes the rows of a matrix as feature vectors.
type Features struct {
	m mat.Matrix
}

// NewFeatures wraps m, whose rows are samples and columns are features.
func NewFeatures(m mat.Matrix) (*Features, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "data.NewFeatures")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "data.NewFeatures")
	}
	return &Features{m: m}, nil
}

// NumVectors returns the number of rows.
func (f *Features) NumVectors() int {
	r, _ := f.m.Dims()
	return r
}

// Dimension returns the number of columns.
func (f *Features) Dimension() int {
	_, c := f.m.Dims()
	return c
}

// Vector copies row i into dst, growing it when it is too short, and returns
// the filled slice.
func (f *Features) Vector(i int, dst []float64) []float64 {
	c := f.Dimension()
	if cap(dst) < c {
		dst = make([]float64, c)
	}
	dst = dst[:c]
	if rv, ok := f.m.(mat.RawRowViewer); ok {
		copy(dst, rv.RawRowView(i))
		return dst
	}
	mat.Row(dst, i, f.m)
	return dst
}

// Matrix returns the wrapped matrix.
func (f *Features) Matrix() mat.Matrix { return f.m }
