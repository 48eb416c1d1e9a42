package data

import (
	"math"

	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PrecomputedKernel serves kernel values from a symmetric matrix.
type PrecomputedKernel struct {
	s mat.Symmetric
}

// NewPrecomputedKernel wraps a symmetric kernel matrix.
func NewPrecomputedKernel(s mat.Symmetric) (*PrecomputedKernel, error) {
	if err := checkSymmetric("data.NewPrecomputedKernel", s); err != nil {
		return nil, err
	}
	return &PrecomputedKernel{s: s}, nil
}

func (k *PrecomputedKernel) NumEntities() int { return k.s.SymmetricDim() }

func (k *PrecomputedKernel) Kernel(i, j int) float64 { return k.s.At(i, j) }

// PrecomputedDistance serves distances from a symmetric matrix with a zero
// diagonal and non-negative entries.
type PrecomputedDistance struct {
	s mat.Symmetric
}

// NewPrecomputedDistance wraps a symmetric distance matrix.
func NewPrecomputedDistance(s mat.Symmetric) (*PrecomputedDistance, error) {
	if err := checkSymmetric("data.NewPrecomputedDistance", s); err != nil {
		return nil, err
	}
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		if s.At(i, i) != 0 {
			return nil, errors.NewValueError("data.NewPrecomputedDistance", "diagonal must be zero")
		}
		for j := i + 1; j < n; j++ {
			if s.At(i, j) < 0 {
				return nil, errors.NewValueError("data.NewPrecomputedDistance", "distances must be non-negative")
			}
		}
	}
	return &PrecomputedDistance{s: s}, nil
}

func (d *PrecomputedDistance) NumEntities() int { return d.s.SymmetricDim() }

func (d *PrecomputedDistance) Distance(i, j int) float64 { return d.s.At(i, j) }

func checkSymmetric(op string, s mat.Symmetric) error {
	if s == nil || s.SymmetricDim() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := s.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError(op, "matrix contains non-finite values")
			}
		}
	}
	return nil
}
