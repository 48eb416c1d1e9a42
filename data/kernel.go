package data

import (
	"math"

	"github.com/GSawko/shogun/core/parallel"
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pairwiseThreshold is the sample count above which pairwise matrices are
// filled in parallel.
const pairwiseThreshold = 64

// VectorSource is the subset of a feature provider the lazy kernels read.
type VectorSource interface {
	NumVectors() int
	Dimension() int
	Vector(i int, dst []float64) []float64
}

// KernelFunc evaluates a kernel lazily over a feature source.
type KernelFunc struct {
	src VectorSource
	fn  func(x, y []float64) float64
}

func (k *KernelFunc) NumEntities() int { return k.src.NumVectors() }

func (k *KernelFunc) Kernel(i, j int) float64 {
	d := k.src.Dimension()
	return k.fn(k.src.Vector(i, make([]float64, d)), k.src.Vector(j, make([]float64, d)))
}

// LinearKernel returns k(x, y) = <x, y>.
func LinearKernel(src VectorSource) *KernelFunc {
	return &KernelFunc{src: src, fn: floats.Dot}
}

// GaussianKernel returns k(x, y) = exp(-|x-y|^2 / width).
func GaussianKernel(src VectorSource, width float64) (*KernelFunc, error) {
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, errors.NewConfigurationError("gaussian_kernel_width", "must be positive and finite", width)
	}
	return &KernelFunc{src: src, fn: func(x, y []float64) float64 {
		d := floats.Distance(x, y, 2)
		return math.Exp(-d * d / width)
	}}, nil
}

// PolynomialKernel returns k(x, y) = (<x, y> + c)^degree.
func PolynomialKernel(src VectorSource, degree int, c float64) (*KernelFunc, error) {
	if degree < 1 {
		return nil, errors.NewConfigurationError("degree", "must be at least 1", degree)
	}
	return &KernelFunc{src: src, fn: func(x, y []float64) float64 {
		return math.Pow(floats.Dot(x, y)+c, float64(degree))
	}}, nil
}

// DistanceFunc evaluates a metric lazily over a feature source.
type DistanceFunc struct {
	src VectorSource
	p   float64
}

func (d *DistanceFunc) NumEntities() int { return d.src.NumVectors() }

func (d *DistanceFunc) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	dim := d.src.Dimension()
	return floats.Distance(d.src.Vector(i, make([]float64, dim)), d.src.Vector(j, make([]float64, dim)), d.p)
}

// EuclideanDistance returns the L2 metric over src.
func EuclideanDistance(src VectorSource) *DistanceFunc {
	return &DistanceFunc{src: src, p: 2}
}

// ManhattanDistance returns the L1 metric over src.
func ManhattanDistance(src VectorSource) *DistanceFunc {
	return &DistanceFunc{src: src, p: 1}
}

// KernelSource is a kernel provider.
type KernelSource interface {
	NumEntities() int
	Kernel(i, j int) float64
}

// DistanceSource is a distance provider.
type DistanceSource interface {
	NumEntities() int
	Distance(i, j int) float64
}

// PairwiseKernelMatrix evaluates every kernel entry into a symmetric matrix.
func PairwiseKernelMatrix(k KernelSource) *mat.SymDense {
	n := k.NumEntities()
	out := mat.NewSymDense(n, nil)
	parallel.UpperTriangle(n, pairwiseThreshold, func(i, j int) {
		out.SetSym(i, j, k.Kernel(i, j))
	})
	return out
}

// PairwiseDistanceMatrix evaluates every distance into a symmetric matrix.
func PairwiseDistanceMatrix(d DistanceSource) *mat.SymDense {
	n := d.NumEntities()
	out := mat.NewSymDense(n, nil)
	parallel.UpperTriangle(n, pairwiseThreshold, func(i, j int) {
		if i != j {
			out.SetSym(i, j, d.Distance(i, j))
		}
	})
	return out
}
