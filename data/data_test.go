package data

import (
	"math"
	"testing"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	_ manifold.FeatureProvider  = (*Features)(nil)
	_ manifold.KernelProvider   = (*PrecomputedKernel)(nil)
	_ manifold.KernelProvider   = (*KernelFunc)(nil)
	_ manifold.DistanceProvider = (*PrecomputedDistance)(nil)
	_ manifold.DistanceProvider = (*DistanceFunc)(nil)
)

func triangle(t *testing.T) *Features {
	t.Helper()
	f, err := NewFeatures(mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		1, 1,
	}))
	require.NoError(t, err)
	return f
}

func TestFeatures(t *testing.T) {
	f := triangle(t)
	assert.Equal(t, 3, f.NumVectors())
	assert.Equal(t, 2, f.Dimension())
	assert.Equal(t, []float64{3, 4}, f.Vector(1, nil))

	buf := make([]float64, 8)
	got := f.Vector(2, buf)
	assert.Len(t, got, 2)
	assert.Equal(t, []float64{1, 1}, got)

	// matrices without raw row access go through mat.Row
	tf, err := NewFeatures(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}).T())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, tf.Vector(1, nil))

	_, err = NewFeatures(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestKernels(t *testing.T) {
	f := triangle(t)

	lin := LinearKernel(f)
	assert.Equal(t, 3, lin.NumEntities())
	assert.Equal(t, 7.0, lin.Kernel(1, 2))

	g, err := GaussianKernel(f, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Kernel(0, 0))
	assert.InDelta(t, math.Exp(-25.0/2), g.Kernel(0, 1), 1e-15)

	_, err = GaussianKernel(f, 0)
	assert.True(t, errors.IsConfiguration(err))

	p, err := PolynomialKernel(f, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 64.0, p.Kernel(1, 2))

	_, err = PolynomialKernel(f, 0, 1)
	assert.True(t, errors.IsConfiguration(err))
}

func TestDistances(t *testing.T) {
	f := triangle(t)

	assert.Equal(t, 5.0, EuclideanDistance(f).Distance(0, 1))
	assert.Equal(t, 7.0, ManhattanDistance(f).Distance(0, 1))
	assert.Equal(t, 0.0, EuclideanDistance(f).Distance(2, 2))
}

func TestPairwiseMatrices(t *testing.T) {
	f := triangle(t)

	d := PairwiseDistanceMatrix(EuclideanDistance(f))
	assert.Equal(t, 3, d.SymmetricDim())
	assert.Equal(t, 5.0, d.At(1, 0))
	assert.InDelta(t, math.Sqrt(13), d.At(1, 2), 1e-12)
	assert.Equal(t, 0.0, d.At(2, 2))

	k := PairwiseKernelMatrix(LinearKernel(f))
	assert.Equal(t, 25.0, k.At(1, 1))
	assert.Equal(t, 7.0, k.At(2, 1))

	pd, err := NewPrecomputedDistance(d)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pd.Distance(0, 1))
	assert.Equal(t, 3, pd.NumEntities())

	pk, err := NewPrecomputedKernel(k)
	require.NoError(t, err)
	assert.Equal(t, 7.0, pk.Kernel(1, 2))
}

func TestPairwiseLargeIsParallelSafe(t *testing.T) {
	const n = 200
	raw := make([]float64, n*3)
	for i := range raw {
		raw[i] = float64(i % 17)
	}
	f, err := NewFeatures(mat.NewDense(n, 3, raw))
	require.NoError(t, err)

	d := PairwiseDistanceMatrix(EuclideanDistance(f))
	for _, pair := range [][2]int{{0, 199}, {57, 58}, {120, 3}} {
		assert.Equal(t, EuclideanDistance(f).Distance(pair[0], pair[1]), d.At(pair[0], pair[1]))
	}
}

func TestPrecomputedValidation(t *testing.T) {
	bad := mat.NewSymDense(2, []float64{1, 2, 2, 0})
	_, err := NewPrecomputedDistance(bad)
	assert.Error(t, err)

	neg := mat.NewSymDense(2, []float64{0, -1, -1, 0})
	_, err = NewPrecomputedDistance(neg)
	assert.Error(t, err)

	nan := mat.NewSymDense(2, []float64{math.NaN(), 0, 0, 1})
	_, err = NewPrecomputedKernel(nan)
	assert.Error(t, err)

	_, err = NewPrecomputedKernel(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
