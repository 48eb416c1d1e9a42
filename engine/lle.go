package engine

import (
	"math"

	"github.com/GSawko/shogun/core/parallel"
	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// reconstructionRegularizer scales the trace of each local Gram matrix
// added to its diagonal.
const reconstructionRegularizer = 1e-3

// locallyLinear serves both LLE and kernel LLE: the local Gram matrices are
// taken from the kernel, which for feature input is the linear kernel.
func locallyLinear(j *job) (*mat.Dense, error) {
	m, err := reconstructionCost(j)
	if err != nil {
		return nil, err
	}
	addDiagonal(m, j.eigenshift())
	return bottomEigenvectors(j, m, 1)
}

// neighborhoodPreserving is the linear approximation of LLE:
// X^T M X p = l X^T X p.
func neighborhoodPreserving(j *job) (*mat.Dense, error) {
	x, err := centeredFeatures(j)
	if err != nil {
		return nil, err
	}
	m, err := reconstructionCost(j)
	if err != nil {
		return nil, err
	}
	return linearProjection(j, x, m, identity(j.n()))
}

// reconstructionCost returns M = (I - W)^T (I - W) for the barycentric
// reconstruction weights W of every sample from its neighbors.
func reconstructionCost(j *job) (*mat.SymDense, error) {
	kernel := j.access.Kernel()
	if kernel == nil {
		return nil, errors.NewMissingInputError("kernel")
	}
	n := j.n()
	nbrs := nearestNeighbors(distanceMatrix(j), j.neighbors())

	weights := make([][]float64, n)
	failed := make([]bool, n)
	parallel.Rows(n, parallelThreshold, func(i int) {
		w, ok := barycentricWeights(kernel, i, nbrs[i])
		weights[i], failed[i] = w, !ok
	})
	for i := range failed {
		if failed[i] {
			return nil, j.fail("singular local Gram matrix", errors.ErrSingularMatrix)
		}
	}

	iw := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		iw.Set(i, i, 1)
		for a, other := range nbrs[i] {
			iw.Set(i, other, iw.At(i, other)-weights[i][a])
		}
	}
	cost := mat.NewSymDense(n, nil)
	cost.SymOuterK(1, iw.T())
	return cost, nil
}

// barycentricWeights solves C w = 1 for the regularized local Gram matrix
// C_ab = k(i,i) - k(i,a) - k(i,b) + k(a,b) and normalizes w to sum to one.
func barycentricWeights(kernel manifold.KernelProvider, i int, nbrs []int) ([]float64, bool) {
	k := len(nbrs)
	kii := kernel.Kernel(i, i)
	ki := make([]float64, k)
	for a, na := range nbrs {
		ki[a] = kernel.Kernel(i, na)
	}

	gram := mat.NewSymDense(k, nil)
	for a, na := range nbrs {
		for b := a; b < k; b++ {
			gram.SetSym(a, b, kii-ki[a]-ki[b]+kernel.Kernel(na, nbrs[b]))
		}
	}
	reg := reconstructionRegularizer * trace(gram)
	if reg <= 0 {
		reg = reconstructionRegularizer
	}
	addDiagonal(gram, reg)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, false
	}
	ones := mat.NewVecDense(k, nil)
	for a := 0; a < k; a++ {
		ones.SetVec(a, 1)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, ones); err != nil {
		return nil, false
	}

	out := make([]float64, k)
	for a := range out {
		out[a] = w.AtVec(a)
	}
	sum := floats.Sum(out)
	if math.Abs(sum) < 1e-12 || math.IsNaN(sum) {
		return nil, false
	}
	floats.Scale(1/sum, out)
	return out, true
}

func tangentSpaceAlignment(j *job) (*mat.Dense, error) {
	m, err := alignmentMatrix(j)
	if err != nil {
		return nil, err
	}
	addDiagonal(m, j.eigenshift())
	return bottomEigenvectors(j, m, 1)
}

func linearTangentSpaceAlignment(j *job) (*mat.Dense, error) {
	x, err := centeredFeatures(j)
	if err != nil {
		return nil, err
	}
	m, err := alignmentMatrix(j)
	if err != nil {
		return nil, err
	}
	return linearProjection(j, x, m, identity(j.n()))
}

// alignmentMatrix accumulates I - G G^T over every neighborhood, where G
// holds the constant vector and the leading left singular vectors of the
// centered neighborhood.
func alignmentMatrix(j *job) (*mat.SymDense, error) {
	x, err := centeredFeatures(j)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	nbrs := nearestNeighbors(distanceMatrix(j), j.neighbors())
	align := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		idx := append([]int{i}, nbrs[i]...)
		k := len(idx)

		local := mat.NewDense(k, d, nil)
		for r, s := range idx {
			local.SetRow(r, x.RawRowView(s))
		}
		mean := make([]float64, d)
		for r := 0; r < k; r++ {
			floats.Add(mean, local.RawRowView(r))
		}
		floats.Scale(1/float64(k), mean)
		for r := 0; r < k; r++ {
			floats.Sub(local.RawRowView(r), mean)
		}

		var svd mat.SVD
		if ok := svd.Factorize(local, mat.SVDThin); !ok {
			return nil, j.fail("local SVD failed", errors.ErrNoConvergence)
		}
		var u mat.Dense
		svd.UTo(&u)
		_, rank := u.Dims()
		cols := j.dim
		if cols > rank {
			cols = rank
		}

		g := mat.NewDense(k, cols+1, nil)
		for r := 0; r < k; r++ {
			g.Set(r, 0, 1/math.Sqrt(float64(k)))
			for c := 0; c < cols; c++ {
				g.Set(r, c+1, u.At(r, c))
			}
		}
		var ggt mat.Dense
		ggt.Mul(g, g.T())

		for a := 0; a < k; a++ {
			for b := a; b < k; b++ {
				v := -ggt.At(a, b)
				if a == b {
					v++
				}
				ia, ib := idx[a], idx[b]
				align.SetSym(ia, ib, align.At(ia, ib)+v)
			}
		}
	}
	return align, nil
}

func identity(n int) *mat.SymDense {
	id := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		id.SetSym(i, i, 1)
	}
	return id
}
