package engine

import (
	"math"

	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// eigenSym returns the eigenvalues of a in ascending order and the matching
// unit eigenvectors as columns.
func eigenSym(j *job, a mat.Symmetric) ([]float64, *mat.Dense, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, nil, j.fail("eigendecomposition failed", errors.ErrNoConvergence)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	return vals, &vecs, nil
}

// bottomEigenvectors returns the eigenvectors of the dim smallest
// eigenvalues after skipping the first skip of them.
func bottomEigenvectors(j *job, a mat.Symmetric, skip int) (*mat.Dense, error) {
	n := a.SymmetricDim()
	if skip+j.dim > n {
		return nil, j.fail("eigenproblem too small for the target dimension",
			errors.NewDimensionError("bottomEigenvectors", skip+j.dim, n, 0))
	}
	_, vecs, err := eigenSym(j, a)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, j.dim, nil)
	out.Copy(vecs.Slice(0, n, skip, skip+j.dim))
	fixSigns(out)
	return out, nil
}

// topEigen returns the count largest eigenvalues in descending order and
// their eigenvectors as columns.
func topEigen(j *job, a mat.Symmetric, count int) ([]float64, *mat.Dense, error) {
	n := a.SymmetricDim()
	if count > n {
		return nil, nil, j.fail("eigenproblem too small for the target dimension",
			errors.NewDimensionError("topEigen", count, n, 0))
	}
	vals, vecs, err := eigenSym(j, a)
	if err != nil {
		return nil, nil, err
	}
	topVals := make([]float64, count)
	out := mat.NewDense(n, count, nil)
	for c := 0; c < count; c++ {
		src := n - 1 - c
		topVals[c] = vals[src]
		for i := 0; i < n; i++ {
			out.Set(i, c, vecs.At(i, src))
		}
	}
	fixSigns(out)
	return topVals, out, nil
}

// fixSigns flips every column so that its entry of largest magnitude is
// positive. Eigenvectors are defined up to sign only.
func fixSigns(m *mat.Dense) {
	r, c := m.Dims()
	for col := 0; col < c; col++ {
		best, bestAbs := 0.0, -1.0
		for i := 0; i < r; i++ {
			v := m.At(i, col)
			if math.Abs(v) > bestAbs {
				best, bestAbs = v, math.Abs(v)
			}
		}
		if best < 0 {
			for i := 0; i < r; i++ {
				m.Set(i, col, -m.At(i, col))
			}
		}
	}
}

// symmetrize returns (a + a^T) / 2.
func symmetrize(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			out.SetSym(i, k, 0.5*(a.At(i, k)+a.At(k, i)))
		}
	}
	return out
}

func addDiagonal(s *mat.SymDense, v float64) {
	if v == 0 {
		return
	}
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}

func trace(s mat.Symmetric) float64 {
	t := 0.0
	for i := 0; i < s.SymmetricDim(); i++ {
		t += s.At(i, i)
	}
	return t
}

// centeredFeatures copies the feature source into an n x d matrix with
// zero column means.
func centeredFeatures(j *job) (*mat.Dense, error) {
	f := j.access.Features()
	if f == nil {
		return nil, errors.NewMissingInputError("features")
	}
	n, d := f.NumVectors(), f.Dimension()
	x := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		x.SetRow(i, f.Vector(i, make([]float64, d)))
	}
	col := make([]float64, n)
	for c := 0; c < d; c++ {
		mat.Col(col, c, x)
		floats.AddConst(-floats.Sum(col)/float64(n), col)
		x.SetCol(c, col)
	}
	return x, nil
}

// linearProjection solves the generalized problem X^T A X p = l X^T B X p
// for the dim smallest l and returns the embedding X P. It is shared by the
// linear variants of the spectral methods.
func linearProjection(j *job, x *mat.Dense, a, b mat.Symmetric) (*mat.Dense, error) {
	_, d := x.Dims()
	if j.dim > d {
		return nil, j.fail("target dimension exceeds the feature dimension",
			errors.NewDimensionError("linearProjection", j.dim, d, 1))
	}

	lhs := quadratic(x, a)
	rhs := quadratic(x, b)
	addDiagonal(rhs, j.eigenshift()+1e-9*math.Max(trace(rhs), 1))

	var chol mat.Cholesky
	if ok := chol.Factorize(rhs); !ok {
		return nil, j.fail("constraint matrix is not positive definite", errors.ErrSingularMatrix)
	}
	var l, linv mat.TriDense
	chol.LTo(&l)
	if err := linv.InverseTri(&l); err != nil {
		if c, ill := err.(mat.Condition); !ill || math.IsInf(float64(c), 1) {
			return nil, j.fail("constraint matrix is singular", err)
		}
	}

	var tmp, c mat.Dense
	tmp.Mul(&linv, lhs)
	c.Mul(&tmp, linv.T())
	_, vecs, err := eigenSym(j, symmetrize(&c))
	if err != nil {
		return nil, err
	}

	var proj mat.Dense
	proj.Mul(linv.T(), vecs.Slice(0, d, 0, j.dim))
	out := mat.NewDense(x.RawMatrix().Rows, j.dim, nil)
	out.Mul(x, &proj)
	fixSigns(out)
	return out, nil
}

// quadratic returns x^T a x.
func quadratic(x *mat.Dense, a mat.Symmetric) *mat.SymDense {
	var ax, q mat.Dense
	ax.Mul(a, x)
	q.Mul(x.T(), &ax)
	return symmetrize(&q)
}
