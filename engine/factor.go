package engine

import (
	"math"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// minVariance floors the noise variances of factor analysis.
const minVariance = 1e-6

// factorAnalysis fits x = W z + e with diagonal noise by expectation
// maximization and embeds every sample as its posterior factor mean.
func factorAnalysis(j *job) (*mat.Dense, error) {
	x, err := centeredFeatures(j)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	if j.dim > d {
		return nil, j.fail("target dimension exceeds the feature dimension",
			errors.NewDimensionError("factorAnalysis", j.dim, d, 1))
	}
	maxIter := j.bag.Int(manifold.ParamMaxIteration, 100)
	eps := j.bag.Float(manifold.ParamFAEpsilon, 1e-5)

	cov := mat.NewSymDense(d, nil)
	cov.SymOuterK(1/float64(n), x.T())

	psi := make([]float64, d)
	for i := range psi {
		psi[i] = math.Max(cov.At(i, i), minVariance)
	}
	w := mat.NewDense(d, j.dim, nil)
	w.Apply(func(i, _ int, _ float64) float64 {
		return j.rng.NormFloat64() * math.Sqrt(psi[i]) * 0.1
	}, w)

	converged := false
	iter := 0
	for ; iter < maxIter; iter++ {
		beta, err := posteriorMap(j, w, psi)
		if err != nil {
			return nil, err
		}

		// E[z z^T] = I - beta W + beta S beta^T
		var bs, ezz, bw mat.Dense
		bs.Mul(beta, cov)
		ezz.Mul(&bs, beta.T())
		bw.Mul(beta, w)
		ezz.Sub(&ezz, &bw)
		for c := 0; c < j.dim; c++ {
			ezz.Set(c, c, ezz.At(c, c)+1)
		}

		var ezzInv, next mat.Dense
		if err := invert(j, &ezzInv, &ezz); err != nil {
			return nil, err
		}
		next.Mul(bs.T(), &ezzInv)

		change := 0.0
		for r := 0; r < d; r++ {
			explained := 0.0
			for c := 0; c < j.dim; c++ {
				change = math.Max(change, math.Abs(next.At(r, c)-w.At(r, c)))
				explained += next.At(r, c) * bs.At(c, r)
			}
			psi[r] = math.Max(cov.At(r, r)-explained, minVariance)
		}
		w = &next

		if err := errors.CheckScalar("factor loadings", change, iter); err != nil {
			return nil, j.fail("loadings diverged", err)
		}
		if change < eps {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning(j.name, maxIter, "loadings did not settle within max_iteration"))
	}
	j.logger.Debug("factor analysis finished", log.IterationKey, iter, "converged", converged)

	beta, err := posteriorMap(j, w, psi)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, j.dim, nil)
	out.Mul(x, beta.T())
	return out, nil
}

// posteriorMap returns (I + W^T Psi^-1 W)^-1 W^T Psi^-1, the map from a
// centered sample to its posterior factor mean.
func posteriorMap(j *job, w *mat.Dense, psi []float64) (*mat.Dense, error) {
	d, k := w.Dims()
	scaled := mat.NewDense(d, k, nil)
	scaled.Apply(func(r, _ int, v float64) float64 { return v / psi[r] }, w)

	var m mat.Dense
	m.Mul(w.T(), scaled)
	for c := 0; c < k; c++ {
		m.Set(c, c, m.At(c, c)+1)
	}
	var mInv mat.Dense
	if err := invert(j, &mInv, &m); err != nil {
		return nil, err
	}
	beta := mat.NewDense(k, d, nil)
	beta.Mul(&mInv, scaled.T())
	return beta, nil
}

// invert computes a^-1 into dst. Ill-conditioning is tolerated; exact
// singularity is reported.
func invert(j *job, dst *mat.Dense, a mat.Matrix) error {
	if err := dst.Inverse(a); err != nil {
		if c, ill := err.(mat.Condition); !ill || math.IsInf(float64(c), 1) {
			return j.fail("singular matrix", errors.ErrSingularMatrix)
		}
	}
	return nil
}
