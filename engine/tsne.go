package engine

import (
	"math"

	"github.com/GSawko/shogun/core/parallel"
	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	tsneIterations       = 1000
	tsneExaggerationIter = 250
	tsneExaggeration     = 12.0
	tsneLearningRate     = 200.0
	tsneMinGain          = 0.01
	tsneMinProbability   = 1e-12
	perplexitySearchIter = 64
	perplexityTolerance  = 1e-5
)

// tsne minimizes the Kullback-Leibler divergence between Gaussian input
// affinities calibrated to sne_perplexity and Student-t output affinities.
// Gradients are exact; sne_theta is accepted but the Barnes-Hut
// approximation is not used.
func tsne(j *job) (*mat.Dense, error) {
	n := j.n()
	perplexity := j.bag.Float(manifold.ParamSNEPerplexity, 30)
	j.logger.Debug("computing exact t-SNE gradients",
		manifold.ParamSNETheta, j.bag.Float(manifold.ParamSNETheta, 0.5))

	p := jointProbabilities(squared(distanceMatrix(j)), perplexity)

	y := mat.NewDense(n, j.dim, nil)
	y.Apply(func(_, _ int, _ float64) float64 { return j.rng.NormFloat64() * 1e-4 }, y)
	update := mat.NewDense(n, j.dim, nil)
	gains := mat.NewDense(n, j.dim, nil)
	gains.Apply(func(_, _ int, _ float64) float64 { return 1 }, gains)

	num := mat.NewSymDense(n, nil)
	grad := mat.NewDense(n, j.dim, nil)
	diff := make([]float64, j.dim)

	for it := 0; it < tsneIterations; it++ {
		exaggeration, momentum := 1.0, 0.8
		if it < tsneExaggerationIter {
			exaggeration, momentum = tsneExaggeration, 0.5
		}

		sumQ := 0.0
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				floats.SubTo(diff, y.RawRowView(a), y.RawRowView(b))
				q := 1 / (1 + floats.Dot(diff, diff))
				num.SetSym(a, b, q)
				sumQ += 2 * q
			}
		}

		parallel.Rows(n, parallelThreshold, func(a int) {
			row := grad.RawRowView(a)
			for c := range row {
				row[c] = 0
			}
			ya := y.RawRowView(a)
			for b := 0; b < n; b++ {
				if a == b {
					continue
				}
				q := num.At(a, b)
				coeff := 4 * (exaggeration*p.At(a, b) - q/sumQ) * q
				yb := y.RawRowView(b)
				for c := range row {
					row[c] += coeff * (ya[c] - yb[c])
				}
			}
		})
		if err := errors.CheckNumericalStability("t-SNE gradient", grad.RawMatrix().Data, it); err != nil {
			return nil, j.fail("gradient diverged", err)
		}

		for a := 0; a < n; a++ {
			g, u, gain := grad.RawRowView(a), update.RawRowView(a), gains.RawRowView(a)
			for c := range g {
				if (g[c] > 0) != (u[c] > 0) {
					gain[c] += 0.2
				} else {
					gain[c] = math.Max(gain[c]*0.8, tsneMinGain)
				}
				u[c] = momentum*u[c] - tsneLearningRate*gain[c]*g[c]
			}
			floats.Add(y.RawRowView(a), u)
		}
		centerColumns(y)

		if (it+1)%250 == 0 {
			cost := klDivergence(p, num, sumQ)
			if err := errors.CheckScalar("t-SNE cost", cost, it+1); err != nil {
				return nil, j.fail("cost diverged", err)
			}
			j.logger.Debug("t-SNE progress", log.IterationKey, it+1, "cost", cost)
		}
	}
	return y, nil
}

// jointProbabilities calibrates a Gaussian per sample so that its
// conditional distribution has the requested perplexity, then symmetrizes.
func jointProbabilities(d2 mat.Symmetric, perplexity float64) *mat.SymDense {
	n := d2.SymmetricDim()
	cond := mat.NewDense(n, n, nil)
	target := math.Log(perplexity)

	parallel.Rows(n, parallelThreshold, func(i int) {
		row := cond.RawRowView(i)
		floor := math.Inf(1)
		for k := 0; k < n; k++ {
			if k != i {
				floor = math.Min(floor, d2.At(i, k))
			}
		}

		beta, lo, hi := 1.0, 0.0, math.Inf(1)
		for iter := 0; iter < perplexitySearchIter; iter++ {
			sum, weighted := 0.0, 0.0
			for k := 0; k < n; k++ {
				if k == i {
					row[k] = 0
					continue
				}
				shifted := d2.At(i, k) - floor
				row[k] = math.Exp(-shifted * beta)
				sum += row[k]
				weighted += shifted * row[k]
			}
			entropy := math.Log(sum) + beta*weighted/sum
			floats.Scale(1/sum, row)

			if math.Abs(entropy-target) < perplexityTolerance {
				break
			}
			if entropy > target {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				beta = (beta + lo) / 2
			}
		}
	})

	p := mat.NewSymDense(n, nil)
	norm := 2 * float64(n)
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			p.SetSym(i, k, math.Max((cond.At(i, k)+cond.At(k, i))/norm, tsneMinProbability))
		}
	}
	return p
}

// klDivergence returns KL(P || Q) with Q given by the unnormalized
// Student-t affinities num and their total sumQ.
func klDivergence(p, num mat.Symmetric, sumQ float64) float64 {
	n := p.SymmetricDim()
	cost := 0.0
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pab := p.At(a, b)
			q := math.Max(num.At(a, b)/sumQ, tsneMinProbability)
			cost += 2 * pab * math.Log(pab/q)
		}
	}
	return cost
}

func centerColumns(y *mat.Dense) {
	n, c := y.Dims()
	mean := make([]float64, c)
	for i := 0; i < n; i++ {
		floats.Add(mean, y.RawRowView(i))
	}
	floats.Scale(-1/float64(n), mean)
	for i := 0; i < n; i++ {
		floats.Add(y.RawRowView(i), mean)
	}
}
