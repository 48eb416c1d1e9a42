package engine

import (
	"math"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// minLearningRate bounds the decay of the SPE learning rate.
const minLearningRate = 0.01

// stochasticProximity refines a random layout by repeatedly picking a pair
// of samples and moving them towards their target distance. The global
// strategy samples any pair; the local one samples a sample and one of its
// neighbors.
func stochasticProximity(j *job) (*mat.Dense, error) {
	n := j.n()
	cycles := j.bag.Int(manifold.ParamMaxIteration, 100)
	updates := j.bag.Int(manifold.ParamSPENumUpdates, 100)
	tol := j.bag.Float(manifold.ParamSPETolerance, 1e-5)
	global := j.bag.Bool(manifold.ParamSPEGlobalStrategy, false)
	dist := j.access.Distance()

	var nbrs [][]int
	if !global {
		nbrs = nearestNeighbors(distanceMatrix(j), j.neighbors())
	}

	y := mat.NewDense(n, j.dim, nil)
	y.Apply(func(_, _ int, _ float64) float64 { return j.rng.Float64() }, y)

	diff := make([]float64, j.dim)
	lambda := 1.0
	step := 1 / float64(cycles)
	for c := 0; c < cycles; c++ {
		for u := 0; u < updates; u++ {
			a := j.rng.Intn(n)
			var b int
			if global {
				b = j.rng.Intn(n - 1)
				if b >= a {
					b++
				}
			} else {
				b = nbrs[a][j.rng.Intn(len(nbrs[a]))]
			}

			ya, yb := y.RawRowView(a), y.RawRowView(b)
			floats.SubTo(diff, ya, yb)
			current := floats.Norm(diff, 2)
			move := lambda * 0.5 * (dist.Distance(a, b) - current) / (current + tol)
			floats.AddScaled(ya, move, diff)
			floats.AddScaled(yb, -move, diff)
		}
		if err := errors.CheckNumericalStability("SPE coordinates", y.RawMatrix().Data, c); err != nil {
			return nil, j.fail("layout diverged", err)
		}
		lambda = math.Max(lambda-step, minLearningRate)
	}
	return y, nil
}
