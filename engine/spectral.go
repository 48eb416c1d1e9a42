package engine

import (
	"math"

	"github.com/GSawko/shogun/manifold"
	"gonum.org/v1/gonum/mat"
)

// laplacianEigenmaps embeds with the generalized eigenvectors of the graph
// Laplacian of the heat-kernel neighbor graph, skipping the constant one.
func laplacianEigenmaps(j *job) (*mat.Dense, error) {
	d := distanceMatrix(j)
	nbrs := nearestNeighbors(d, j.neighbors())
	if err := requireConnected(j, neighborGraph(d, nbrs)); err != nil {
		return nil, err
	}

	w := heatWeights(d, nbrs, j.width())
	deg, err := degrees(j, w)
	if err != nil {
		return nil, err
	}

	// L = I - D^-1/2 W D^-1/2
	n := len(deg)
	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		lap.SetSym(i, i, 1)
		for k := i; k < n; k++ {
			if v := w.At(i, k); v != 0 {
				lap.SetSym(i, k, lap.At(i, k)-v/math.Sqrt(deg[i]*deg[k]))
			}
		}
	}
	addDiagonal(lap, j.eigenshift())

	u, err := bottomEigenvectors(j, lap, 1)
	if err != nil {
		return nil, err
	}
	u.Apply(func(i, _ int, v float64) float64 {
		return v / math.Sqrt(deg[i])
	}, u)
	return u, nil
}

// diffusionMap builds a Gaussian affinity over the kernel-induced
// distances, normalizes away the sampling density and scales the leading
// non-trivial eigenvectors by their eigenvalues raised to n_timesteps.
func diffusionMap(j *job) (*mat.Dense, error) {
	d := distanceMatrix(j)
	n := d.SymmetricDim()
	width := j.width()
	steps := float64(j.bag.Int(manifold.ParamTimesteps, 1))

	w := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			v := d.At(i, k)
			w.SetSym(i, k, math.Exp(-v*v/width))
		}
	}

	density, err := degrees(j, w)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			w.SetSym(i, k, w.At(i, k)/(density[i]*density[k]))
		}
	}

	q, err := degrees(j, w)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			w.SetSym(i, k, w.At(i, k)/math.Sqrt(q[i]*q[k]))
		}
	}

	vals, vecs, err := topEigen(j, w, j.dim+1)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, j.dim, nil)
	for c := 0; c < j.dim; c++ {
		scale := math.Pow(math.Max(vals[c+1], 0), steps)
		for i := 0; i < n; i++ {
			out.Set(i, c, scale*vecs.At(i, c+1)/math.Sqrt(q[i]))
		}
	}
	return out, nil
}

// localityPreserving is the linear approximation of Laplacian eigenmaps:
// X^T L X p = l X^T D X p.
func localityPreserving(j *job) (*mat.Dense, error) {
	x, err := centeredFeatures(j)
	if err != nil {
		return nil, err
	}
	d := distanceMatrix(j)
	nbrs := nearestNeighbors(d, j.neighbors())
	w := heatWeights(d, nbrs, j.width())
	deg, err := degrees(j, w)
	if err != nil {
		return nil, err
	}

	n := len(deg)
	lap := mat.NewSymDense(n, nil)
	dm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		dm.SetSym(i, i, deg[i])
		for k := i; k < n; k++ {
			v := -w.At(i, k)
			if i == k {
				v += deg[i]
			}
			lap.SetSym(i, k, v)
		}
	}
	return linearProjection(j, x, lap, dm)
}
