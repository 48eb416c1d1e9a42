package engine

import (
	"math"
	"sort"

	"github.com/GSawko/shogun/core/parallel"
	"github.com/GSawko/shogun/data"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// parallelThreshold is the number of rows above which per-row work is
// spread across cores.
const parallelThreshold = 64

// distanceMatrix evaluates all pairwise distances of the request's data.
func distanceMatrix(j *job) *mat.SymDense {
	return data.PairwiseDistanceMatrix(j.access.Distance())
}

// nearestNeighbors returns, for every sample, the indices of its k closest
// other samples in increasing distance. Ties are broken by index.
func nearestNeighbors(d mat.Symmetric, k int) [][]int {
	n := d.SymmetricDim()
	out := make([][]int, n)
	parallel.Rows(n, parallelThreshold, func(i int) {
		idx := make([]int, 0, n-1)
		for other := 0; other < n; other++ {
			if other != i {
				idx = append(idx, other)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return d.At(i, idx[a]) < d.At(i, idx[b])
		})
		if k < len(idx) {
			idx = idx[:k]
		}
		out[i] = idx
	})
	return out
}

// neighborGraph builds the symmetric k-nearest-neighbor graph weighted by
// distance.
func neighborGraph(d mat.Symmetric, nbrs [][]int) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range nbrs {
		g.AddNode(simple.Node(i))
	}
	for i, row := range nbrs {
		for _, other := range row {
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(other), d.At(i, other)))
		}
	}
	return g
}

// requireConnected fails when the neighbor graph has more than one
// connected component.
func requireConnected(j *job, g *simple.WeightedUndirectedGraph) error {
	components := topo.ConnectedComponents(g)
	if len(components) > 1 {
		j.logger.Warn("neighborhood graph is disconnected",
			"components", len(components),
			log.NeighborsKey, j.neighbors(),
		)
		return j.fail("increase n_neighbors", errors.ErrDisconnectedGraph)
	}
	return nil
}

// geodesics returns the shortest-path lengths from every source to every
// node of g, one row per source.
func geodesics(j *job, g *simple.WeightedUndirectedGraph, sources []int, n int) (*mat.Dense, error) {
	out := mat.NewDense(len(sources), n, nil)
	parallel.Rows(len(sources), 4, func(s int) {
		shortest := path.DijkstraFrom(simple.Node(sources[s]), g)
		for v := 0; v < n; v++ {
			out.Set(s, v, shortest.WeightTo(int64(v)))
		}
	})
	for s := range sources {
		for v := 0; v < n; v++ {
			if math.IsInf(out.At(s, v), 1) {
				return nil, j.fail("no path between samples", errors.ErrDisconnectedGraph)
			}
		}
	}
	return out, nil
}

// heatWeights returns the symmetric affinity exp(-d^2 / width) over the
// neighbor graph. Pairs that are not neighbors have zero affinity.
func heatWeights(d mat.Symmetric, nbrs [][]int, width float64) *mat.SymDense {
	n := d.SymmetricDim()
	w := mat.NewSymDense(n, nil)
	for i, row := range nbrs {
		for _, other := range row {
			dist := d.At(i, other)
			w.SetSym(i, other, math.Exp(-dist*dist/width))
		}
	}
	return w
}

// degrees returns the row sums of w and fails on an isolated vertex.
func degrees(j *job, w mat.Symmetric) ([]float64, error) {
	n := w.SymmetricDim()
	deg := make([]float64, n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			deg[i] += w.At(i, k)
		}
		if deg[i] <= 1e-300 {
			return nil, j.fail("vertex with zero degree; increase gaussian_kernel_width", errors.ErrSingularMatrix)
		}
	}
	return deg, nil
}
