package engine

import (
	"gonum.org/v1/gonum/mat"
)

func isomap(j *job) (*mat.Dense, error) {
	n := j.n()
	d := distanceMatrix(j)
	g := neighborGraph(d, nearestNeighbors(d, j.neighbors()))

	sources := make([]int, n)
	for i := range sources {
		sources[i] = i
	}
	geo, err := geodesics(j, g, sources, n)
	if err != nil {
		return nil, err
	}
	return classicalScaling(j, squared(symmetrize(geo)))
}

// landmarkIsomap runs shortest paths from the landmarks only and places the
// remaining samples by landmark triangulation.
func landmarkIsomap(j *job) (*mat.Dense, error) {
	n := j.n()
	d := distanceMatrix(j)
	g := neighborGraph(d, nearestNeighbors(d, j.neighbors()))

	landmarks := landmarkIndices(j, n)
	geo, err := geodesics(j, g, landmarks, n)
	if err != nil {
		return nil, err
	}

	toLandmarks := mat.NewDense(n, len(landmarks), nil)
	for l := range landmarks {
		for i := 0; i < n; i++ {
			v := geo.At(l, i)
			toLandmarks.Set(i, l, v*v)
		}
	}
	return triangulate(j, landmarkBlock(toLandmarks, landmarks), toLandmarks)
}
