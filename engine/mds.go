package engine

import (
	"math"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// landmarkEigenTolerance is the smallest landmark eigenvalue treated as
// carrying a coordinate.
const landmarkEigenTolerance = 1e-12

func multidimensionalScaling(j *job) (*mat.Dense, error) {
	return classicalScaling(j, squared(distanceMatrix(j)))
}

func landmarkMultidimensionalScaling(j *job) (*mat.Dense, error) {
	n := j.n()
	landmarks := landmarkIndices(j, n)
	dist := j.access.Distance()

	toLandmarks := mat.NewDense(n, len(landmarks), nil)
	for i := 0; i < n; i++ {
		for l, idx := range landmarks {
			d := dist.Distance(i, idx)
			toLandmarks.Set(i, l, d*d)
		}
	}
	return triangulate(j, landmarkBlock(toLandmarks, landmarks), toLandmarks)
}

// classicalScaling embeds the squared distances d2 by double centering and
// keeping the top eigenpairs of the shifted Gram matrix.
func classicalScaling(j *job, d2 mat.Symmetric) (*mat.Dense, error) {
	vals, vecs, err := topEigen(j, shiftedGram(j, d2), j.dim)
	if err != nil {
		return nil, err
	}
	n := d2.SymmetricDim()
	out := mat.NewDense(n, j.dim, nil)
	for c, v := range vals {
		s := math.Sqrt(math.Max(v, 0))
		for i := 0; i < n; i++ {
			out.Set(i, c, vecs.At(i, c)*s)
		}
	}
	return out, nil
}

// landmarkIndices picks ceil(ratio * n) samples evenly spaced over the input
// order, and never fewer than target_dimension + 1.
func landmarkIndices(j *job, n int) []int {
	ratio := j.bag.Float(manifold.ParamLandmarkRatio, 0.5)
	m := int(math.Ceil(ratio * float64(n)))
	if m < j.dim+1 {
		m = j.dim + 1
	}
	if m > n {
		m = n
	}
	idx := make([]int, m)
	for l := range idx {
		idx[l] = l * n / m
	}
	j.logger.Debug("selected landmarks", log.LandmarksKey, m)
	return idx
}

// landmarkBlock extracts the landmark-to-landmark block of toLandmarks.
func landmarkBlock(toLandmarks *mat.Dense, landmarks []int) *mat.SymDense {
	m := len(landmarks)
	out := mat.NewSymDense(m, nil)
	for a := 0; a < m; a++ {
		for b := a; b < m; b++ {
			out.SetSym(a, b, 0.5*(toLandmarks.At(landmarks[a], b)+toLandmarks.At(landmarks[b], a)))
		}
	}
	return out
}

// triangulate runs classical scaling on the landmarks and places every
// sample from its squared distances to them:
// y = -1/2 L# (delta - mean delta).
func triangulate(j *job, landmarkD2 *mat.SymDense, toLandmarks *mat.Dense) (*mat.Dense, error) {
	m := landmarkD2.SymmetricDim()
	vals, vecs, err := topEigen(j, shiftedGram(j, landmarkD2), j.dim)
	if err != nil {
		return nil, err
	}

	colMean := make([]float64, m)
	for a := 0; a < m; a++ {
		for b := 0; b < m; b++ {
			colMean[b] += landmarkD2.At(a, b) / float64(m)
		}
	}

	pinv := mat.NewDense(j.dim, m, nil)
	for c, v := range vals {
		if v <= landmarkEigenTolerance {
			continue
		}
		s := 1 / math.Sqrt(v)
		for l := 0; l < m; l++ {
			pinv.Set(c, l, vecs.At(l, c)*s)
		}
	}

	n, _ := toLandmarks.Dims()
	centered := mat.NewDense(n, m, nil)
	centered.Apply(func(_, l int, v float64) float64 {
		return -0.5 * (v - colMean[l])
	}, toLandmarks)

	out := mat.NewDense(n, j.dim, nil)
	out.Mul(centered, pinv.T())
	return out, nil
}

// shiftedGram double centers d2 and adds eigenshift to the diagonal.
func shiftedGram(j *job, d2 mat.Symmetric) *mat.SymDense {
	b := doubleCenter(d2)
	addDiagonal(b, j.eigenshift())
	return b
}

// doubleCenter returns -1/2 J d2 J with J the centering matrix.
func doubleCenter(d2 mat.Symmetric) *mat.SymDense {
	n := d2.SymmetricDim()
	rowMean := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			rowMean[i] += d2.At(i, k)
		}
		total += rowMean[i]
		rowMean[i] /= float64(n)
	}
	total /= float64(n * n)

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			b.SetSym(i, k, -0.5*(d2.At(i, k)-rowMean[i]-rowMean[k]+total))
		}
	}
	return b
}

// squared returns the element-wise square of d.
func squared(d mat.Symmetric) *mat.SymDense {
	n := d.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := i; k < n; k++ {
			v := d.At(i, k)
			out.SetSym(i, k, v*v)
		}
	}
	return out
}
