// Package metrics scores how faithfully an embedding preserves the
// structure of its input.
//
// Every score compares the pairwise Euclidean distances of the input rows
// with those of the embedding rows; both matrices must have one row per
// sample, in the same order.
package metrics

import (
	"math"
	"sort"

	"github.com/GSawko/shogun/data"
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Quality は埋め込みの品質指標をまとめたもの
type Quality struct {
	Stress           float64
	ResidualVariance float64
	Trustworthiness  float64
	Continuity       float64
	// Neighbors is the neighborhood size used by Trustworthiness and Continuity.
	Neighbors int
}

// Evaluate computes every score. k is the neighborhood size of the rank
// based scores and must be below n/2.
func Evaluate(high, low mat.Matrix, k int) (Quality, error) {
	dh, dl, err := distances("Evaluate", high, low)
	if err != nil {
		return Quality{}, err
	}
	q := Quality{Neighbors: k}
	if q.Stress, err = stress(dh, dl); err != nil {
		return Quality{}, err
	}
	if q.ResidualVariance, err = residualVariance(dh, dl); err != nil {
		return Quality{}, err
	}
	if q.Trustworthiness, err = trustworthiness("Evaluate", dh, dl, k); err != nil {
		return Quality{}, err
	}
	if q.Continuity, err = trustworthiness("Evaluate", dl, dh, k); err != nil {
		return Quality{}, err
	}
	return q, nil
}

// Stress は Kruskal の stress-1 を計算する
//
//	sqrt( Σ(d_ij - δ_ij)² / Σ d_ij² )
//
// d が入力空間、δ が埋め込み空間の距離。0 が完全に保存された状態。
func Stress(high, low mat.Matrix) (float64, error) {
	dh, dl, err := distances("Stress", high, low)
	if err != nil {
		return 0, err
	}
	return stress(dh, dl)
}

// ResidualVariance returns 1 - R², where R is the linear correlation of the
// input and embedding distances.
func ResidualVariance(high, low mat.Matrix) (float64, error) {
	dh, dl, err := distances("ResidualVariance", high, low)
	if err != nil {
		return 0, err
	}
	return residualVariance(dh, dl)
}

// Trustworthiness は埋め込み空間の k 近傍に入力空間では遠い点が
// 紛れ込んでいないかを測る。1 が最良。
func Trustworthiness(high, low mat.Matrix, k int) (float64, error) {
	dh, dl, err := distances("Trustworthiness", high, low)
	if err != nil {
		return 0, err
	}
	return trustworthiness("Trustworthiness", dh, dl, k)
}

// Continuity is Trustworthiness with the roles of the two spaces swapped:
// it penalizes input neighbors that were pushed apart.
func Continuity(high, low mat.Matrix, k int) (float64, error) {
	dh, dl, err := distances("Continuity", high, low)
	if err != nil {
		return 0, err
	}
	return trustworthiness("Continuity", dl, dh, k)
}

func distances(op string, high, low mat.Matrix) (*mat.SymDense, *mat.SymDense, error) {
	// 入力検証
	if high == nil || low == nil {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}
	n, _ := high.Dims()
	m, _ := low.Dims()
	if n != m {
		return nil, nil, errors.NewDimensionError(op, n, m, 0)
	}
	if n < 2 {
		return nil, nil, errors.NewValueError(op, "at least two samples are required")
	}

	fh, err := data.NewFeatures(high)
	if err != nil {
		return nil, nil, err
	}
	fl, err := data.NewFeatures(low)
	if err != nil {
		return nil, nil, err
	}
	return data.PairwiseDistanceMatrix(data.EuclideanDistance(fh)),
		data.PairwiseDistanceMatrix(data.EuclideanDistance(fl)), nil
}

func stress(dh, dl *mat.SymDense) (float64, error) {
	n := dh.SymmetricDim()
	var num, den float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			diff := dh.At(i, j) - dl.At(i, j)
			num += diff * diff
			den += dh.At(i, j) * dh.At(i, j)
		}
	}
	// すべての入力点が一致している場合
	if den == 0 {
		return 0, errors.Newf("Stress: all input distances are zero")
	}
	return math.Sqrt(num / den), nil
}

func residualVariance(dh, dl *mat.SymDense) (float64, error) {
	x, y := upper(dh), upper(dl)
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, errors.Newf("ResidualVariance: distances have no variance")
	}
	r := stat.Correlation(x, y, nil)
	return 1 - r*r, nil
}

func upper(s *mat.SymDense) []float64 {
	n := s.SymmetricDim()
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, s.At(i, j))
		}
	}
	return out
}

// trustworthiness penalizes points that are among the k nearest neighbors
// in the space of dl without being so in the space of dh, weighted by their
// rank in dh (Venna and Kaski).
func trustworthiness(op string, dh, dl *mat.SymDense, k int) (float64, error) {
	n := dh.SymmetricDim()
	if k < 1 || 2*k >= n {
		return 0, errors.NewValueError(op, "neighborhood size must be in [1, n/2)")
	}

	var penalty float64
	for i := 0; i < n; i++ {
		orderH := neighborOrder(dh, i)
		rank := make([]int, n)
		for r, j := range orderH {
			rank[j] = r + 1
		}
		inH := make(map[int]bool, k)
		for _, j := range orderH[:k] {
			inH[j] = true
		}
		for _, j := range neighborOrder(dl, i)[:k] {
			if !inH[j] {
				penalty += float64(rank[j] - k)
			}
		}
	}

	nf, kf := float64(n), float64(k)
	return 1 - 2/(nf*kf*(2*nf-3*kf-1))*penalty, nil
}

// neighborOrder returns every index except i sorted by distance to i. Ties
// keep index order.
func neighborOrder(d *mat.SymDense, i int) []int {
	n := d.SymmetricDim()
	order := make([]int, 0, n-1)
	for j := 0; j < n; j++ {
		if j != i {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return d.At(i, order[a]) < d.At(i, order[b])
	})
	return order
}
