package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func line(n int, scale float64) *mat.Dense {
	m := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, scale*float64(i))
	}
	return m
}

// circle places n points on the unit circle in the xy-plane, lifted by z.
func circle(n int) *mat.Dense {
	m := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		s := 2 * math.Pi * float64(i) / float64(n)
		m.SetRow(i, []float64{math.Cos(s), math.Sin(s), 0.5})
	}
	return m
}

func TestIdenticalEmbedding(t *testing.T) {
	x := circle(12)
	q, err := Evaluate(x, x, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, q.Stress, 1e-12)
	assert.InDelta(t, 0.0, q.ResidualVariance, 1e-12)
	assert.InDelta(t, 1.0, q.Trustworthiness, 1e-12)
	assert.InDelta(t, 1.0, q.Continuity, 1e-12)
	assert.Equal(t, 3, q.Neighbors)
}

func TestScaledEmbedding(t *testing.T) {
	s, err := Stress(line(10, 1), line(10, 2))
	require.NoError(t, err)
	// δ = 2d なので Σ(d-2d)² / Σd² = 1
	assert.InDelta(t, 1.0, s, 1e-12)

	rv, err := ResidualVariance(line(10, 1), line(10, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rv, 1e-12)

	tw, err := Trustworthiness(line(10, 1), line(10, 2), 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tw, 1e-12)
}

func TestShuffledEmbeddingLosesTrust(t *testing.T) {
	x := line(10, 1)
	y := mat.NewDense(10, 1, []float64{0, 9, 1, 8, 2, 7, 3, 6, 4, 5})

	tw, err := Trustworthiness(x, y, 2)
	require.NoError(t, err)
	assert.Less(t, tw, 1.0)

	c, err := Continuity(x, y, 2)
	require.NoError(t, err)
	assert.Less(t, c, 1.0)

	rv, err := ResidualVariance(x, y)
	require.NoError(t, err)
	assert.Greater(t, rv, 0.0)
}

func TestQualityErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"row mismatch", func() error { _, err := Stress(line(5, 1), line(4, 1)); return err }},
		{"single sample", func() error { _, err := Stress(line(1, 1), line(1, 1)); return err }},
		{"coincident input", func() error { _, err := Stress(mat.NewDense(3, 1, nil), line(3, 1)); return err }},
		{"neighbors too large", func() error { _, err := Trustworthiness(line(6, 1), line(6, 1), 3); return err }},
		{"neighbors zero", func() error { _, err := Continuity(line(6, 1), line(6, 1), 0); return err }},
		{"no variance", func() error { _, err := ResidualVariance(line(4, 1), mat.NewDense(4, 1, nil)); return err }},
		{"nil input", func() error { _, err := Evaluate(nil, line(4, 1), 1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.fn())
		})
	}
}
