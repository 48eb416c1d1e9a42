package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryItem(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		seen := make([]int32, n)
		Parallelize(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			assert.Equal(t, int32(1), c, "item %d of %d", i, n)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestUpperTriangle(t *testing.T) {
	const n = 50
	buf := make([]float64, n*n)
	UpperTriangle(n, 8, func(i, j int) {
		v := float64(i*n + j)
		buf[i*n+j] = v
		buf[j*n+i] = v
	})
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lo, hi := i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			assert.Equal(t, float64(lo*n+hi), buf[i*n+j])
		}
	}
}
