// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items into contiguous ranges, one per CPU core, and
// runs fn on each range concurrently. It returns when all ranges are done.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items
// is at or below threshold, and through Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// Rows calls fn(i) for every row index in [0, n). Rows are distributed
// across workers once n exceeds threshold; fn must only write state owned
// by row i.
func Rows(n, threshold int, fn func(i int)) {
	ParallelizeWithThreshold(n, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// UpperTriangle calls fn(i, j) for every pair i <= j < n. Work is split by
// row, so fn may write entries (i, j) and (j, i) of a shared symmetric
// buffer without locking.
func UpperTriangle(n, threshold int, fn func(i, j int)) {
	Rows(n, threshold, func(i int) {
		for j := i; j < n; j++ {
			fn(i, j)
		}
	})
}
