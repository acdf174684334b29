// Package parallel splits row ranges of a matrix computation across
// goroutines. Work is partitioned into contiguous blocks so every row is
// written by exactly one worker and results do not depend on scheduling.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultRowThreshold is the number of rows below which evaluation stays on
// the calling goroutine.
const DefaultRowThreshold = 2048

// Parallelize divides items into one contiguous block per CPU and runs fn on
// each block concurrently.
func Parallelize(items int, fn func(start, end int)) {
	_ = ParallelizeErr(items, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelizeErr is Parallelize for block functions that can fail. The error
// of the lowest failing block is returned.
func ParallelizeErr(items int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	errs := make([]error, numWorkers)
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
		go func(w, s, e int) {
			defer wg.Done()
			errs[w] = fn(s, e)
		}(i, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items is
// at most threshold, and in parallel otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ParallelizeErrWithThreshold is the error-returning form of
// ParallelizeWithThreshold.
func ParallelizeErrWithThreshold(items int, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		if items <= 0 {
			return nil
		}
		return fn(0, items)
	}
	return ParallelizeErr(items, fn)
}
