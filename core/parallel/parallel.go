// Package parallel splits index ranges across CPU cores.
//
// Callers must only write to disjoint parts of their output from fn; the
// kernel package uses it to fill independent rows of a gram matrix.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the work size below which ParallelizeWithThreshold
// stays on the calling goroutine.
const DefaultThreshold = 1 << 14

// Parallelize divides items into contiguous ranges, one per CPU core, and runs
// fn(start, end) for each range concurrently. It returns when all ranges are done.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
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

// ParallelizeWithThreshold runs fn(0, items) sequentially when work <= threshold,
// and otherwise parallelizes over items. work lets callers weigh each item, e.g.
// rows × cols × features for a gram matrix.
func ParallelizeWithThreshold(items, work, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if work <= threshold || items == 1 {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
