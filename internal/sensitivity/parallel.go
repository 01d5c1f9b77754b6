package sensitivity

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// minChunk keeps goroutine overhead below the per-element work for
// small meshes.
const minChunk = 256

// ComputeParallel is Compute with the element map split across workers
// goroutines. Output slots are disjoint per chunk and every worker
// reads the same immutable inputs, so no synchronization beyond the
// final join is needed. Results are bit-identical to Compute.
func ComputeParallel(out, density []float64, dke mat.Matrix, disp []float64, penal float64, nx, ny, workers int) error {
	if err := validate(out, density, dke, disp, nx, ny); err != nil {
		return err
	}
	parallelFor(nx*ny, workers, func(start, end int) {
		elemRange(out, density, dke, disp, penal, ny, start, end)
	})
	return nil
}

// parallelFor executes fn over contiguous chunks of [0, n).
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
