// Package workerpool fans a scenario range out across a fixed number
// of parallel workers and reduces their per-scenario outputs back into
// scenario-index order, per spec.md §4.6.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rgehrsitz/nslv/internal/calculation"
	"github.com/rgehrsitz/nslv/internal/domain"
)

// DefaultMaxWorkers caps the pool size, whether the worker count is
// supplied by the caller or defaulted.
const DefaultMaxWorkers = 64

// Chunk is the contiguous scenario index range assigned to one worker.
type Chunk struct {
	WorkerIndex int
	Start       int
	Len         int
}

// Partition splits the scenario index range [0, s) into workerCount
// contiguous chunks whose sizes differ by at most 1, remainder
// distributed to the first s%workerCount workers, per spec.md §4.6.
// An empty range (s <= 0) yields no chunks.
func Partition(s, workerCount int) []Chunk {
	if s <= 0 {
		return nil
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > s && s > 0 {
		workerCount = s
	}
	chunks := make([]Chunk, 0, workerCount)
	base := s / workerCount
	rem := s % workerCount
	start := 0
	for w := 0; w < workerCount; w++ {
		size := base
		if w < rem {
			size++
		}
		chunks = append(chunks, Chunk{WorkerIndex: w, Start: start, Len: size})
		start += size
	}
	return chunks
}

// Result is one worker's outcome: its chunk and the per-scenario NPVs
// for its chunk's scenario sub-range, in scenario-index order.
type Result struct {
	Chunk Chunk
	NPVs  []float64
	Err   error
}

// Run fans workerCount workers out across scenarios.Size() scenarios,
// each invoking calculation.ValuateChunk over its contiguous chunk, and
// concatenates their slabs in worker-index order so the result
// reproduces scenario order [0, S) (spec.md §4.6's ordering guarantee).
// workerCount <= 0 defaults to runtime.GOMAXPROCS(0), capped at DefaultMaxWorkers.
func Run(ctx context.Context, portfolio []domain.Policy, tables calculation.Tables, scenarios domain.ScenarioSet, m calculation.Multipliers, workerCount int) ([]float64, error) {
	s := scenarios.Size()
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	if workerCount > DefaultMaxWorkers {
		workerCount = DefaultMaxWorkers
	}
	if s == 0 {
		return nil, nil
	}

	chunks := Partition(s, workerCount)
	results := make([]Result, len(chunks))

	runChunk := func(c Chunk) Result {
		indices := make([]int, c.Len)
		for i := range indices {
			indices[i] = c.Start + i
		}
		npvs, err := calculation.ValuateChunk(ctx, portfolio, tables, scenarios, indices, m)
		return Result{Chunk: c, NPVs: npvs, Err: err}
	}

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c Chunk) {
			defer wg.Done()
			res := runChunk(c)
			if res.Err != nil {
				// retry this worker's chunk once before giving up, per
				// the pool's single-retry failure policy.
				res = runChunk(c)
			}
			results[i] = res
		}(i, c)
	}
	wg.Wait()

	out := make([]float64, s)
	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("worker %d failed after retry: %w", res.Chunk.WorkerIndex, res.Err)
		}
		copy(out[res.Chunk.Start:res.Chunk.Start+res.Chunk.Len], res.NPVs)
	}
	return out, nil
}
