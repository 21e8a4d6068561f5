package budget

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// benchRows is sized so the benchmark finishes in well under a second on
// commodity CPUs while still amortizing scheduling overhead.
const (
	benchRows = 1 << 16
	benchCols = 64
)

// BenchResult is the outcome of the throughput micro-benchmark.
type BenchResult struct {
	Ops          uint64
	Elapsed      time.Duration
	OpsPerSecond float64
	PerOpSeconds float64
	Checksum     uint64 // prevents the kernels from being optimized away
	Workers      int
}

// Microbench measures per-operation cost with the synthetic prover
// kernels: a linear-congruential arithmetic pass representing field math
// and memory streaming, and a murmur-style mixing pass representing hash
// compression. The batch is split across workers, each worker's slice is
// independent, and all results are awaited before returning — no partial
// measurement is ever consumed.
func Microbench(ctx context.Context, e *Estimator) (BenchResult, error) {
	if err := ctx.Err(); err != nil {
		return BenchResult{}, err
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	cells := benchRows * benchCols
	data := make([]uint64, cells)
	for i := range data {
		data[i] = uint64(i)
	}

	chunk := (cells + workers - 1) / workers
	checksums := make([]uint64, workers)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > cells {
			hi = cells
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			slice := data[lo:hi]
			for p := 0; p < e.Passes; p++ {
				for i, x := range slice {
					slice[i] = proverPass(x)
				}
			}
			for r := 0; r < e.HashRounds; r++ {
				for i, x := range slice {
					slice[i] = hashMix(x)
				}
			}
			var sum uint64
			for _, x := range slice {
				sum += x
			}
			checksums[w] = sum
		}(w, lo, hi)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		return BenchResult{}, err
	}
	if elapsed <= 0 {
		return BenchResult{}, fmt.Errorf("micro-benchmark measured non-positive elapsed time")
	}

	var checksum uint64
	for _, c := range checksums {
		checksum += c
	}

	ops := uint64(cells) * uint64(e.Passes*3+e.HashRounds*5)
	res := BenchResult{
		Ops:          ops,
		Elapsed:      elapsed,
		OpsPerSecond: float64(ops) / elapsed.Seconds(),
		PerOpSeconds: elapsed.Seconds() / float64(ops),
		Checksum:     checksum,
		Workers:      workers,
	}
	return res, nil
}

// proverPass stands in for field arithmetic and memory streaming: one
// 64-bit linear-congruential step.
func proverPass(x uint64) uint64 {
	return x*6364136223846793005 + 1442695040888963407
}

// hashMix stands in for hash compression: a murmur-style avalanche.
func hashMix(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return x
}
