package forecast

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

// defaultBlockRows is the number of trials materialized per matrix block.
const defaultBlockRows = 128

// simulateTrial runs one path step by step and returns the 1-based step at
// which cumulative demand first reaches stock, or 0 if it never does within
// steps. Reference implementation for firstCrossing.
func simulateTrial(stock, steps int, draw func() int) int {
	remaining := stock
	for k := 1; k <= steps; k++ {
		remaining -= draw()
		if remaining <= 0 {
			return k
		}
	}
	return 0
}

// fillBlock writes rows*steps demand draws into m, row major.
func fillBlock(m []int64, d inventory.DemandRange, r *rand.Rand) {
	for i := range m {
		m[i] = int64(d.Draw(r))
	}
}

// firstCrossing prefix-sums row in place and returns the 1-based index of
// the first cumulative value >= stock, or 0 if none reaches it.
func firstCrossing(row []int64, stock int64) int {
	var cum int64
	for i, v := range row {
		cum += v
		row[i] = cum
	}
	for i, c := range row {
		if c >= stock {
			return i + 1
		}
	}
	return 0
}

// simulateBlock fills one block of rows from r and writes each row's
// depletion step into out. Non-depleting rows get steps.
func simulateBlock(out []int, stock, steps int, d inventory.DemandRange, r *rand.Rand) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("simulation panic: %v", p)
		}
	}()

	m := make([]int64, len(out)*steps)
	fillBlock(m, d, r)
	for i := range out {
		k := firstCrossing(m[i*steps:(i+1)*steps], int64(stock))
		if k == 0 {
			k = steps
		}
		out[i] = k
	}
	return nil
}

// simulate returns the depletion step of every trial, non-depleting trials
// reporting p.Steps(). Blocks run concurrently, each with its own generator
// seeded from rng up front, so the result depends only on rng's state.
func simulate(ctx context.Context, stock int, p Params, blockRows int, rng *rand.Rand) ([]int, error) {
	steps := p.Steps()
	results := make([]int, p.Trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for start := 0; start < p.Trials; start += blockRows {
		end := min(start+blockRows, p.Trials)
		block := results[start:end]
		seed1, seed2 := rng.Uint64(), rng.Uint64()

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(seed1, seed2))
			return simulateBlock(block, stock, steps, p.Demand, r)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// median follows numpy: the mean of the two middle values for even counts.
// vals is sorted in place. Panics on an empty slice.
func median(vals []int) float64 {
	slices.Sort(vals)
	n := len(vals)
	if n%2 == 1 {
		return float64(vals[n/2])
	}
	return (float64(vals[n/2-1]) + float64(vals[n/2])) / 2
}
