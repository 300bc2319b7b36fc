// Package schedtest provides a deliberately unhelpful scheduler for testing code built on
// workrange.
//
// The scheduler cuts the tasks into more intervals than there are workers, runs them in a
// shuffled order and hands each one to a randomly chosen worker id. A worker id may receive
// several non-adjacent ranges, out of order, and some ids receive nothing. Code that assumes
// one range per worker, or ranges in ascending order, breaks under it.
//
// Install it for a whole test binary with
//
//	workrange.SetDefaults(workrange.WithScheduler(schedtest.Adversarial[uint64](schedtest.DefaultScaling)))
//
// which serves every task index type.
package schedtest

import (
	"math"
	"math/rand/v2"

	"github.com/ygrebnov/workrange"
)

// DefaultScaling is the default ratio of intervals to workers.
const DefaultScaling = 1.5

// Run splits [0, numTasks) into about numWorkers*scaling intervals and calls run for each of
// them, in shuffled order, with a pseudo-random worker id in [0, numWorkers). A scaling <= 0
// yields a single interval. The order and the worker ids depend only on the interval count
// and numTasks, so a failing run can be replayed.
//
// Every interval runs even after a failure; Run returns the failure of the lowest worker id.
func Run[T workrange.Integer](numWorkers int, numTasks T, run workrange.RangeFunc[T], scaling float64) error {
	if numTasks <= 0 {
		return nil
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	total := uint64(numTasks)
	intervals := uint64(1)
	if n := float64(numWorkers)*scaling + 0.5; n >= 1 {
		intervals = uint64(min(n, math.MaxInt32))
	}
	intervals = min(intervals, total)
	size := total/intervals + min(total%intervals, 1)

	order := make([]uint64, intervals)
	for i := range order {
		order[i] = uint64(i)
	}
	rng := rand.New(rand.NewPCG(intervals+total, 0))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	failures := workrange.NewFailures(numWorkers)
	for _, i := range order {
		start := i * size
		if start >= total {
			continue
		}
		length := min(total-start, size)
		worker := rng.IntN(numWorkers)
		failures.Record(worker, run(worker, T(start), T(length)))
	}
	return failures.Err()
}

// Adversarial returns Run with a fixed scaling, as a workrange.Scheduler.
func Adversarial[T workrange.Integer](scaling float64) workrange.Scheduler[T] {
	return func(numWorkers int, numTasks T, run workrange.RangeFunc[T]) error {
		return Run(numWorkers, numTasks, run, scaling)
	}
}
