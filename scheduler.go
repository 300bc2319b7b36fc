package workrange

import (
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Scheduler replaces partitioning and execution of a ParallelizeRange call. It must invoke run
// for disjoint ranges that together cover [0, numTasks) exactly once, with worker ids in
// [0, numWorkers), and may hand several ranges to the same worker id in any order.
// It returns after every invocation of run has returned.
//
// run never panics across the scheduler boundary in capture mode: failures come back as
// errors, already tagged with the worker id. A scheduler that keeps going after a failure
// must report the failure of the lowest worker id, which Failures does.
type Scheduler[T Integer] func(numWorkers int, numTasks T, run RangeFunc[T]) error

// WorkspaceScheduler is the Scheduler counterpart for Parallelize. It may call setup any
// number of times but must never use a workspace from two workers at once.
//
// setup is not bound to a worker, so its failures reach the scheduler as they are: a setup
// error or recovered panic is not a *WorkerError and carries no PhaseSetup tag. A scheduler
// that needs the worker in the message must add it itself.
type WorkspaceScheduler[T Integer, W any] func(
	numWorkers int, numTasks T, setup SetupFunc[W], run WorkspaceFunc[T, W],
) error

// rangeScheduler returns the custom scheduler configured for index type T, or nil.
func rangeScheduler[T Integer](cfg *config) (Scheduler[T], error) {
	switch s := cfg.Scheduler.(type) {
	case nil:
		return nil, nil
	case Scheduler[T]:
		return s, nil
	case Scheduler[uint64]:
		return widen[T](s), nil
	default:
		return nil, errorc.With(ErrSchedulerMismatch, errorc.String("scheduler", fmt.Sprintf("%T", s)))
	}
}

// workspaceScheduler returns the custom workspace scheduler configured for T and W, or nil.
// A workspace scheduler of other types is skipped when a range scheduler is configured, so
// the call falls through to it.
func workspaceScheduler[T Integer, W any](cfg *config) (WorkspaceScheduler[T, W], error) {
	switch s := cfg.WorkspaceScheduler.(type) {
	case nil:
		return nil, nil
	case WorkspaceScheduler[T, W]:
		return s, nil
	default:
		if cfg.Scheduler != nil {
			return nil, nil
		}
		return nil, errorc.With(ErrSchedulerMismatch, errorc.String("scheduler", fmt.Sprintf("%T", s)))
	}
}

// widen adapts a uint64 scheduler to T. Indices it produces never exceed numTasks, so
// narrowing them back to T is lossless.
func widen[T Integer](s Scheduler[uint64]) Scheduler[T] {
	return func(numWorkers int, numTasks T, run RangeFunc[T]) error {
		return s(numWorkers, uint64(numTasks), func(worker int, start, length uint64) error {
			return run(worker, T(start), T(length))
		})
	}
}

// forwardRange runs the call through a custom range scheduler.
func forwardRange[T Integer](d *dispatch, s Scheduler[T], numWorkers int, numTasks T, run RangeFunc[T]) error {
	if numTasks <= 0 {
		return nil
	}
	return s(numWorkers, numTasks, func(w int, start, length T) error {
		if err := checkWorker(w, numWorkers); err != nil {
			return reported(d, w, newWorkerError(err, w, PhaseRun, uint64(start), uint64(length)))
		}
		return reported(d, w, runRange(d, w, start, length, func() error { return run(w, start, length) }))
	})
}

// forwardWorkspaceRange serves a Parallelize call with a range-only scheduler. Workspaces are
// created on the first range a worker id receives and reused for later ones.
func forwardWorkspaceRange[T Integer, W any](
	d *dispatch, s Scheduler[T], numWorkers int, numTasks T, setup SetupFunc[W], run WorkspaceFunc[T, W],
) error {
	if numTasks <= 0 {
		return nil
	}
	slots := workspaceSlots(d, max(numWorkers, 1), setup)
	return s(numWorkers, numTasks, func(w int, start, length T) error {
		if err := checkWorker(w, numWorkers); err != nil {
			return reported(d, w, newWorkerError(err, w, PhaseRun, uint64(start), uint64(length)))
		}
		ws, err := acquire(d, slots, w)
		if err != nil {
			return reported(d, w, err)
		}
		return reported(d, w, runRange(d, w, start, length, func() error { return run(w, start, length, ws) }))
	})
}

// forwardWorkspace runs the call through a custom workspace scheduler.
func forwardWorkspace[T Integer, W any](
	d *dispatch, s WorkspaceScheduler[T, W], numWorkers int, numTasks T, setup SetupFunc[W], run WorkspaceFunc[T, W],
) error {
	if numTasks <= 0 {
		return nil
	}
	guardedSetup := func() (W, error) {
		var ws W
		err := capture(d.cfg.Capture, func() error {
			if setup == nil {
				return nil
			}
			var err error
			ws, err = setup()
			return err
		})
		if err == nil {
			d.inst.workspaces.Add(1)
		}
		return ws, err
	}
	return s(numWorkers, numTasks, guardedSetup, func(w int, start, length T, ws W) error {
		if err := checkWorker(w, numWorkers); err != nil {
			return reported(d, w, newWorkerError(err, w, PhaseRun, uint64(start), uint64(length)))
		}
		return reported(d, w, runRange(d, w, start, length, func() error { return run(w, start, length, ws) }))
	})
}

func checkWorker(w, numWorkers int) error {
	if w < 0 || w >= max(numWorkers, 1) {
		return errorc.With(ErrWorkerOutOfRange, errorc.String("worker", fmt.Sprint(w)))
	}
	return nil
}

// reported accounts for a failure returned to a custom scheduler.
func reported(d *dispatch, w int, err error) error {
	if err != nil {
		d.failed(w, err)
	}
	return err
}
