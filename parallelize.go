package workrange

import "github.com/ygrebnov/errorc"

// RangeFunc processes the tasks [start, start+length) on behalf of worker.
type RangeFunc[T Integer] func(worker int, start, length T) error

// SetupFunc creates a worker's workspace.
type SetupFunc[W any] func() (W, error)

// WorkspaceFunc processes the tasks [start, start+length) on behalf of worker, using the
// worker's own workspace ws.
type WorkspaceFunc[T Integer, W any] func(worker int, start, length T, ws W) error

// Parallelize partitions [0, numTasks) across numWorkers and calls run once per non-empty
// range. Each worker that receives a range first obtains its workspace from setup; a nil
// setup yields the zero W. Workspaces are passed by value, so W is usually a pointer type.
//
// Parallelize returns after every worker finished. If any setup or run call failed, it
// returns the failure of the lowest worker id; the other workers are not interrupted and
// their side effects are kept. No callback is invoked and no workspace is created when
// numTasks <= 0.
func Parallelize[T Integer, W any](
	numWorkers int,
	numTasks T,
	setup SetupFunc[W],
	run WorkspaceFunc[T, W],
	opts ...Option,
) error {
	if run == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "Parallelize requires a non-nil run function"))
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	ws, err := workspaceScheduler[T, W](cfg)
	if err != nil {
		return err
	}
	if ws != nil {
		d := newDispatch(cfg, "workspace", numWorkers, numTasks)
		return d.finish(forwardWorkspace(d, ws, numWorkers, numTasks, setup, run))
	}
	rs, err := rangeScheduler[T](cfg)
	if err != nil {
		return err
	}

	d := newDispatch(cfg, "workspace", numWorkers, numTasks)
	if rs != nil {
		return d.finish(forwardWorkspaceRange(d, rs, numWorkers, numTasks, setup, run))
	}

	p := newPlan(numWorkers, numTasks)
	if p.workers == 0 {
		return d.finish(nil)
	}
	slots := workspaceSlots(d, p.workers, setup)
	return d.finish(d.execute(p.workers, workspaceJob(d, p, slots, run)))
}

// ParallelizeRange is Parallelize for workers that need no workspace.
func ParallelizeRange[T Integer](numWorkers int, numTasks T, run RangeFunc[T], opts ...Option) error {
	if run == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "ParallelizeRange requires a non-nil run function"))
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	rs, err := rangeScheduler[T](cfg)
	if err != nil {
		return err
	}

	d := newDispatch(cfg, "range", numWorkers, numTasks)
	if rs != nil {
		return d.finish(forwardRange(d, rs, numWorkers, numTasks, run))
	}

	p := newPlan(numWorkers, numTasks)
	if p.workers == 0 {
		return d.finish(nil)
	}
	return d.finish(d.execute(p.workers, rangeJob(d, p, run)))
}

// ParallelizeSimple runs run(task) for every task in [0, numTasks), one worker per task.
func ParallelizeSimple(numTasks int, run func(task int) error, opts ...Option) error {
	if run == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "ParallelizeSimple requires a non-nil run function"))
	}
	return ParallelizeRange(numTasks, numTasks, func(_ int, start, length int) error {
		for task := start; task < start+length; task++ {
			if err := run(task); err != nil {
				return err
			}
		}
		return nil
	}, opts...)
}
