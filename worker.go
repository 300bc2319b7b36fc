package workrange

import "github.com/ygrebnov/workrange/pool"

// rangeJob returns the job executing worker w's share of p with run.
func rangeJob[T Integer](d *dispatch, p plan[T], run RangeFunc[T]) func(w int) error {
	return func(w int) error {
		r := p.at(w)
		return runRange(d, w, r.Start, r.Length, func() error { return run(w, r.Start, r.Length) })
	}
}

// workspaceJob returns the job acquiring worker w's workspace and executing its share of p.
func workspaceJob[T Integer, W any](
	d *dispatch, p plan[T], slots *pool.Slots[W], run WorkspaceFunc[T, W],
) func(w int) error {
	return func(w int) error {
		ws, err := acquire(d, slots, w)
		if err != nil {
			return err
		}
		r := p.at(w)
		return runRange(d, w, r.Start, r.Length, func() error { return run(w, r.Start, r.Length, ws) })
	}
}

// runRange executes call for the range [start, start+length) of worker w, recovering panics
// when capture is enabled and tagging failures with the worker and range.
func runRange[T Integer](d *dispatch, w int, start, length T, call func() error) error {
	d.inst.ranges.Add(1)
	if err := capture(d.cfg.Capture, call); err != nil {
		return newWorkerError(err, w, PhaseRun, uint64(start), uint64(length))
	}
	return nil
}

// acquire returns worker w's workspace, creating it on first use. Setup failures, including
// panics when capture is enabled, are tagged with PhaseSetup.
func acquire[W any](d *dispatch, slots *pool.Slots[W], w int) (W, error) {
	var ws W
	err := capture(d.cfg.Capture, func() error {
		var err error
		ws, err = slots.Get(w)
		return err
	})
	if err != nil {
		return ws, newWorkerError(err, w, PhaseSetup, 0, 0)
	}
	return ws, nil
}

// workspaceSlots returns n lazily filled workspace slots backed by setup. A nil setup fills
// slots with the zero W.
func workspaceSlots[W any](d *dispatch, n int, setup SetupFunc[W]) *pool.Slots[W] {
	return pool.NewSlots(n, func() (W, error) {
		var ws W
		if setup != nil {
			var err error
			if ws, err = setup(); err != nil {
				return ws, err
			}
		}
		d.inst.workspaces.Add(1)
		return ws, nil
	})
}
