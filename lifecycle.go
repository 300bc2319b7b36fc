package workrange

import "sync"

// lifecycleCoordinator runs a shutdown sequence exactly once, in order. It doesn't own any
// resource; each step closes or waits on something owned by the caller.
//
// Close() is safe for concurrent calls; every caller returns after the sequence completed.
type lifecycleCoordinator struct {
	steps []func()
	once  sync.Once
}

func newLifecycleCoordinator(steps ...func()) *lifecycleCoordinator {
	return &lifecycleCoordinator{steps: steps}
}

func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		for _, step := range lc.steps {
			if step != nil {
				step()
			}
		}
	})
}
