package workrange

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Executor is a persistent team of goroutines that runs parallel-for loops, reused across
// many dispatches. Use it with WithExecutor to avoid starting goroutines on every call.
//
// The number of goroutines is fixed at construction and is independent of the number of
// workers a dispatch asks for; ParallelFor still runs every index exactly once.
type Executor struct {
	procs int
	work  chan func() // unbuffered: a send succeeds only when a team goroutine is idle

	mu     sync.RWMutex // orders sends on work against Close
	closed bool
	team   sync.WaitGroup

	lc *lifecycleCoordinator
}

// NewExecutor starts an executor with procs goroutines. Values <= 0 select
// runtime.GOMAXPROCS(0).
func NewExecutor(procs int) *Executor {
	if procs <= 0 {
		procs = runtime.GOMAXPROCS(0)
	}
	e := &Executor{procs: procs, work: make(chan func())}
	e.team.Add(procs)
	for i := 0; i < procs; i++ {
		go e.loop()
	}
	e.lc = newLifecycleCoordinator(
		func() {
			e.mu.Lock()
			e.closed = true
			close(e.work)
			e.mu.Unlock()
		},
		e.team.Wait,
	)
	return e
}

func (e *Executor) loop() {
	defer e.team.Done()
	for fn := range e.work {
		fn()
	}
}

// Procs returns the number of goroutines in the team.
func (e *Executor) Procs() int { return e.procs }

// Close stops the team after pending loops finish. It is idempotent. After Close,
// ParallelFor runs sequentially on the calling goroutine.
func (e *Executor) Close() { e.lc.Close() }

// ParallelFor calls fn(i) for every i in [0, n) and returns when all calls have returned.
// Up to min(Procs(), n) calls run concurrently; the calling goroutine takes part, so nested
// loops on the same executor cannot starve.
func (e *Executor) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	var next atomic.Int64
	drain := func() {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			fn(i)
		}
	}

	var done sync.WaitGroup
	helpers := min(e.procs, n) - 1

	e.mu.RLock()
	if !e.closed {
	post:
		for ; helpers > 0; helpers-- {
			done.Add(1)
			select {
			case e.work <- func() { defer done.Done(); drain() }:
			default:
				// the team is busy; the caller picks up the slack
				done.Done()
				break post
			}
		}
	}
	e.mu.RUnlock()

	drain()
	done.Wait()
}
