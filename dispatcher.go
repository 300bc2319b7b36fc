package workrange

import (
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/workrange/metrics"
)

// instruments are the metrics recorded by a dispatch.
type instruments struct {
	dispatches metrics.Counter
	ranges     metrics.Counter
	workspaces metrics.Counter
	failures   metrics.Counter
	active     metrics.UpDownCounter
	duration   metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		dispatches: p.Counter(metrics.NameDispatches, metrics.WithDescription("dispatch calls")),
		ranges:     p.Counter(metrics.NameRanges, metrics.WithDescription("ranges executed")),
		workspaces: p.Counter(metrics.NameWorkspaces, metrics.WithDescription("workspaces created")),
		failures:   p.Counter(metrics.NameFailures, metrics.WithDescription("worker failures captured")),
		active:     p.UpDownCounter(metrics.NameActiveWorkers, metrics.WithDescription("workers currently running")),
		duration: p.Histogram(metrics.NameDispatchSeconds,
			metrics.WithDescription("dispatch wall time"), metrics.WithUnit("seconds")),
	}
}

// dispatch is the state of a single Parallelize call. It is discarded when the call returns.
type dispatch struct {
	cfg     *config
	log     *log.Logger
	inst    instruments
	started time.Time
}

func newDispatch(cfg *config, variant string, numWorkers int, numTasks any) *dispatch {
	logger := cfg.Logger
	if logger.GetLevel() <= log.DebugLevel {
		logger = logger.With("call", uuid.NewString())
	}
	logger.Debug("dispatch", "variant", variant, "workers", numWorkers, "tasks", numTasks,
		"strategy", cfg.Strategy, "capture", cfg.Capture)
	return &dispatch{cfg: cfg, log: logger, inst: newInstruments(cfg.Metrics), started: time.Now()}
}

// finish records the outcome of the call and returns err unchanged.
func (d *dispatch) finish(err error) error {
	d.inst.dispatches.Add(1)
	d.inst.duration.Record(time.Since(d.started).Seconds())
	if err != nil {
		d.log.Debug("dispatch failed", "err", err)
	} else {
		d.log.Debug("dispatch done")
	}
	return err
}

// failed accounts for one captured worker failure.
func (d *dispatch) failed(worker int, err error) {
	d.inst.failures.Add(1)
	phase, _ := ExtractPhase(err)
	d.log.Warn("worker failed", "worker", worker, "phase", phase, "err", err)
}

// strategy resolves Auto for the given number of effective workers.
func (d *dispatch) strategy(workers int) Strategy {
	if workers == 1 {
		return Sequential
	}
	if d.cfg.Strategy == Auto {
		return Threads
	}
	return d.cfg.Strategy
}

func (d *dispatch) procs() int {
	if d.cfg.Procs > 0 {
		return d.cfg.Procs
	}
	return runtime.GOMAXPROCS(0)
}

// execute runs job once for every worker in [0, workers) and returns the failure of the
// lowest failing worker id after all of them have finished. A failing worker never stops the
// others.
func (d *dispatch) execute(workers int, job func(w int) error) error {
	failures := NewFailures(workers)
	runOne := func(w int) {
		d.inst.active.Add(1)
		defer d.inst.active.Add(-1)
		if err := job(w); err != nil {
			failures.Record(w, err)
			d.failed(w, err)
		}
	}

	switch s := d.strategy(workers); s {
	case Sequential:
		for w := 0; w < workers; w++ {
			runOne(w)
		}

	case Threads:
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func(w int) {
				defer wg.Done()
				runOne(w)
			}(w)
		}
		wg.Wait()

	case DataParallel:
		if d.cfg.Executor != nil {
			d.cfg.Executor.ParallelFor(workers, runOne)
			break
		}
		var g errgroup.Group
		g.SetLimit(d.procs())
		for w := 0; w < workers; w++ {
			g.Go(func() error {
				runOne(w)
				return nil
			})
		}
		_ = g.Wait() // jobs report through failures

	default:
		panic("workrange: unresolved strategy " + s.String())
	}

	return failures.Err()
}
