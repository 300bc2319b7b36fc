package workrange

import (
	"github.com/charmbracelet/log"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/workrange/metrics"
)

// config holds dispatch configuration.
type config struct {
	// Strategy selects how worker ranges are executed.
	// Default: Auto
	Strategy Strategy

	// Procs is the number of concurrent execution contexts used by DataParallel.
	// Zero means runtime.GOMAXPROCS(0).
	// Default: 0
	Procs int

	// Executor, when set, runs DataParallel dispatches on a persistent set of goroutines
	// instead of per-call ones.
	Executor *Executor

	// Capture recovers panics raised by callbacks and reports them as errors.
	// Default: true
	Capture bool

	// Scheduler holds an optional Scheduler[T] (stored as any because config is not generic).
	// When set, ParallelizeRange forwards the call to it without partitioning.
	Scheduler any

	// WorkspaceScheduler holds an optional WorkspaceScheduler[T, W].
	WorkspaceScheduler any

	// Metrics receives dispatch instrumentation.
	// Default: metrics.NoopProvider
	Metrics metrics.Provider

	// Logger receives debug and warning records. Default: discards everything.
	Logger *log.Logger
}

// Option configures a dispatch. Options are applied after those installed with SetDefaults.
type Option func(*config) error

// WithStrategy selects the execution strategy.
func WithStrategy(s Strategy) Option {
	return func(cfg *config) error {
		if !s.valid() {
			return errorc.With(ErrInvalidConfig, errorc.String("", s.String()))
		}
		cfg.Strategy = s
		return nil
	}
}

// WithProcs sets the number of concurrent execution contexts used by DataParallel (must be > 0).
func WithProcs(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithProcs requires n > 0"))
		}
		cfg.Procs = n
		return nil
	}
}

// WithExecutor selects the DataParallel strategy running on the given persistent executor.
func WithExecutor(e *Executor) Option {
	return func(cfg *config) error {
		if e == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithExecutor requires a non-nil executor"))
		}
		cfg.Strategy = DataParallel
		cfg.Executor = e
		return nil
	}
}

// WithoutCapture disables panic recovery in callbacks. A panic in a goroutine started by the
// dispatcher then terminates the process; on the sequential path it unwinds into the caller.
// Returned errors are still aggregated.
func WithoutCapture() Option {
	return func(cfg *config) error { cfg.Capture = false; return nil }
}

// WithScheduler replaces partitioning and execution with s. A Scheduler[uint64] serves every
// task index type; any other scheduler must match the index type of the call exactly.
// A range scheduler also serves Parallelize, with workspaces created on first use per worker.
func WithScheduler[T Integer](s Scheduler[T]) Option {
	return func(cfg *config) error {
		if s == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithScheduler requires a non-nil scheduler"))
		}
		cfg.Scheduler = s
		return nil
	}
}

// WithWorkspaceScheduler replaces partitioning and execution of Parallelize with s.
// It takes precedence over a range scheduler for calls with matching types. Calls with other
// types use the range scheduler when one is configured and fail with ErrSchedulerMismatch
// otherwise.
func WithWorkspaceScheduler[T Integer, W any](s WorkspaceScheduler[T, W]) Option {
	return func(cfg *config) error {
		if s == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithWorkspaceScheduler requires a non-nil scheduler"))
		}
		cfg.WorkspaceScheduler = s
		return nil
	}
}

// WithMetrics sets the metrics provider used to instrument dispatches.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithLogger sets the logger receiving dispatch records.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}
