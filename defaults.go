package workrange

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/workrange/metrics"
)

var (
	defaultsMu sync.RWMutex
	defaults   []Option

	discardLogger = log.New(io.Discard)
)

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Strategy: Auto,
		Procs:    0, // runtime.GOMAXPROCS(0)
		Capture:  true,
		Metrics:  metrics.NewNoopProvider(),
		Logger:   discardLogger,
	}
}

// validateConfig checks invariants spanning several options.
func validateConfig(cfg *config) error {
	if !cfg.Strategy.valid() {
		return errorc.With(ErrInvalidConfig, errorc.String("", cfg.Strategy.String()))
	}
	if cfg.Executor != nil && cfg.Strategy != DataParallel {
		return errorc.With(ErrInvalidConfig, errorc.String("", "an executor requires the data-parallel strategy"))
	}
	return nil
}

// newConfig builds the configuration of one call: defaults, then process-wide options, then
// per-call options.
func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()

	defaultsMu.RLock()
	base := defaults
	defaultsMu.RUnlock()

	for _, list := range [][]Option{base, opts} {
		for _, opt := range list {
			if opt == nil {
				continue
			}
			if err := opt(&cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults installs options applied to every subsequent call before its own options.
// It replaces previously installed defaults. A host test suite can use it to substitute the
// whole dispatch mechanism, e.g. with a scheduler from the schedtest package, without
// threading options through library code.
//
// The options are validated once here; an invalid set leaves the current defaults in place.
func SetDefaults(opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return err
	}

	defaultsMu.Lock()
	defaults = append([]Option(nil), opts...)
	defaultsMu.Unlock()
	return nil
}

// ResetDefaults removes options installed with SetDefaults.
func ResetDefaults() {
	defaultsMu.Lock()
	defaults = nil
	defaultsMu.Unlock()
}
