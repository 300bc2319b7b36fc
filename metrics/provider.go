// Package metrics defines the instrumentation surface used by workrange dispatches, with an
// in-memory provider, a no-op provider and a Prometheus-backed provider.
package metrics

// Instrument names recorded by every dispatch.
const (
	NameDispatches      = "workrange_dispatches_total"
	NameRanges          = "workrange_ranges_total"
	NameWorkspaces      = "workrange_workspaces_total"
	NameFailures        = "workrange_failures_total"
	NameActiveWorkers   = "workrange_active_workers"
	NameDispatchSeconds = "workrange_dispatch_seconds"
)

// Provider constructs instruments used to record metrics.
// Implementations must be safe for concurrent use and return the same instrument for the
// same name.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that can move up or down (e.g., workers currently running).
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of float64 measurements (e.g., durations in seconds).
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries optional instrument metadata. It's advisory only.
type InstrumentConfig struct {
	Description string
	Unit        string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument (e.g., "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
