package workrange

import (
	"fmt"
	"strings"

	"github.com/ygrebnov/errorc"
)

// Strategy is an enumeration of execution strategies. All strategies run the same partition
// and report failures the same way; they differ only in how worker ranges are executed.
type Strategy int

const (
	// Auto runs sequentially when there is a single effective worker and uses Threads
	// otherwise.
	Auto Strategy = iota

	// Sequential runs every worker's range on the calling goroutine, in worker order.
	Sequential

	// Threads starts one goroutine per effective worker and waits for all of them.
	Threads

	// DataParallel runs a parallel-for over worker indices. The number of concurrent
	// execution contexts is decided by WithProcs or WithExecutor, not by the number of
	// workers; every worker index still runs exactly once.
	DataParallel
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Sequential:
		return "sequential"
	case Threads:
		return "threads"
	case DataParallel:
		return "data-parallel"
	default:
		return fmt.Sprintf("invalid strategy: %d", s)
	}
}

func (s Strategy) valid() bool { return s >= Auto && s <= DataParallel }

// ParseStrategy converts a strategy name, as produced by String, to a Strategy.
// An empty name yields Auto.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "sequential", "serial":
		return Sequential, nil
	case "threads", "goroutines":
		return Threads, nil
	case "data-parallel", "dataparallel", "parallel-for":
		return DataParallel, nil
	default:
		return Auto, errorc.With(ErrInvalidConfig, errorc.String("strategy", name))
	}
}
