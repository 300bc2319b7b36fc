package workrange

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workrange/metrics"
)

const unassigned = -1

// strategyCases lists every built-in way of executing a partition.
func strategyCases(t *testing.T) map[string][]Option {
	e := NewExecutor(3)
	t.Cleanup(e.Close)
	return map[string][]Option{
		"auto":                 nil,
		"sequential":           {WithStrategy(Sequential)},
		"threads":              {WithStrategy(Threads)},
		"data-parallel":        {WithStrategy(DataParallel)},
		"data-parallel 1 proc": {WithStrategy(DataParallel), WithProcs(1)},
		"data-parallel 2 proc": {WithStrategy(DataParallel), WithProcs(2)},
		"executor":             {WithExecutor(e)},
	}
}

func newAssignments(n int) []int {
	a := make([]int, n)
	for i := range a {
		a[i] = unassigned
	}
	return a
}

func fill(a []int, worker, start, length int) {
	for i := start; i < start+length; i++ {
		a[i] = worker
	}
}

func TestParallelizeRange_CoversEveryTask(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			for _, numWorkers := range []int{0, 1, 2, 3, 4, 5, 7, 10, 11, 2000} {
				assignments := newAssignments(1000)
				err := ParallelizeRange(numWorkers, len(assignments), func(w, start, length int) error {
					fill(assignments, w, start, length)
					return nil
				}, opts...)
				require.NoError(t, err)

				want := newAssignments(1000)
				for _, r := range Partition(numWorkers, 1000) {
					fill(want, r.Worker, int(r.Start), int(r.Length))
				}
				require.Equal(t, want, assignments, "workers=%d", numWorkers)
			}
		})
	}
}

func TestParallelizeRange_NoTasks(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			for _, numTasks := range []int{0, -5} {
				err := ParallelizeRange(10, numTasks, func(int, int, int) error {
					calls.Add(1)
					return nil
				}, opts...)
				require.NoError(t, err)
			}
			require.Zero(t, calls.Load())
		})
	}
}

func TestParallelizeRange_SmallIntegers(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			const numTasks = uint8(math.MaxUint8)
			assignments := newAssignments(int(numTasks))
			err := ParallelizeRange(10, numTasks, func(w int, start, length uint8) error {
				fill(assignments, w, int(start), int(length))
				return nil
			}, opts...)
			require.NoError(t, err)
			for _, a := range assignments {
				require.True(t, a >= 0 && a < 10)
			}
		})
	}
}

func TestParallelizeRange_ReturnsLowestWorkerFailure(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			var ran sync.Map
			err := ParallelizeRange(4, 100, func(w, _, _ int) error {
				ran.Store(w, true)
				if w == 1 || w == 3 {
					return fmt.Errorf("WHEE from %d", w)
				}
				return nil
			}, opts...)

			require.EqualError(t, err, "WHEE from 1")
			worker, ok := ExtractWorker(err)
			require.True(t, ok)
			require.Equal(t, 1, worker)

			for w := 0; w < 4; w++ {
				_, ok := ran.Load(w)
				require.True(t, ok, "worker %d did not run", w)
			}
		})
	}
}

func TestParallelizeRange_CapturesPanics(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			err := ParallelizeRange(3, 30, func(w, _, _ int) error {
				if w == 2 {
					panic("WHEE")
				}
				return nil
			}, opts...)

			require.ErrorIs(t, err, ErrCallbackPanicked)
			require.Contains(t, err.Error(), "WHEE")
			require.Contains(t, err.Error(), "worker 2")

			var we *WorkerError
			require.ErrorAs(t, err, &we)
			require.Equal(t, PhaseRun, we.Phase)
			require.EqualValues(t, 20, we.Start)
			require.EqualValues(t, 10, we.Length)
		})
	}
}

func TestParallelizeRange_WithoutCapture(t *testing.T) {
	t.Run("sequential panic unwinds into the caller", func(t *testing.T) {
		require.PanicsWithValue(t, "WHEE", func() {
			_ = ParallelizeRange(1, 10, func(int, int, int) error { panic("WHEE") }, WithoutCapture())
		})
	})

	t.Run("returned errors are still aggregated", func(t *testing.T) {
		err := ParallelizeRange(3, 9, func(w, _, _ int) error {
			if w > 0 {
				return errors.New("WHEE")
			}
			return nil
		}, WithoutCapture(), WithStrategy(Threads))
		require.EqualError(t, err, "WHEE")
		w, _ := ExtractWorker(err)
		require.Equal(t, 1, w)
	})
}

func TestParallelizeRange_NilRun(t *testing.T) {
	require.ErrorIs(t, ParallelizeRange[int](2, 10, nil), ErrInvalidConfig)
}

func TestParallelizeRange_InvalidOption(t *testing.T) {
	var calls int
	err := ParallelizeRange(2, 10, func(int, int, int) error { calls++; return nil }, WithProcs(0))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Zero(t, calls)
}

type workspace struct {
	owner int
	uses  int
}

func TestParallelize_WorkspacePerWorker(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			var setups atomic.Int32
			assignments := newAssignments(1000)
			seen := make([]*workspace, 7)

			err := Parallelize(7, len(assignments),
				func() (*workspace, error) {
					setups.Add(1)
					return &workspace{owner: unassigned}, nil
				},
				func(w, start, length int, ws *workspace) error {
					if ws.owner == unassigned {
						ws.owner = w
					}
					if ws.owner != w {
						return fmt.Errorf("workspace of worker %d used by worker %d", ws.owner, w)
					}
					ws.uses++
					seen[w] = ws
					fill(assignments, w, start, length)
					return nil
				}, opts...)
			require.NoError(t, err)

			require.EqualValues(t, 7, setups.Load())
			for w, ws := range seen {
				require.NotNil(t, ws)
				require.Equal(t, w, ws.owner)
				require.Equal(t, 1, ws.uses)
			}
			for _, a := range assignments {
				require.NotEqual(t, unassigned, a)
			}
		})
	}
}

func TestParallelize_NoTasksCreatesNoWorkspace(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			var setups, calls atomic.Int32
			err := Parallelize(4, 0,
				func() (*workspace, error) { setups.Add(1); return &workspace{}, nil },
				func(int, int, int, *workspace) error { calls.Add(1); return nil },
				opts...)
			require.NoError(t, err)
			require.Zero(t, setups.Load())
			require.Zero(t, calls.Load())
		})
	}
}

func TestParallelize_OverprovisionedWorkersGetNoWorkspace(t *testing.T) {
	var setups atomic.Int32
	err := Parallelize(10, 3,
		func() (*workspace, error) { setups.Add(1); return &workspace{}, nil },
		func(int, int, int, *workspace) error { return nil })
	require.NoError(t, err)
	require.EqualValues(t, 3, setups.Load())
}

func TestParallelize_NilSetupYieldsZeroWorkspace(t *testing.T) {
	err := Parallelize[int, *workspace](3, 9, nil, func(_, _, _ int, ws *workspace) error {
		if ws != nil {
			return errors.New("expected nil workspace")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestParallelize_SetupFailure(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			var setups atomic.Int32
			ran := make([]bool, 4)
			err := Parallelize(4, 40,
				func() (*workspace, error) {
					if setups.Add(1) == 1 {
						return nil, errors.New("WHEE")
					}
					return &workspace{}, nil
				},
				func(w, _, _ int, _ *workspace) error {
					ran[w] = true
					return nil
				}, opts...)

			require.EqualError(t, err, "WHEE")
			phase, ok := ExtractPhase(err)
			require.True(t, ok)
			require.Equal(t, PhaseSetup, phase)

			failed, _ := ExtractWorker(err)
			require.False(t, ran[failed], "worker %d ran without a workspace", failed)
			var others int
			for _, r := range ran {
				if r {
					others++
				}
			}
			require.Equal(t, 3, others)
		})
	}
}

func TestParallelize_SetupPanic(t *testing.T) {
	err := Parallelize(2, 10,
		func() (*workspace, error) { panic("WHEE") },
		func(int, int, int, *workspace) error { return nil },
		WithStrategy(Threads))

	require.ErrorIs(t, err, ErrCallbackPanicked)
	phase, _ := ExtractPhase(err)
	require.Equal(t, PhaseSetup, phase)
	w, _ := ExtractWorker(err)
	require.Equal(t, 0, w)
}

func TestParallelize_NilRun(t *testing.T) {
	require.ErrorIs(t, Parallelize[int, *workspace](2, 10, nil, nil), ErrInvalidConfig)
}

func TestParallelizeSimple(t *testing.T) {
	for name, opts := range strategyCases(t) {
		t.Run(name, func(t *testing.T) {
			done := make([]int32, 50)
			err := ParallelizeSimple(len(done), func(task int) error {
				atomic.AddInt32(&done[task], 1)
				return nil
			}, opts...)
			require.NoError(t, err)
			for task, n := range done {
				require.EqualValues(t, 1, n, "task %d", task)
			}
		})
	}

	t.Run("failure", func(t *testing.T) {
		err := ParallelizeSimple(5, func(task int) error {
			if task >= 2 {
				return fmt.Errorf("task %d failed", task)
			}
			return nil
		})
		require.EqualError(t, err, "task 2 failed")
	})

	t.Run("nil run", func(t *testing.T) {
		require.ErrorIs(t, ParallelizeSimple(5, nil), ErrInvalidConfig)
	})
}

func TestParallelize_Metrics(t *testing.T) {
	p := metrics.NewBasicProvider()

	err := Parallelize(4, 100,
		func() (*workspace, error) { return &workspace{}, nil },
		func(w, _, _ int, _ *workspace) error {
			if w == 3 {
				return errors.New("WHEE")
			}
			return nil
		}, WithMetrics(p))
	require.Error(t, err)

	require.EqualValues(t, 1, p.Value(metrics.NameDispatches))
	require.EqualValues(t, 4, p.Value(metrics.NameRanges))
	require.EqualValues(t, 4, p.Value(metrics.NameWorkspaces))
	require.EqualValues(t, 1, p.Value(metrics.NameFailures))
	require.EqualValues(t, 0, p.Value(metrics.NameActiveWorkers))
	require.EqualValues(t, 1, p.Distribution(metrics.NameDispatchSeconds).Count)

	require.NoError(t, ParallelizeRange(2, 0, func(int, int, int) error { return nil }, WithMetrics(p)))
	require.EqualValues(t, 2, p.Value(metrics.NameDispatches))
	require.EqualValues(t, 4, p.Value(metrics.NameRanges))
}

func TestParallelize_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	err := ParallelizeRange(2, 10, func(w, _, _ int) error {
		if w == 1 {
			return errors.New("WHEE")
		}
		return nil
	}, WithLogger(logger))
	require.Error(t, err)

	out := buf.String()
	require.Contains(t, out, "dispatch")
	require.Contains(t, out, "call=")
	require.Contains(t, out, "worker failed")
	require.Contains(t, out, "WHEE")
}

func TestParallelize_NestedDispatch(t *testing.T) {
	e := NewExecutor(2)
	defer e.Close()

	var total atomic.Int64
	err := ParallelizeRange(4, 4, func(_, start, length int) error {
		return ParallelizeRange(4, 100, func(_, s, l int) error {
			total.Add(int64(l))
			return nil
		}, WithExecutor(e))
	}, WithExecutor(e))
	require.NoError(t, err)
	require.EqualValues(t, 400, total.Load())
}

func TestParallelize_NestedFailureCarriesOuterWorker(t *testing.T) {
	err := ParallelizeRange(3, 3, func(outer, _, _ int) error {
		if outer != 2 {
			return nil
		}
		return ParallelizeRange(2, 10, func(inner, _, _ int) error {
			if inner == 1 {
				return errors.New("WHEE")
			}
			return nil
		})
	})
	require.EqualError(t, err, "WHEE")
	w, _ := ExtractWorker(err)
	require.Equal(t, 2, w)
}

func TestParallelize_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := metrics.NewPrometheusProvider(reg)

	err := ParallelizeRange(3, 30, func(int, int, int) error { return nil }, WithMetrics(p))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, metrics.NameDispatches, metrics.NameRanges)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		if m := mf.GetMetric(); len(m) == 1 && m[0].GetCounter() != nil {
			values[mf.GetName()] = m[0].GetCounter().GetValue()
		}
	}
	require.Equal(t, 1.0, values[metrics.NameDispatches])
	require.Equal(t, 3.0, values[metrics.NameRanges])
}
