// Package workrange divides an integer range of independent tasks into contiguous blocks
// and runs each block on a worker, optionally giving every worker its own reusable workspace.
//
// Entry points
//   - Parallelize(numWorkers, numTasks, setup, run, opts...): workspace-aware dispatch.
//   - ParallelizeRange(numWorkers, numTasks, run, opts...): dispatch without workspaces.
//   - ParallelizeSimple(numTasks, run, opts...): one task per worker.
//   - ForEach and Map: slice helpers built on ParallelizeRange.
//   - Partition(numWorkers, numTasks): the partition itself, for inspection.
//
// Partitioning
// Worker counts below 1 are treated as 1. Each worker receives numTasks/numWorkers tasks and
// the first numTasks%numWorkers workers one more, so block lengths differ by at most one.
// With more workers than tasks every task gets its own worker and the rest stay idle.
// The arithmetic is overflow-free for every Integer type, including uint8 at 255.
//
// Strategies
//   - Auto (default): Sequential for a single effective worker, Threads otherwise.
//   - Sequential: everything runs on the calling goroutine.
//   - Threads: one goroutine per effective worker.
//   - DataParallel: a parallel-for over worker indices with a bounded number of goroutines
//     (WithProcs), or a persistent Executor (WithExecutor).
//   - Custom: WithScheduler / WithWorkspaceScheduler forward the call to a caller supplied
//     scheduler. Package schedtest provides an adversarial one for test suites.
//
// Failures
// A failing setup or run call never interrupts other workers. After all of them finished,
// the failure of the lowest worker id is returned as a *WorkerError carrying the worker id,
// phase and range. Panics are recovered into *PanicError unless WithoutCapture is set.
//
// Defaults
// SetDefaults installs options applied to every call, and Settings loads them from TOML,
// YAML or the environment.
package workrange
