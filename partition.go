package workrange

// Integer is the set of types usable as a task index.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Range is a contiguous block of tasks [Start, Start+Length) assigned to a worker.
type Range[T Integer] struct {
	Worker int
	Start  T
	Length T
}

// End returns the exclusive upper bound of the range.
func (r Range[T]) End() T { return r.Start + r.Length }

// plan holds the partition arithmetic for one call. Ranges are derived on demand so that
// dispatch never allocates the full partition.
type plan[T Integer] struct {
	workers   int // effective number of workers, 0 when there is no work
	base      T
	remainder T
}

// newPlan splits numTasks across numWorkers. All arithmetic stays in T or uint64, and every
// intermediate value is bounded by numTasks, so narrow and unsigned types cannot wrap.
func newPlan[T Integer](numWorkers int, numTasks T) plan[T] {
	if numTasks <= 0 {
		return plan[T]{}
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers == 1 || numTasks == 1 {
		return plan[T]{workers: 1, base: numTasks}
	}

	// Over-provisioning: more workers than tasks gives one task per worker. The comparison
	// happens in uint64 because numWorkers may not be representable in T.
	if uint64(numWorkers) >= uint64(numTasks) {
		return plan[T]{workers: int(numTasks), base: 1}
	}

	n := T(numWorkers)
	return plan[T]{workers: numWorkers, base: numTasks / n, remainder: numTasks % n}
}

// at returns the range of worker w, which must be in [0, p.workers).
// The first remainder workers absorb one extra task each.
func (p plan[T]) at(w int) Range[T] {
	tw := T(w)
	start := tw * p.base
	length := p.base
	if tw < p.remainder {
		start += tw
		length++
	} else {
		start += p.remainder
	}
	return Range[T]{Worker: w, Start: start, Length: length}
}

// Partition divides [0, numTasks) into contiguous, non-overlapping ranges, one per worker,
// sorted by worker id. Values of numWorkers below 1 are treated as 1. Workers that would
// receive no tasks are omitted, so the result is empty when numTasks <= 0 and never longer
// than numTasks.
func Partition[T Integer](numWorkers int, numTasks T) []Range[T] {
	p := newPlan(numWorkers, numTasks)
	if p.workers == 0 {
		return nil
	}
	ranges := make([]Range[T], p.workers)
	for w := range ranges {
		ranges[w] = p.at(w)
	}
	return ranges
}
