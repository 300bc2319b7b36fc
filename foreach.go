package workrange

// ForEach calls fn for every item, splitting items into numWorkers contiguous blocks.
// Items of one block are visited in order by the same worker. The first failure of each
// worker stops that worker's block; ForEach returns the failure of the lowest worker id.
func ForEach[T any](numWorkers int, items []T, fn func(worker int, item T) error, opts ...Option) error {
	if len(items) == 0 {
		return nil
	}
	return ParallelizeRange(numWorkers, len(items), func(worker, start, length int) error {
		for _, item := range items[start : start+length] {
			if err := fn(worker, item); err != nil {
				return err
			}
		}
		return nil
	}, opts...)
}
