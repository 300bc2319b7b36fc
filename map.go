package workrange

// Map applies fn to every item and returns the results in input order. Each worker writes
// only the result slots of its own range, so no synchronization is involved.
//
// On failure Map returns the partial results together with the failure of the lowest worker
// id; slots of items that were not processed hold the zero R.
func Map[T, R any](numWorkers int, items []T, fn func(T) (R, error), opts ...Option) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	results := make([]R, len(items))
	err := ParallelizeRange(numWorkers, len(items), func(_, start, length int) error {
		for i := start; i < start+length; i++ {
			r, err := fn(items[i])
			if err != nil {
				return err
			}
			results[i] = r
		}
		return nil
	}, opts...)
	return results, err
}
