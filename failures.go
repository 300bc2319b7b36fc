package workrange

// Failures records at most one failure per worker and reports the failure of the lowest
// worker id. Each worker writes only its own slot, so concurrent Record calls for distinct
// workers need no locking. Calls for the same worker must not overlap.
//
// Custom schedulers use Failures to report errors the same way the built-in strategies do.
type Failures struct {
	slots []error
}

// NewFailures returns a record with one slot per worker. Values below 1 yield one slot.
func NewFailures(numWorkers int) *Failures {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Failures{slots: make([]error, numWorkers)}
}

// Record stores err against worker unless the worker already has a failure or err is nil.
// It panics if worker is outside the record.
func (f *Failures) Record(worker int, err error) {
	if err == nil || f.slots[worker] != nil {
		return
	}
	f.slots[worker] = err
}

// Len returns the number of worker slots.
func (f *Failures) Len() int { return len(f.slots) }

// Err returns the failure with the lowest worker id, or nil. It must only be called after
// every writer has finished.
func (f *Failures) Err() error {
	for _, err := range f.slots {
		if err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of workers that recorded a failure.
func (f *Failures) Count() int {
	n := 0
	for _, err := range f.slots {
		if err != nil {
			n++
		}
	}
	return n
}
