// Package pool holds per-worker values created on demand.
package pool

import "sync/atomic"

// Slots lazily creates one value per worker slot and hands the same value back on every
// later Get for that slot. Slots of distinct workers may be used concurrently; Get calls for
// the same slot must not overlap, which holds whenever a worker id is owned by one goroutine
// at a time.
type Slots[W any] struct {
	items   []slot[W]
	newFn   func() (W, error)
	created atomic.Int64
}

type slot[W any] struct {
	ready bool
	v     W
}

// NewSlots returns n empty slots filled by newFn. A nil newFn fills slots with the zero W.
func NewSlots[W any](n int, newFn func() (W, error)) *Slots[W] {
	if n < 0 {
		n = 0
	}
	return &Slots[W]{items: make([]slot[W], n), newFn: newFn}
}

// Len returns the number of slots.
func (s *Slots[W]) Len() int { return len(s.items) }

// Get returns the value of slot i, creating it on first use. A failed creation leaves the
// slot empty, so a later Get retries. Get panics if i is outside [0, Len()).
func (s *Slots[W]) Get(i int) (W, error) {
	it := &s.items[i]
	if it.ready {
		return it.v, nil
	}
	if s.newFn != nil {
		v, err := s.newFn()
		if err != nil {
			return v, err
		}
		it.v = v
	}
	it.ready = true
	s.created.Add(1)
	return it.v, nil
}

// Created returns how many slots have been filled.
func (s *Slots[W]) Created() int { return int(s.created.Load()) }
