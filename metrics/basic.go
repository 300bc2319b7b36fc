package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider is an in-memory Provider for tests, examples and lightweight apps.
// Instruments are created on first use and reused for the same name.
type BasicProvider struct {
	mu         sync.Mutex
	counters   map[string]*BasicCounter
	histograms map[string]*BasicHistogram
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		histograms: make(map[string]*BasicHistogram),
	}
}

// Counter returns the counter registered under name.
func (p *BasicProvider) Counter(name string, _ ...InstrumentOption) Counter {
	return p.counter(name)
}

// UpDownCounter returns the up/down counter registered under name. Counters and up/down
// counters share one namespace.
func (p *BasicProvider) UpDownCounter(name string, _ ...InstrumentOption) UpDownCounter {
	return p.counter(name)
}

// Histogram returns the histogram registered under name.
func (p *BasicProvider) Histogram(name string, _ ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[name]
	if !ok {
		h = &BasicHistogram{}
		p.histograms[name] = h
	}
	return h
}

func (p *BasicProvider) counter(name string) *BasicCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[name]
	if !ok {
		c = &BasicCounter{}
		p.counters[name] = c
	}
	return c
}

// Value returns the current value of the counter registered under name, or 0.
func (p *BasicProvider) Value(name string) int64 {
	p.mu.Lock()
	c, ok := p.counters[name]
	p.mu.Unlock()
	if !ok {
		return 0
	}
	return c.Snapshot()
}

// Distribution returns a snapshot of the histogram registered under name.
func (p *BasicProvider) Distribution(name string) HistSnapshot {
	p.mu.Lock()
	h, ok := p.histograms[name]
	p.mu.Unlock()
	if !ok {
		return HistSnapshot{}
	}
	return h.Snapshot()
}

// BasicCounter is a thread-safe counter usable as Counter and UpDownCounter.
type BasicCounter struct {
	val atomic.Int64
}

// Add adds n to the counter.
func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicHistogram tracks count, sum, min and max without buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns Sum/Count, or 0 for an empty snapshot.
func (s HistSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
}
