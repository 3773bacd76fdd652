package search

import "sync/atomic"

// Progress is the process-wide count of addresses examined. Workers add to
// it in batches; readers only Load. The value never decreases.
type Progress struct {
	n atomic.Uint64
}

// Add records delta more examined addresses.
func (p *Progress) Add(delta uint64) {
	if delta > 0 {
		p.n.Add(delta)
	}
}

// Load returns the number of addresses flushed so far. It is a lower bound on
// the true count while workers are running.
func (p *Progress) Load() uint64 {
	return p.n.Load()
}

// Signal is a write-once cancellation flag shared by all workers of a run.
// It starts false and, once set, stays set.
type Signal struct {
	set atomic.Bool
}

// Set raises the signal. It reports whether this call was the one that
// raised it, so exactly one caller observes true.
func (s *Signal) Set() bool {
	return s.set.CompareAndSwap(false, true)
}

// IsSet reports whether the signal has been raised.
func (s *Signal) IsSet() bool {
	return s.set.Load()
}
