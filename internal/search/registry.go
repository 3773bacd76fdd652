package search

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dreamware/ipsearch/internal/partition"
)

// Registry records the assignment and last reported state of every worker in
// a run. It backs the status endpoints and worker-state metrics.
//
// Workers write to the registry only when they start and when they stop, never
// from the hot loop, so a mutex is sufficient.
//
// Thread Safety: all methods are safe for concurrent use. Returned values are
// copies.
type Registry struct {
	workers map[int]*WorkerStatus
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workers: make(map[int]*WorkerStatus),
	}
}

// Assign registers ranges as pending workers numbered from zero, replacing
// any previous assignment.
func (r *Registry) Assign(ranges []partition.Range) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workers = make(map[int]*WorkerStatus, len(ranges))
	for i, rng := range ranges {
		r.workers[i] = &WorkerStatus{ID: i, Range: rng, State: StatePending}
	}
}

// Update stores st as the latest status of worker st.ID.
func (r *Registry) Update(st WorkerStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := st
	r.workers[st.ID] = &cp
}

// Get returns the status of one worker.
func (r *Registry) Get(id int) (WorkerStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.workers[id]
	if !ok {
		return WorkerStatus{}, false
	}
	return *st, true
}

// All returns every worker's status ordered by worker ID.
func (r *Registry) All() []WorkerStatus {
	r.mu.RLock()
	out := make([]WorkerStatus, 0, len(r.workers))
	for _, st := range r.workers {
		out = append(out, *st)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b WorkerStatus) int {
		return a.ID - b.ID
	})
	return out
}

// CountByState returns how many workers are in each state. Every state in
// States is present in the result, possibly with zero.
func (r *Registry) CountByState() map[WorkerState]int {
	counts := make(map[WorkerState]int, len(States))
	for _, s := range States {
		counts[s] = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.workers {
		counts[st.State]++
	}
	return counts
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}
