package search

import "github.com/dreamware/ipsearch/internal/partition"

// WorkerState is the lifecycle state of a worker.
type WorkerState string

const (
	// StatePending means the worker has a range but has not started.
	StatePending WorkerState = "pending"
	// StateRunning means the worker is scanning its range.
	StateRunning WorkerState = "running"
	// StateFound means the worker hashed the target preimage.
	StateFound WorkerState = "found"
	// StateExhausted means the worker scanned its whole range without a match.
	StateExhausted WorkerState = "exhausted"
	// StateCancelled means the worker stopped after observing the signal.
	StateCancelled WorkerState = "cancelled"
	// StateFaulted means the worker's loop failed unexpectedly.
	StateFaulted WorkerState = "faulted"
)

// States lists every worker state in lifecycle order.
var States = []WorkerState{
	StatePending,
	StateRunning,
	StateFound,
	StateExhausted,
	StateCancelled,
	StateFaulted,
}

// Terminal reports whether s is a final state.
func (s WorkerState) Terminal() bool {
	switch s {
	case StateFound, StateExhausted, StateCancelled, StateFaulted:
		return true
	}
	return false
}

// WorkerStatus is a point-in-time view of one worker.
type WorkerStatus struct {
	Range     partition.Range `json:"range"`
	State     WorkerState     `json:"state"`
	Candidate string          `json:"candidate,omitempty"` // set when State is StateFound
	Error     string          `json:"error,omitempty"`     // set when State is StateFaulted
	Examined  uint64          `json:"examined"`
	ID        int             `json:"id"`
	Address   uint32          `json:"address,omitempty"` // set when State is StateFound
}
