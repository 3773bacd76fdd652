package search

import (
	"errors"

	"github.com/dreamware/ipsearch/internal/partition"
)

var (
	// ErrInvalidConfiguration is returned before any worker starts when the
	// worker count, batch size, interval or range is unusable.
	ErrInvalidConfiguration = partition.ErrInvalidConfiguration

	// ErrWorkerFault wraps an unexpected failure inside a worker's loop.
	// Any fault ends the whole run.
	ErrWorkerFault = errors.New("worker fault")

	// ErrAborted is returned when the caller's context ends the run before a
	// match is found or the range is exhausted.
	ErrAborted = errors.New("search aborted")
)
