// Package search implements the parallel preimage search over IPv4
// dotted-decimal strings: the per-range Worker, the shared progress counter
// and cancellation signal, the worker Registry, and the Coordinator that ties
// them together.
//
// # Overview
//
// Given a target SHA-256 digest, a run hashes the dotted-decimal text of every
// address in a range (by default the whole IPv4 space, 2^32 candidates) until
// one matches or the range is exhausted.
//
//	┌──────────────────────────────────────────────┐
//	│                 Coordinator                  │
//	│  partition.Split → one Worker per Range      │
//	│  progress.Aggregator on a fixed interval     │
//	└──────┬──────────────┬──────────────┬─────────┘
//	       │              │              │
//	  ┌────▼────┐    ┌────▼────┐    ┌────▼────┐
//	  │ Worker 0│    │ Worker 1│    │ Worker n│
//	  │ Encoder │    │ Encoder │    │ Encoder │
//	  │ Matcher │    │ Matcher │    │ Matcher │
//	  └────┬────┘    └────┬────┘    └────┬────┘
//	       │   batch flush│              │
//	  ┌────▼──────────────▼──────────────▼────┐
//	  │ Progress (atomic)   Signal (atomic)   │
//	  └───────────────────────────────────────┘
//
// # Worker lifecycle
//
//	pending → running → found | exhausted | cancelled | faulted
//
// A worker's hot loop encodes an address into its own scratch buffer, hashes
// it with its own digest context and compares the result with the target.
// Nothing in the loop allocates or touches shared memory. Between batches
// (DefaultBatchSize candidates) the worker adds its batch count to the shared
// Progress counter and polls the Signal.
//
// # Cancellation
//
// The Signal is write-once. The first worker to match raises it; a worker
// fault or the caller's context also raises it through the coordinator.
// Workers observe it at their next batch boundary, so each worker examines at
// most one batch after the signal is raised. That overshoot only costs time,
// never correctness: a cancelled worker reports StateCancelled and its
// examined count.
//
// # Progress accounting
//
// Because workers flush per batch, the counter seen by the aggregator lags
// the true number of hashed candidates by less than one batch per worker.
// Every terminal transition flushes the remainder, so once Run returns,
// Result.Examined equals the number of candidates actually hashed.
//
// # Errors
//
//   - ErrInvalidConfiguration: rejected by NewCoordinator or Run before any
//     worker starts
//   - ErrWorkerFault: a worker panicked; the run is cancelled and every fault
//     is returned (combined with multierr)
//   - ErrAborted: the caller's context ended the run
//
// Exhausting the range without a match is not an error: Run returns a Result
// with Found set to false.
//
// # Example
//
//	target, _ := digest.ParseHex(hexArg)
//	coord, err := search.NewCoordinator(search.Config{
//	    Target:  target,
//	    Range:   partition.Full,
//	    Workers: runtime.NumCPU(),
//	}, search.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := coord.Run(ctx)
//	if err == nil && res.Found {
//	    fmt.Println(res.Candidate)
//	}
package search
