// Package progress implements the progress aggregator of a search run.
//
// # Overview
//
// Workers add to a shared counter in batches. The Aggregator never talks to
// workers: on every tick of a fixed-interval ticker it reads the counter,
// derives a Snapshot and hands it to its Reporters.
//
//	rate      = processed / elapsed              (addresses per second)
//	percent   = processed / total * 100
//	remaining = total - processed
//	eta       = remaining / rate                 (unknown while rate is 0)
//
// Because workers flush per batch, a snapshot's Processed is a lower bound on
// the true count; the error is below one batch per worker and only affects
// the displayed figures.
//
// # Time
//
// The aggregator takes its ticker and elapsed time from a
// github.com/benbjohnson/clock Clock so tests can drive it with a mock clock.
//
// # Reporters
//
// LineReporter renders the classic single status line:
//
//	16909060/4294967296 IPs | 8454530.00 IPs/sec | Progress: 0.39% | ETA: 8m26s | Elapsed: 2s
//
// On a terminal it redraws the line in place; otherwise it prints one line
// per snapshot. The metrics package provides a Prometheus reporter.
package progress
