// Package progress samples the shared examined-address counter on a fixed
// interval and turns it into throughput, percentage and ETA figures.
// See doc.go for complete package documentation.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DefaultInterval is the sampling period used when Options.Interval is zero.
const DefaultInterval = time.Second

// Counter is the read side of the shared progress counter.
type Counter interface {
	Load() uint64
}

// Snapshot is one progress sample.
type Snapshot struct {
	Processed uint64        `json:"processed"`
	Total     uint64        `json:"total"`
	Remaining uint64        `json:"remaining"`
	Rate      float64       `json:"rate"`    // addresses per second
	Percent   float64       `json:"percent"` // 0-100
	ETA       time.Duration `json:"eta"`     // zero when ETAKnown is false
	Elapsed   time.Duration `json:"elapsed"`
	ETAKnown  bool          `json:"eta_known"`
	Final     bool          `json:"final"` // last sample of a run, taken after all workers stopped
}

// Compute derives a Snapshot from a processed count, the size of the search
// space and the time spent so far. A zero rate yields an unknown ETA rather
// than a division by zero.
func Compute(processed, total uint64, elapsed time.Duration) Snapshot {
	s := Snapshot{
		Processed: processed,
		Total:     total,
		Elapsed:   elapsed,
	}
	if processed < total {
		s.Remaining = total - processed
	}
	if total > 0 {
		s.Percent = float64(processed) / float64(total) * 100
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.Rate = float64(processed) / secs
	}
	if s.Rate > 0 {
		s.ETA = time.Duration(float64(s.Remaining) / s.Rate * float64(time.Second))
		s.ETAKnown = true
	}
	return s
}

// Reporter receives snapshots. Implementations must not block for long; they
// run on the aggregator goroutine.
type Reporter interface {
	Report(Snapshot)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Snapshot)

// Report calls f(s).
func (f ReporterFunc) Report(s Snapshot) { f(s) }

// Options configures an Aggregator.
type Options struct {
	Clock     clock.Clock // defaults to the wall clock
	Logger    *zap.Logger
	Reporters []Reporter
	Interval  time.Duration
}

// Aggregator periodically samples a Counter and hands the snapshot to its
// reporters. It only reads the counter; it never touches worker state.
//
// Thread Safety: Sample, Last and Begin are safe for concurrent use with the
// running loop.
type Aggregator struct {
	start     time.Time
	counter   Counter
	clock     clock.Clock
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	reporters []Reporter
	last      Snapshot
	total     uint64
	interval  time.Duration
	mu        sync.RWMutex
	wg        sync.WaitGroup
}

// NewAggregator creates an aggregator over a search space of total addresses.
// Elapsed time is measured from construction until Begin is called again.
//
// Example:
//
//	agg := progress.NewAggregator(&counter, partition.Full.Len(), progress.Options{
//	    Interval:  time.Second,
//	    Reporters: []progress.Reporter{progress.NewLineReporter(os.Stderr)},
//	})
//	go agg.Start(ctx)
//	defer agg.Stop()
func NewAggregator(counter Counter, total uint64, opts Options) *Aggregator {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	return &Aggregator{
		counter:   counter,
		total:     total,
		clock:     opts.Clock,
		logger:    opts.Logger,
		reporters: opts.Reporters,
		interval:  opts.Interval,
		start:     opts.Clock.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Begin resets the start time used for elapsed time and rate.
func (a *Aggregator) Begin() {
	a.mu.Lock()
	a.start = a.clock.Now()
	a.mu.Unlock()
}

// Start runs the sampling loop in the current goroutine until ctx is
// cancelled or Stop is called.
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	defer a.wg.Done()

	if ctx == nil {
		ctx = a.ctx
	}

	ticker := a.clock.Ticker(a.interval)
	defer ticker.Stop()

	a.logger.Debug("progress aggregator started", zap.Duration("interval", a.interval))

	for {
		select {
		case <-ticker.C:
			a.Publish(a.Sample())
		case <-ctx.Done():
			a.logger.Debug("progress aggregator stopping due to context cancellation")
			return
		case <-a.ctx.Done():
			a.logger.Debug("progress aggregator stopping due to internal cancellation")
			return
		}
	}
}

// Stop ends the sampling loop and waits for it to return. It is safe to call
// more than once.
func (a *Aggregator) Stop() {
	a.cancel()
	a.wg.Wait()
}

// Sample reads the counter and computes a snapshot without reporting it.
func (a *Aggregator) Sample() Snapshot {
	a.mu.RLock()
	start := a.start
	a.mu.RUnlock()

	return Compute(a.counter.Load(), a.total, a.clock.Since(start))
}

// Publish records s as the latest snapshot and passes it to every reporter.
func (a *Aggregator) Publish(s Snapshot) {
	a.mu.Lock()
	a.last = s
	a.mu.Unlock()

	for _, r := range a.reporters {
		r.Report(s)
	}
}

// Last returns the most recently published snapshot.
func (a *Aggregator) Last() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Total returns the size of the search space.
func (a *Aggregator) Total() uint64 {
	return a.total
}
