package search

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dreamware/ipsearch/internal/digest"
	"github.com/dreamware/ipsearch/internal/partition"
	"github.com/dreamware/ipsearch/internal/progress"
)

// Config describes one search run.
type Config struct {
	Target           digest.Digest
	Range            partition.Range
	Workers          int
	BatchSize        uint64        // defaults to DefaultBatchSize
	ProgressInterval time.Duration // defaults to progress.DefaultInterval
}

// Validate rejects configurations that cannot start a run.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: worker count %d, must be at least 1", ErrInvalidConfiguration, c.Workers)
	}
	if c.Range.Start > c.Range.End {
		return fmt.Errorf("%w: range %s starts after it ends", ErrInvalidConfiguration, c.Range)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: negative progress interval %s", ErrInvalidConfiguration, c.ProgressInterval)
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	RunID     string         `json:"run_id"`
	Candidate string         `json:"candidate,omitempty"`
	Workers   []WorkerStatus `json:"workers"`
	Examined  uint64         `json:"examined"`
	Elapsed   time.Duration  `json:"elapsed"`
	Address   uint32         `json:"address,omitempty"`
	Found     bool           `json:"found"`
}

// MatcherFactory builds a fresh matcher for one worker.
type MatcherFactory func(target digest.Digest) Matcher

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock sets the time source used for progress sampling.
func WithClock(clk clock.Clock) Option {
	return func(c *Coordinator) { c.clock = clk }
}

// WithReporter adds a progress reporter. It may be given several times.
func WithReporter(r progress.Reporter) Option {
	return func(c *Coordinator) { c.reporters = append(c.reporters, r) }
}

// WithMatcherFactory replaces how per-worker matchers are built.
func WithMatcherFactory(f MatcherFactory) Option {
	return func(c *Coordinator) { c.newMatcher = f }
}

// WithRegistry makes the coordinator record worker status in reg, so the
// registry can be handed to status surfaces before the coordinator exists.
func WithRegistry(reg *Registry) Option {
	return func(c *Coordinator) { c.registry = reg }
}

// WithRunID sets the run identifier instead of a random UUID.
func WithRunID(id string) Option {
	return func(c *Coordinator) { c.runID = id }
}

// Coordinator owns a single search run: it partitions the range, starts one
// worker per partition plus the progress aggregator, waits for the workers,
// and reports the outcome.
//
// The shared state of a run is the Progress counter and the Signal. The
// first worker to match raises the signal; every other worker observes it at
// its next batch boundary and stops. A worker fault or the end of the
// caller's context raises the same signal.
type Coordinator struct {
	clock      clock.Clock
	logger     *zap.Logger
	newMatcher MatcherFactory
	registry   *Registry
	agg        *progress.Aggregator
	runID      string
	reporters  []progress.Reporter
	cfg        Config
	progress   Progress
	signal     Signal
}

// NewCoordinator validates cfg and prepares a run. It returns an error
// wrapping ErrInvalidConfiguration before anything is started.
func NewCoordinator(cfg Config, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	c := &Coordinator{
		cfg:      cfg,
		registry: NewRegistry(),
		newMatcher: func(target digest.Digest) Matcher {
			return digest.NewMatcher(target)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	c.logger = c.logger.With(zap.String("run_id", c.runID))

	c.agg = progress.NewAggregator(&c.progress, cfg.Range.Len(), progress.Options{
		Clock:     c.clock,
		Logger:    c.logger,
		Reporters: c.reporters,
		Interval:  cfg.ProgressInterval,
	})
	return c, nil
}

// RunID identifies this run in logs and status responses.
func (c *Coordinator) RunID() string { return c.runID }

// Registry exposes per-worker status.
func (c *Coordinator) Registry() *Registry { return c.registry }

// Snapshot samples the current progress of the run.
func (c *Coordinator) Snapshot() progress.Snapshot { return c.agg.Sample() }

// Examined returns the shared progress counter.
func (c *Coordinator) Examined() uint64 { return c.progress.Load() }

// Cancelled reports whether the run's cancellation signal has been raised.
func (c *Coordinator) Cancelled() bool { return c.signal.IsSet() }

// Run executes the search and blocks until every worker has stopped.
//
// Outcomes:
//   - match: Result.Found is true, error is nil
//   - range exhausted: Result.Found is false, error is nil
//   - worker fault: error wraps ErrWorkerFault (faults from several workers
//     are combined)
//   - ctx ended first: error wraps ErrAborted and ctx.Err()
//
// A Coordinator runs once; create a new one for another search.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	ranges, err := partition.Split(c.cfg.Range, c.cfg.Workers)
	if err != nil {
		return Result{}, err
	}
	c.registry.Assign(ranges)

	c.logger.Info("search started",
		zap.String("target", c.cfg.Target.String()),
		zap.Stringer("range", c.cfg.Range),
		zap.Int("workers", len(ranges)),
		zap.Uint64("batch", c.cfg.BatchSize),
	)

	start := c.clock.Now()
	c.agg.Begin()
	go c.agg.Start(ctx)

	statuses := make([]WorkerStatus, len(ranges))
	faults := make([]error, len(ranges))
	found := make(chan struct{}, len(ranges))
	workersDone := make(chan struct{})
	stopped := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	// Supervisor: the first of a match, a fault, an ended context or normal
	// completion raises the signal and stops progress reporting.
	go func() {
		defer close(stopped)
		select {
		case <-found:
			c.logger.Debug("match reported, cancelling remaining workers")
		case <-gctx.Done():
		case <-workersDone:
		}
		c.signal.Set()
		c.agg.Stop()
	}()

	for i, rng := range ranges {
		i := i
		w := NewWorker(WorkerConfig{
			ID:        i,
			Range:     rng,
			Matcher:   c.newMatcher(c.cfg.Target),
			Progress:  &c.progress,
			Signal:    &c.signal,
			Registry:  c.registry,
			Logger:    c.logger,
			BatchSize: c.cfg.BatchSize,
		})
		g.Go(func() error {
			st, err := w.Run()
			statuses[i] = st
			faults[i] = err
			if st.State == StateFound {
				found <- struct{}{}
			}
			return err
		})
	}

	_ = g.Wait() // faults are collected individually below
	close(workersDone)
	<-stopped

	res := Result{
		RunID:    c.runID,
		Workers:  statuses,
		Examined: c.progress.Load(),
		Elapsed:  c.clock.Since(start),
	}
	cancelled := 0
	for _, st := range statuses {
		switch st.State {
		case StateFound:
			if !res.Found {
				res.Found = true
				res.Address = st.Address
				res.Candidate = st.Candidate
			}
		case StateCancelled:
			cancelled++
		}
	}

	final := c.agg.Sample()
	final.Final = true
	c.agg.Publish(final)

	fields := []zap.Field{
		zap.Bool("found", res.Found),
		zap.Uint64("examined", res.Examined),
		zap.Duration("elapsed", res.Elapsed),
		zap.Float64("rate", final.Rate),
	}
	if res.Found {
		fields = append(fields, zap.String("candidate", res.Candidate))
	}

	if err := multierr.Combine(faults...); err != nil {
		c.logger.Error("search failed", append(fields, zap.Error(err))...)
		return res, err
	}
	if !res.Found && cancelled > 0 && ctx.Err() != nil {
		err := fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
		c.logger.Warn("search aborted", append(fields, zap.Error(err))...)
		return res, err
	}

	c.logger.Info("search finished", fields...)
	return res, nil
}
