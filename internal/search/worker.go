package search

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dreamware/ipsearch/internal/address"
	"github.com/dreamware/ipsearch/internal/partition"
)

// DefaultBatchSize is how many candidates a worker examines between
// cancellation checks and progress flushes.
const DefaultBatchSize = 100000

// Matcher decides whether a candidate hashes to the target digest.
// Implementations keep mutable hash state and are owned by one worker.
type Matcher interface {
	Match(candidate []byte) bool
}

// WorkerConfig carries everything a worker needs to scan one range.
type WorkerConfig struct {
	Matcher   Matcher
	Progress  *Progress
	Signal    *Signal
	Registry  *Registry   // optional
	Logger    *zap.Logger // optional
	Range     partition.Range
	BatchSize uint64
	ID        int
}

// Worker scans one range of addresses: it encodes each address, hashes it,
// and compares the digest with the target.
//
// The signal is polled once per batch and the shared progress counter is
// updated once per batch, so after another worker raises the signal this
// worker examines at most one more batch. Counts are also flushed on every
// terminal transition, so the shared counter converges to the true total.
type Worker struct {
	matcher  Matcher
	progress *Progress
	signal   *Signal
	registry *Registry
	logger   *zap.Logger
	enc      address.Encoder
	rng      partition.Range
	batch    uint64
	examined uint64
	id       int
}

// NewWorker creates a worker for cfg.Range.
func NewWorker(cfg WorkerConfig) *Worker {
	batch := cfg.BatchSize
	if batch == 0 {
		batch = DefaultBatchSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		id:       cfg.ID,
		rng:      cfg.Range,
		matcher:  cfg.Matcher,
		progress: cfg.Progress,
		signal:   cfg.Signal,
		registry: cfg.Registry,
		batch:    batch,
		logger:   logger.With(zap.Int("worker", cfg.ID), zap.Stringer("range", cfg.Range)),
	}
}

// Run scans the worker's range until it finds the target, exhausts the
// range, or observes the cancellation signal. It returns the terminal status;
// the error is non-nil only for StateFaulted and wraps ErrWorkerFault.
func (w *Worker) Run() (status WorkerStatus, err error) {
	next := uint64(w.rng.Start)
	last := uint64(w.rng.End)
	cur := next

	defer func() {
		if r := recover(); r != nil {
			if cur > next {
				w.flush(cur - next)
			}
			err = fmt.Errorf("%w: worker %d at address %d: %v", ErrWorkerFault, w.id, cur, r)
			status = w.finish(StateFaulted, 0, err)
		}
	}()

	w.setState(StateRunning)
	w.logger.Debug("worker started")

	for next <= last {
		if w.signal.IsSet() {
			return w.finish(StateCancelled, 0, nil), nil
		}

		end := next + w.batch - 1
		if end > last {
			end = last
		}
		for cur = next; cur <= end; cur++ {
			if w.matcher.Match(w.enc.Encode(uint32(cur))) {
				n := cur - next + 1
				next = cur + 1
				w.flush(n)
				w.signal.Set()
				return w.finish(StateFound, uint32(cur), nil), nil
			}
		}
		w.flush(end - next + 1)
		next = end + 1
		cur = next
	}

	return w.finish(StateExhausted, 0, nil), nil
}

// flush moves n locally counted candidates into the shared counter.
func (w *Worker) flush(n uint64) {
	w.examined += n
	w.progress.Add(n)
}

func (w *Worker) status(state WorkerState) WorkerStatus {
	return WorkerStatus{
		ID:       w.id,
		Range:    w.rng,
		State:    state,
		Examined: w.examined,
	}
}

func (w *Worker) setState(state WorkerState) {
	if w.registry != nil {
		w.registry.Update(w.status(state))
	}
}

func (w *Worker) finish(state WorkerState, addr uint32, err error) WorkerStatus {
	st := w.status(state)
	switch state {
	case StateFound:
		st.Address = addr
		st.Candidate = address.Format(addr)
		w.logger.Info("preimage found", zap.String("candidate", st.Candidate), zap.Uint64("examined", st.Examined))
	case StateFaulted:
		st.Error = err.Error()
		w.logger.Error("worker faulted", zap.Error(err), zap.Uint64("examined", st.Examined))
	default:
		w.logger.Debug("worker stopped", zap.String("state", string(state)), zap.Uint64("examined", st.Examined))
	}
	if w.registry != nil {
		w.registry.Update(st)
	}
	return st
}
