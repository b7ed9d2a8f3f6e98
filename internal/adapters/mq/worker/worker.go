// Package worker runs refreshes requested through the queue or by a timer.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/pkg/logger"
	"github.com/osvo/club-world-cup-tracker/pkg/metrics"
)

// Reasons attached to requests the worker creates itself.
const ReasonTick = "tick"

// Refresher re-ingests the source and republishes the snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Queue is the part of the refresh queue the worker uses.
type Queue interface {
	Enqueue(ctx context.Context, r model.RefreshRequest) bool
	Dequeue() <-chan model.RefreshRequest
}

// Worker processes refresh requests until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for the in-flight refresh.
	Shutdown(ctx context.Context) error
}

// RefreshWorker serializes refreshes: one at a time, no more often than
// the limiter allows. Requests queued while a refresh waits are folded
// into it.
type RefreshWorker struct {
	queue     Queue
	refresher Refresher
	limiter   *rate.Limiter
	interval  time.Duration
	name      string
	logger    logger.Logger

	processed atomic.Int64
	coalesced atomic.Int64
	failed    atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
}

var _ Worker = (*RefreshWorker)(nil)

// NewRefreshWorker creates a worker reading q and calling r.
func NewRefreshWorker(q Queue, r Refresher, opts ...Option) *RefreshWorker {
	w := &RefreshWorker{
		queue:     q,
		refresher: r,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *RefreshWorker) Run(ctx context.Context) {
	defer close(w.done)

	var tick <-chan time.Time
	if w.interval > 0 {
		t := time.NewTicker(w.interval)
		defer t.Stop()
		tick = t.C
	}

	requests := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case <-tick:
			req := model.RefreshRequest{ID: uuid.NewString(), Reason: ReasonTick, RequestedAt: time.Now()}
			if !w.queue.Enqueue(ctx, req) {
				w.logger.Debug(ctx, "tick skipped, refresh already pending")
			}
		case req, ok := <-requests:
			if !ok {
				return
			}
			log := w.logger.With(
				logger.String("request_id", req.ID),
				logger.String("reason", req.Reason))
			if err := w.process(ctx, req, log); err != nil {
				log.Error(ctx, "refresh failed", logger.Error(err))
			}
		}
	}
}

func (w *RefreshWorker) process(ctx context.Context, req model.RefreshRequest, log logger.Logger) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	if w.limiter.Limit() != rate.Inf && w.limiter.Tokens() < 1 {
		metrics.RecordWorkerThrottled()
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for refresh slot: %w", err)
	}
	merged := w.drain()

	log.Debug(ctx, "refreshing",
		logger.Int("coalesced", merged),
		logger.Duration("queued_for", time.Since(req.RequestedAt)))

	w.processed.Add(1)
	if err := w.refresher.Refresh(ctx); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "refresh")
		return err
	}
	return nil
}

// drain discards requests that are already pending; the refresh about to
// run satisfies them.
func (w *RefreshWorker) drain() int {
	n := 0
	for {
		select {
		case _, ok := <-w.queue.Dequeue():
			if !ok {
				return n
			}
			n++
			w.coalesced.Add(1)
		default:
			return n
		}
	}
}

// Shutdown stops the loop and waits for it to exit.
func (w *RefreshWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Stats is a point-in-time view of worker counters.
type Stats struct {
	Processed int64 `json:"processed"`
	Coalesced int64 `json:"coalesced"`
	Failed    int64 `json:"failed"`
}

// Stats returns the worker counters.
func (w *RefreshWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Coalesced: w.coalesced.Load(),
		Failed:    w.failed.Load(),
	}
}
