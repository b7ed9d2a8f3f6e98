// Package service runs the refresh pipeline and answers standings reads
// for the HTTP API and the MCP tools.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osvo/club-world-cup-tracker/internal/adapters/mq/queue"
	"github.com/osvo/club-world-cup-tracker/internal/adapters/mq/worker"
	"github.com/osvo/club-world-cup-tracker/internal/adapters/repository"
	"github.com/osvo/club-world-cup-tracker/internal/adapters/source"
	"github.com/osvo/club-world-cup-tracker/internal/domain/engine"
	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/internal/domain/teams"
	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
	"github.com/osvo/club-world-cup-tracker/pkg/logger"
	"github.com/osvo/club-world-cup-tracker/pkg/metrics"
)

// ReasonManual is the reason recorded for refresh requests that give none.
const ReasonManual = "manual"

const tracerName = "tracker-service"

// Service owns the snapshot lifecycle: it loads the source, computes the
// standings and publishes them, then serves reads from the latest snapshot.
type Service struct {
	mu sync.RWMutex

	// Core components
	source      source.Source
	store       repository.Store
	queue       *queue.InMemoryQueue
	worker      *worker.RefreshWorker
	abbreviator *teams.Abbreviator
	tracer      trace.Tracer

	// Configuration
	queueSize       int
	refreshInterval time.Duration
	minInterval     time.Duration

	// State
	started   bool
	startedAt time.Time

	refreshMu    sync.Mutex
	refreshes    atomic.Int64
	failures     atomic.Int64
	lastDuration atomic.Int64
	lastErr      atomic.Pointer[refreshFailure]

	logger logger.Logger
}

type refreshFailure struct {
	err error
	at  time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the prediction table is read from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore replaces the default in-memory snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAbbreviator rewrites team names before every computation.
func WithAbbreviator(a *teams.Abbreviator) Option {
	return func(s *Service) {
		s.abbreviator = a
	}
}

// WithTracer sets the tracer used for refresh spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithQueueSize sets the capacity of the refresh request queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval makes the worker refresh on a timer. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithMinRefreshInterval sets the minimum spacing between two refreshes.
func WithMinRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.minInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:     repository.NewSnapshotStore(),
		tracer:    otel.Tracer(tracerName),
		queueSize: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the refresh queue and worker and runs the first refresh
// synchronously. A failed first refresh is logged, not returned: the
// service stays up and reports not-ready until a refresh succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.source == nil {
		s.mu.Unlock()
		return ErrNoSource
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting tracker service",
		logger.String("source", fmt.Sprint(s.source)),
		logger.Bool("abbreviate_teams", s.abbreviator != nil))

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewRefreshWorker(s.queue, s,
		worker.WithName("refresh-worker"),
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithInterval(s.refreshInterval),
		worker.WithMinInterval(s.minInterval),
	)
	s.started = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error(ctx, "initial refresh failed, serving not-ready until the next refresh",
			logger.Error(err))
	}

	s.logger.Info(ctx, "tracker service started",
		logger.Int("queueSize", s.queueSize),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Duration("minRefreshInterval", s.minInterval),
		logger.Bool("ready", s.Ready(ctx)))
	return nil
}

// Run drives the refresh worker until ctx is done or Stop is called.
func (s *Service) Run(ctx context.Context) error {
	s.mu.RLock()
	w := s.worker
	s.mu.RUnlock()
	if w == nil {
		return ErrNotStarted
	}
	w.Run(ctx)
	return nil
}

// Stop shuts the worker down and closes the queue.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping tracker service...")

	var err error
	if s.worker != nil {
		err = s.worker.Shutdown(ctx)
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "tracker service stopped")
	return err
}

// Refresh loads the source, computes a fresh result and publishes it.
// Refreshes never overlap. On failure the previous snapshot stays
// published and the error is kept for GetStats.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "Service.Refresh",
		trace.WithAttributes(attribute.String("source", fmt.Sprint(s.source))))
	defer span.End()

	start := time.Now()
	s.refreshes.Add(1)
	defer func() { s.lastDuration.Store(time.Since(start).Milliseconds()) }()

	snap, err := s.refresh(ctx)
	if err != nil {
		s.failures.Add(1)
		s.lastErr.Store(&refreshFailure{err: err, at: time.Now()})
		metrics.RecordRefresh(metrics.ResultError)
		metrics.RecordRefreshError(errorKind(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.lastErr.Store(nil)
	metrics.RecordRefresh(metrics.ResultOK)
	span.SetAttributes(
		attribute.String("snapshot.id", snap.ID),
		attribute.Int("matches", len(snap.Result.Matches)),
		attribute.Int("participants", len(snap.Result.Participants)),
		attribute.Int("dates", len(snap.Result.Dates)),
	)
	if s.logger != nil {
		s.logger.Info(ctx, "snapshot published",
			logger.String("snapshot_id", snap.ID),
			logger.Int("matches", len(snap.Result.Matches)),
			logger.Int("participants", len(snap.Result.Participants)),
			logger.Duration("took", time.Since(start)))
	}
	return nil
}

func (s *Service) refresh(ctx context.Context) (*repository.Snapshot, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	table, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if s.abbreviator != nil {
		table = s.abbreviator.Table(table)
	}

	res, err := s.compute(ctx, table)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Publish(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("publishing snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) load(ctx context.Context) (model.Table, error) {
	ctx, span := s.tracer.Start(ctx, "Service.load")
	defer span.End()

	start := time.Now()
	table, err := s.source.Load(ctx)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.Table{}, fmt.Errorf("loading source: %w", err)
	}
	span.SetAttributes(
		attribute.Int("rows", len(table.Rows)),
		attribute.Int("columns", len(table.Columns)),
	)
	return table, nil
}

func (s *Service) compute(ctx context.Context, table model.Table) (engine.Result, error) {
	_, span := s.tracer.Start(ctx, "Service.compute")
	defer span.End()

	start := time.Now()
	res, err := engine.Compute(table)
	metrics.RecordComputeLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return engine.Result{}, fmt.Errorf("computing standings: %w", err)
	}
	span.SetAttributes(
		attribute.Int("matches", len(res.Matches)),
		attribute.Int("participants", len(res.Participants)),
	)
	return res, nil
}

// errorKind labels a refresh failure for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, source.ErrFetch):
		return "fetch"
	case errors.Is(err, source.ErrDecode):
		return "decode"
	case errors.Is(err, model.ErrInvalidSchema):
		return "invalid_schema"
	case errors.Is(err, model.ErrMissingRequiredField):
		return "missing_field"
	case errors.Is(err, model.ErrMalformedScore):
		return "malformed_score"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// RequestRefresh queues an asynchronous refresh. It returns false when the
// queue is full or the service is not running.
func (s *Service) RequestRefresh(ctx context.Context, reason string) (string, bool) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started || q == nil {
		return "", false
	}
	if reason == "" {
		reason = ReasonManual
	}
	req := model.RefreshRequest{ID: uuid.NewString(), Reason: reason, RequestedAt: time.Now()}
	if !q.Enqueue(ctx, req) {
		return "", false
	}
	return req.ID, true
}

// Ready reports whether a snapshot has been published.
func (s *Service) Ready(ctx context.Context) bool {
	_, err := s.store.Latest(ctx)
	return err == nil
}

func (s *Service) latest(ctx context.Context) (*repository.Snapshot, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		return nil, err
	}
	return snap, nil
}

// SnapshotAge returns how long ago the published snapshot was computed.
func (s *Service) SnapshotAge(ctx context.Context) (time.Duration, bool) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return 0, false
	}
	return time.Since(snap.ComputedAt), true
}

// Standings returns the whole standings table.
func (s *Service) Standings(ctx context.Context) ([]types.StandingEntry, error) {
	snap, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	return types.Standings(snap.Result.Standings), nil
}

// TopN returns the first n standings.
func (s *Service) TopN(ctx context.Context, n int) ([]types.StandingEntry, error) {
	if _, err := s.latest(ctx); err != nil {
		return nil, err
	}
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.Standings(entries), nil
}

// Rank returns a participant's standing and cumulative series.
func (s *Service) Rank(ctx context.Context, participant string) (types.ParticipantDetail, error) {
	snap, err := s.latest(ctx)
	if err != nil {
		return types.ParticipantDetail{}, err
	}
	p := model.Participant(participant)
	st, err := s.store.Rank(ctx, p)
	if err != nil {
		return types.ParticipantDetail{}, fmt.Errorf("%q: %w", participant, err)
	}
	series, _ := snap.Result.SeriesOf(p)
	return types.ParticipantDetail{
		StandingEntry: types.Standing(st),
		Points:        types.Points(series.Points),
	}, nil
}

// Series returns every participant's cumulative series in column order.
func (s *Service) Series(ctx context.Context) (types.SeriesView, error) {
	snap, err := s.latest(ctx)
	if err != nil {
		return types.SeriesView{}, err
	}
	dates := snap.Result.Dates
	if dates == nil {
		dates = []string{}
	}
	return types.SeriesView{Dates: dates, Series: types.Series(snap.Result.Series)}, nil
}

// Matches returns the scored matches played on date, or all of them when
// date is empty.
func (s *Service) Matches(ctx context.Context, date string) ([]types.MatchEntry, error) {
	snap, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	return types.Matches(snap.Result.MatchesOn(date)), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"queueSize":          s.queueSize,
		"refreshInterval":    s.refreshInterval.String(),
		"minRefreshInterval": s.minInterval.String(),
		"abbreviateTeams":    s.abbreviator != nil,
		"refreshes":          s.refreshes.Load(),
		"refreshFailures":    s.failures.Load(),
		"lastRefreshMs":      s.lastDuration.Load(),
		"ready":              false,
	}
	if s.source != nil {
		stats["source"] = fmt.Sprint(s.source)
	}

	if snap, err := s.store.Latest(ctx); err == nil {
		stats["ready"] = true
		stats["snapshotId"] = snap.ID
		stats["computedAt"] = snap.ComputedAt.UTC().Format(time.RFC3339)
		stats["participants"] = len(snap.Result.Participants)
		stats["matches"] = len(snap.Result.Matches)
		stats["dates"] = len(snap.Result.Dates)
	}
	if f := s.lastErr.Load(); f != nil {
		stats["lastError"] = f.err.Error()
		stats["lastErrorAt"] = f.at.UTC().Format(time.RFC3339)
	}

	if s.started {
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		stats["queueLength"] = s.queue.Len()
		stats["queueCapacity"] = s.queue.Cap()
		stats["worker"] = s.worker.Stats()
	}
	return stats
}
