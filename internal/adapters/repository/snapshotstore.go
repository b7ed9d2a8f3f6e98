package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/osvo/club-world-cup-tracker/internal/domain/engine"
	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/pkg/metrics"
)

// SnapshotStore keeps the latest snapshot behind an atomic pointer.
// Readers never block a publish and never see a partial one.
type SnapshotStore struct {
	snapshot  atomic.Pointer[Snapshot]
	published atomic.Int64

	now   func() time.Time
	newID func() string
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish indexes res and swaps it in as the current snapshot.
func (s *SnapshotStore) Publish(_ context.Context, res engine.Result) (*Snapshot, error) {
	index := make(map[model.Participant]int, len(res.Standings))
	for i, st := range res.Standings {
		index[st.Participant] = i
	}
	snap := &Snapshot{
		ID:         s.newID(),
		ComputedAt: s.now(),
		Result:     res,
		Index:      index,
	}
	s.snapshot.Store(snap)
	s.published.Add(1)

	metrics.UpdateSnapshot(len(res.Matches), len(res.Participants), len(res.Dates), snap.ComputedAt.Unix())
	return snap, nil
}

// Latest returns the current snapshot.
func (s *SnapshotStore) Latest(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// TopN returns the first n standings of the current snapshot.
func (s *SnapshotStore) TopN(ctx context.Context, n int) ([]model.Standing, error) {
	if n < 1 {
		metrics.RecordError("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	table := snap.Result.Standings
	if n > len(table) {
		n = len(table)
	}
	out := make([]model.Standing, n)
	copy(out, table[:n])
	return out, nil
}

// Rank returns p's standing in the current snapshot.
func (s *SnapshotStore) Rank(ctx context.Context, p model.Participant) (model.Standing, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return model.Standing{}, err
	}
	i, ok := snap.Index[p]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return model.Standing{}, ErrNotFound
	}
	return snap.Result.Standings[i], nil
}

// Count returns the number of ranked participants, 0 before the first publish.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Result.Standings)
}

// Published returns how many snapshots have been published.
func (s *SnapshotStore) Published() int64 {
	return s.published.Load()
}
