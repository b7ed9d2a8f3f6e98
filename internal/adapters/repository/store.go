// Package repository holds the published standings snapshot.
package repository

import (
	"context"
	"time"

	"github.com/osvo/club-world-cup-tracker/internal/domain/engine"
	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

// Snapshot is one published computation. It is immutable once published.
type Snapshot struct {
	ID         string
	ComputedAt time.Time
	Result     engine.Result
	// Index maps a participant to its position in Result.Standings.
	Index map[model.Participant]int
}

// Store publishes snapshots and answers reads against the latest one.
type Store interface {
	// Publish replaces the current snapshot with one built from res.
	Publish(ctx context.Context, res engine.Result) (*Snapshot, error)

	// Latest returns the current snapshot or ErrNoSnapshot.
	Latest(ctx context.Context) (*Snapshot, error)

	// TopN returns the first n standings. n larger than the table returns
	// the whole table; n < 1 is ErrInvalidLimit.
	TopN(ctx context.Context, n int) ([]model.Standing, error)

	// Rank returns the standing of one participant or ErrNotFound.
	Rank(ctx context.Context, p model.Participant) (model.Standing, error)

	// Count returns the number of ranked participants.
	Count(ctx context.Context) int
}
