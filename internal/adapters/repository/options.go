package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock overrides the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how snapshot ids are produced.
func WithIDGenerator(gen func() string) Option {
	return func(s *SnapshotStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}
