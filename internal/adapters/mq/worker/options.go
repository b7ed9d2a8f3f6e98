package worker

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/osvo/club-world-cup-tracker/pkg/logger"
)

// Option applies a configuration option to the RefreshWorker.
type Option func(*RefreshWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *RefreshWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *RefreshWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithInterval makes the worker request a refresh every d. Zero disables it.
func WithInterval(d time.Duration) Option {
	return func(w *RefreshWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMinInterval spaces refreshes at least d apart.
func WithMinInterval(d time.Duration) Option {
	return func(w *RefreshWorker) {
		if d > 0 {
			w.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}
