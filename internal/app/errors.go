package service

import (
	"errors"

	"github.com/osvo/club-world-cup-tracker/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNoSource   = errors.New("no source configured")
	ErrNotStarted = errors.New("service not started")
	ErrNotReady   = errors.New("standings not computed yet")
	ErrNotFound   = repository.ErrNotFound
	ErrBadLimit   = repository.ErrInvalidLimit
)
