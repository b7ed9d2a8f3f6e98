package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNotFound     = errors.New("participant not found")
	ErrInvalidLimit = errors.New("invalid standings limit")
	ErrNoSnapshot   = errors.New("no snapshot published")
)
