package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrFetch  = errors.New("source fetch failed")
	ErrDecode = errors.New("source decode failed")
)
