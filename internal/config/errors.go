package config

import (
	"errors"
)

// Sentinel errors returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid tracker configuration")
	ErrLoadConfig    = errors.New("loading tracker configuration")
)
