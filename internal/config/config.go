// Package config defines the tracker configuration and how it is loaded.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// SourcePath is a local CSV file with the prediction sheet.
	SourcePath string `koanf:"source_path" validate:"required_without=SourceURL"`

	// SourceURL is fetched instead of SourcePath when set.
	SourceURL string `koanf:"source_url" validate:"required_without=SourcePath,omitempty,url"`

	// SourceTimeoutMS bounds one fetch of SourceURL.
	SourceTimeoutMS int `koanf:"source_timeout_ms" validate:"gt=0"`

	// SourceCacheBust appends nocache=<unix-ms> to every fetch.
	SourceCacheBust bool `koanf:"source_cache_bust"`

	// RefreshIntervalS re-reads the source periodically; 0 disables the timer.
	RefreshIntervalS int `koanf:"refresh_interval_s" validate:"gte=0"`

	// RefreshQueueSize bounds pending refresh requests.
	RefreshQueueSize int `koanf:"refresh_queue_size" validate:"gte=1"`

	// RefreshMinIntervalMS is the minimum spacing between two refreshes.
	RefreshMinIntervalMS int `koanf:"refresh_min_interval_ms" validate:"gte=0"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit" validate:"gte=1"`

	// AbbreviateTeams rewrites club names to three-letter codes before scoring.
	AbbreviateTeams bool `koanf:"abbreviate_teams"`

	// TeamAliasesPath is an optional YAML file extending the built-in aliases.
	TeamAliasesPath string `koanf:"team_aliases_path"`

	// TeamMaxDistance is the largest edit distance accepted for a fuzzy match.
	TeamMaxDistance int `koanf:"team_max_distance" validate:"gte=0"`

	// TracingEnabled installs an OpenTelemetry tracer provider.
	TracingEnabled bool `koanf:"tracing_enabled"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		SourcePath:           "data.csv",
		SourceTimeoutMS:      10_000,
		SourceCacheBust:      true,
		RefreshIntervalS:     300,
		RefreshQueueSize:     16,
		RefreshMinIntervalMS: 2_000,
		MaxStandingsLimit:    100,
		TeamMaxDistance:      2,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SourceTimeout returns SourceTimeoutMS as a duration.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalS) * time.Second
}

// MinRefreshInterval returns RefreshMinIntervalMS as a duration.
func (c *Config) MinRefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinIntervalMS) * time.Millisecond
}
