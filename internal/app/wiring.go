package service

import (
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/osvo/club-world-cup-tracker/internal/adapters/source"
	"github.com/osvo/club-world-cup-tracker/internal/config"
	"github.com/osvo/club-world-cup-tracker/internal/domain/teams"
	"github.com/osvo/club-world-cup-tracker/pkg/logger"
)

// NewFromConfig builds a Service from a validated configuration: the source
// (URL when set, file otherwise), the optional team abbreviator and the
// tracer. Extra options are applied last.
func NewFromConfig(cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	abbr, err := newAbbreviator(cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithLogger(log),
		WithSource(newSource(cfg)),
		WithAbbreviator(abbr),
		WithTracer(newTracer(cfg)),
		WithQueueSize(cfg.RefreshQueueSize),
		WithRefreshInterval(cfg.RefreshInterval()),
		WithMinRefreshInterval(cfg.MinRefreshInterval()),
	}
	return New(append(base, opts...)...), nil
}

func newSource(cfg *config.Config) source.Source {
	if cfg.SourceURL != "" {
		return source.NewHTTPSource(cfg.SourceURL,
			source.WithTimeout(cfg.SourceTimeout()),
			source.WithCacheBust(cfg.SourceCacheBust),
		)
	}
	return source.NewFileSource(cfg.SourcePath)
}

func newAbbreviator(cfg *config.Config) (*teams.Abbreviator, error) {
	if !cfg.AbbreviateTeams {
		return nil, nil
	}
	opts := []teams.Option{teams.WithMaxDistance(cfg.TeamMaxDistance)}
	if cfg.TeamAliasesPath != "" {
		f, err := os.Open(cfg.TeamAliasesPath)
		if err != nil {
			return nil, fmt.Errorf("opening team aliases: %w", err)
		}
		defer func() { _ = f.Close() }()
		aliases, err := teams.LoadAliases(f)
		if err != nil {
			return nil, fmt.Errorf("loading team aliases: %w", err)
		}
		opts = append(opts, teams.WithAliases(aliases))
	}
	return teams.New(opts...), nil
}

// newTracer returns the globally registered tracer when tracing is enabled
// and a no-op tracer otherwise.
func newTracer(cfg *config.Config) trace.Tracer {
	if cfg.TracingEnabled {
		return otel.Tracer(tracerName)
	}
	return noop.NewTracerProvider().Tracer(tracerName)
}
