// Command mcp exposes the league standings as Model Context Protocol tools,
// over stdio by default or over streamable HTTP with -transport=http.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	app "github.com/osvo/club-world-cup-tracker/internal/app"
	"github.com/osvo/club-world-cup-tracker/internal/config"
	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
	"github.com/osvo/club-world-cup-tracker/pkg/logger"
)

const (
	serverName      = "prediction-tracker"
	serverVersion   = "1.0.0"
	refreshReason   = "mcp"
	shutdownTimeout = 10 * time.Second
)

// League is the read and refresh surface the tools are built on.
type League interface {
	Standings(ctx context.Context) ([]types.StandingEntry, error)
	TopN(ctx context.Context, n int) ([]types.StandingEntry, error)
	Rank(ctx context.Context, participant string) (types.ParticipantDetail, error)
	Series(ctx context.Context) (types.SeriesView, error)
	Matches(ctx context.Context, date string) ([]types.MatchEntry, error)
	RequestRefresh(ctx context.Context, reason string) (string, bool)
}

type StandingsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Number of rows to return (0 = whole table)"`
}

type ParticipantArgs struct {
	Name string `json:"name" jsonschema:"Participant name as written in the sheet header (required)"`
}

type MatchesArgs struct {
	Date string `json:"date,omitempty" jsonschema:"Only matches played on this date, e.g. 2025-06-14"`
}

type SeriesArgs struct{}

type RefreshArgs struct{}

func main() {
	var (
		transport = flag.String("transport", "stdio", "stdio or http")
		addr      = flag.String("addr", ":8090", "HTTP listen address (http transport)")
		mcpPath   = flag.String("path", "/mcp", "HTTP path for the MCP endpoint (http transport)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *transport, *addr, *mcpPath); err != nil {
		fmt.Fprintln(os.Stderr, "mcp:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, transport, addr, mcpPath string) error {
	if transport != "stdio" && transport != "http" {
		return fmt.Errorf("unknown transport %q", transport)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Stdout carries the protocol on stdio, so logs go to stderr.
	if err := logger.InitWithOptions(cfg.LogFormat, os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := app.NewFromConfig(cfg, log.Named("service"))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	server := newServer(svc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(gctx)
	})
	g.Go(func() error {
		// The worker stops with the transport, e.g. when stdin closes.
		defer cancel()
		defer stopService(svc)
		if transport == "stdio" {
			log.Info(gctx, "serving MCP over stdio")
			err := server.Run(gctx, &mcp.StdioTransport{})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
		return serveHTTP(gctx, server, addr, mcpPath, log)
	})
	return g.Wait()
}

func stopService(svc *app.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = svc.Stop(ctx)
}

func serveHTTP(ctx context.Context, server *mcp.Server, addr, path string, log logger.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving MCP over HTTP", logger.String("addr", addr), logger.String("path", path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP HTTP server failed: %w", err)
	}
	return nil
}

func newServer(league League) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "standings",
		Description: "League table in rank order with each participant's total points",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args StandingsArgs) (*mcp.CallToolResult, any, error) {
		if args.Limit < 0 {
			return toolError(fmt.Errorf("limit must not be negative")), nil, nil
		}
		if args.Limit == 0 {
			return toolJSON(league.Standings(ctx))
		}
		return toolJSON(league.TopN(ctx, args.Limit))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "participant",
		Description: "One participant's rank, total and cumulative points per match day",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ParticipantArgs) (*mcp.CallToolResult, any, error) {
		if args.Name == "" {
			return toolError(fmt.Errorf("name is required")), nil, nil
		}
		return toolJSON(league.Rank(ctx, args.Name))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "matches",
		Description: "Scored matches with every prediction and the points it earned",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MatchesArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(league.Matches(ctx, args.Date))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "series",
		Description: "Cumulative totals of every participant across match days",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SeriesArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(league.Series(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh",
		Description: "Queue a re-read of the predictions sheet",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RefreshArgs) (*mcp.CallToolResult, any, error) {
		id, ok := league.RequestRefresh(ctx, refreshReason)
		if !ok {
			return toolError(fmt.Errorf("refresh queue is full, try again later")), nil, nil
		}
		return toolJSON(map[string]string{"status": "accepted", "request_id": id}, nil)
	})

	return server
}

func toolJSON(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
