package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyview/internal/render"
	"github.com/alanyoungcy/polyview/internal/server"
	"github.com/alanyoungcy/polyview/internal/server/handler"
	"github.com/alanyoungcy/polyview/internal/server/ws"
	"github.com/alanyoungcy/polyview/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// ErrNoAddress is returned in cli mode when no wallet address was given.
var ErrNoAddress = errors.New("app: cli mode requires -address")

// CLIOptions is the one-shot query run in cli mode.
type CLIOptions struct {
	Query service.Query
	// Pages is how many history or trades pages to print; values below 1
	// print one.
	Pages int
	Out   io.Writer
	Color bool
}

// CLIMode runs one search, prints it, then follows "load more" until Pages
// pages have been printed or the view is exhausted.
func (a *App) CLIMode(ctx context.Context, deps *Dependencies) error {
	if a.cli.Query.Address == "" {
		return ErrNoAddress
	}
	out := a.cli.Out
	if out == nil {
		out = os.Stdout
	}
	term := render.NewTerminal(out, a.cli.Color)

	sess := service.NewSession()
	page, err := deps.Viewer.Search(ctx, sess, a.cli.Query)
	if err != nil {
		return fmt.Errorf("app: search: %w", err)
	}
	if err := term.Page(page); err != nil {
		return fmt.Errorf("app: render: %w", err)
	}

	for printed := 1; printed < a.cli.Pages && page.HasMore; printed++ {
		page, err = deps.Viewer.LoadMore(ctx, sess)
		if err != nil {
			return fmt.Errorf("app: load more: %w", err)
		}
		if err := term.Page(page); err != nil {
			return fmt.Errorf("app: render: %w", err)
		}
	}
	return nil
}

// ServerMode serves the HTTP API and WebSocket sessions until ctx is
// cancelled, then shuts the server down gracefully.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.Viewer, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			Enabled:  a.cfg.Server.RateLimit.Enabled,
			Requests: a.cfg.Server.RateLimit.Requests,
			Window:   a.cfg.Server.RateLimit.Window.Duration,
		},
	}, server.Handlers{
		Health: handler.NewHealthHandler(deps.Health, a.logger),
		View:   handler.NewViewHandler(deps.Viewer, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	printBanner(os.Stderr, a.cfg, deps)
	a.logger.InfoContext(ctx, "HTTP server listening",
		slog.Int("port", a.cfg.Server.Port),
		slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
	)

	return g.Wait()
}
