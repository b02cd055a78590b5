// Command polyview is a read-only Polymarket wallet viewer. In cli mode it
// prints one wallet's positions, history, or trades; in server mode it
// serves the same views over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/alanyoungcy/polyview/internal/app"
	"github.com/alanyoungcy/polyview/internal/config"
	"github.com/alanyoungcy/polyview/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	mode := flag.String("mode", "", "override mode: cli or server")
	address := flag.String("address", "", "wallet address (0x + 40 hex)")
	tab := flag.String("tab", "", "positions, history or trades")
	from := flag.String("from", "", "history start date, YYYY-MM-DD")
	to := flag.String("to", "", "history end date, YYYY-MM-DD")
	pages := flag.Int("pages", 1, "history/trades pages to print")
	color := flag.Bool("color", true, "colorize terminal output")
	flag.Parse()

	// Bootstrap logger until the configured one is known.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	logger = newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Debug("polyview starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
		slog.Any("effective", config.RedactedConfig(cfg)),
	)

	application := app.New(cfg, app.CLIOptions{
		Query: service.Query{
			Address: *address,
			Tab:     *tab,
			From:    *from,
			To:      *to,
		},
		Pages: *pages,
		Out:   os.Stdout,
		Color: *color,
	}, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
			return
		}
		logger.Error("application exited with error",
			slog.String("error", err.Error()),
		)
		fmt.Fprintf(os.Stderr, "polyview: %v\n", err)
		application.Close()
		os.Exit(1)
	}
}

// newLogger builds the process logger. cli mode logs to stderr so stdout
// carries only the rendered tables.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if cfg.Mode == "cli" {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
