package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/polyview/internal/cache/memory"
	"github.com/alanyoungcy/polyview/internal/cache/redis"
	"github.com/alanyoungcy/polyview/internal/config"
	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/platform/polymarket"
	"github.com/alanyoungcy/polyview/internal/server/handler"
	"github.com/alanyoungcy/polyview/internal/service"
)

// Dependencies bundles everything the modes need. It is constructed by Wire
// and torn down by the returned cleanup function.
type Dependencies struct {
	Data     *polymarket.DataClient
	Viewer   *service.Viewer
	Location *time.Location

	// Server mode only.
	RateLimiter domain.RateLimiter
	Health      map[string]handler.Pinger
}

// Wire constructs the concrete dependencies for cfg and returns them together
// with a cleanup function that should be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	data := polymarket.NewDataClient(cfg.DataAPI.Host,
		polymarket.WithTimeout(cfg.DataAPI.Timeout.Duration),
		polymarket.WithRateLimit(cfg.DataAPI.RateLimitRPS),
		polymarket.WithLogger(logger.With(slog.String("component", "data_api"))),
	)

	history := service.NewHistoryService(data, service.HistoryConfig{
		PageSize:             cfg.DataAPI.PageSize,
		HistoryLimit:         cfg.DataAPI.HistoryLimit,
		ClosedPositionsLimit: cfg.DataAPI.ClosedPositionsLimit,
		Location:             loc,
	}, logger)
	positions := service.NewPositionService(data, time.Now, logger)

	defaultTab, err := service.ParseTab(strings.ToLower(cfg.View.DefaultTab))
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	deps := &Dependencies{
		Data:     data,
		Viewer:   service.NewViewer(history, positions, defaultTab, loc, logger),
		Location: loc,
		Health:   map[string]handler.Pinger{},
	}

	if !cfg.ServerEnabled() || !cfg.Server.RateLimit.Enabled {
		return deps, cleanup, nil
	}

	// --- Rate-limit backend ---
	switch cfg.Server.RateLimit.Backend {
	case config.BackendRedis:
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.Health["redis"] = redisClient
	default:
		deps.RateLimiter = memory.NewRateLimiter()
	}

	return deps, cleanup, nil
}
