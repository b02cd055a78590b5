package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/portfolio"
)

// PositionService builds the positions tab from the wallet's current holdings.
type PositionService struct {
	data   domain.MarketData
	now    func() time.Time
	logger *slog.Logger
}

// NewPositionService creates a PositionService. now may be nil.
func NewPositionService(data domain.MarketData, now func() time.Time, logger *slog.Logger) *PositionService {
	if now == nil {
		now = time.Now
	}
	return &PositionService{
		data:   data,
		now:    now,
		logger: logger.With(slog.String("component", "position_service")),
	}
}

// Summary fetches addr's positions and aggregates the open ones.
func (s *PositionService) Summary(ctx context.Context, addr string) (portfolio.Summary, error) {
	positions, err := s.data.Positions(ctx, addr)
	if err != nil {
		return portfolio.Summary{}, fmt.Errorf("position_service: fetch positions: %w", err)
	}

	sum := portfolio.Aggregate(positions, s.now())
	s.logger.DebugContext(ctx, "position_service: positions loaded",
		slog.String("address", addr),
		slog.Int("fetched", len(positions)),
		slog.Int("open", sum.Totals.Count),
	)
	return sum, nil
}
