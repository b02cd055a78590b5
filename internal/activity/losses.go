package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// DefaultClosedPositionsLimit bounds the closed-positions page used for loss
// synthesis.
const DefaultClosedPositionsLimit = 50

// ClosedPositionSource is the subset of the data API the synthesizer needs.
type ClosedPositionSource interface {
	ClosedPositions(ctx context.Context, q domain.ClosedPositionsQuery) ([]domain.ClosedPosition, error)
}

// LossSynthesis is the outcome of one synthesizer run. Partial and Err are
// set when the closed-positions fetch failed; Losses is then empty.
type LossSynthesis struct {
	Losses     []domain.ActivityRecord
	Backfilled int
	Partial    bool
	Err        error
}

// LossSynthesizer derives LOST records from closed positions with a negative
// realized P&L, since the data API emits no loss event.
type LossSynthesizer struct {
	source ClosedPositionSource
	limit  int
	now    func() time.Time
	logger *slog.Logger
}

// SynthOption configures a LossSynthesizer.
type SynthOption func(*LossSynthesizer)

// WithClock overrides the time source used for positions without an end date.
func WithClock(now func() time.Time) SynthOption {
	return func(s *LossSynthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSynthLogger sets the logger.
func WithSynthLogger(logger *slog.Logger) SynthOption {
	return func(s *LossSynthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLossSynthesizer creates a LossSynthesizer. limit <= 0 uses
// DefaultClosedPositionsLimit.
func NewLossSynthesizer(source ClosedPositionSource, limit int, opts ...SynthOption) *LossSynthesizer {
	if limit <= 0 {
		limit = DefaultClosedPositionsLimit
	}
	s := &LossSynthesizer{
		source: source,
		limit:  limit,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize fetches the wallet's worst closed positions and returns one LOST
// record per position with realizedPnl < 0. REDEEM/CLAIM records of page still
// missing an outcome are back-filled in place from the same list.
func (s *LossSynthesizer) Synthesize(ctx context.Context, user string, page []domain.ActivityRecord) LossSynthesis {
	closed, err := s.source.ClosedPositions(ctx, domain.ClosedPositionsQuery{
		User:          user,
		Limit:         s.limit,
		SortBy:        "realizedPnl",
		SortDirection: "ASC",
	})
	if err != nil {
		s.logger.WarnContext(ctx, "activity: loss synthesis skipped",
			slog.String("user", user),
			slog.String("error", err.Error()),
		)
		return LossSynthesis{
			Partial: true,
			Err:     fmt.Errorf("activity: closed positions: %w", err),
		}
	}

	var out LossSynthesis
	for i := range closed {
		if rec, ok := s.lossRecord(&closed[i]); ok {
			out.Losses = append(out.Losses, rec)
		}
	}
	out.Backfilled = backfillFromClosed(page, closed)
	return out
}

func (s *LossSynthesizer) lossRecord(cp *domain.ClosedPosition) (domain.ActivityRecord, bool) {
	if cp.RealizedPnl >= 0 {
		return domain.ActivityRecord{}, false
	}
	ts := s.now().Unix()
	if cp.EndDate != nil && !cp.EndDate.IsZero() {
		ts = cp.EndDate.Unix()
	}
	return domain.ActivityRecord{
		Type:        domain.ActivityLost,
		Timestamp:   ts,
		ConditionID: cp.ConditionID,
		Title:       cp.Title,
		Icon:        cp.Icon,
		EventSlug:   cp.EventSlug,
		Slug:        cp.Slug,
		Outcome:     cp.Outcome,
		Size:        cp.TotalBought,
		USDCSize:    math.Abs(cp.RealizedPnl),
		Price:       cp.AvgPrice,
		Synthetic:   true,
	}, true
}

func backfillFromClosed(page []domain.ActivityRecord, closed []domain.ClosedPosition) int {
	byCondition := make(map[string]*domain.ClosedPosition, len(closed))
	for i := range closed {
		cp := &closed[i]
		if cp.ConditionID == "" || cp.Outcome == "" {
			continue
		}
		if _, ok := byCondition[cp.ConditionID]; !ok {
			byCondition[cp.ConditionID] = cp
		}
	}

	filled := 0
	for i := range page {
		rec := &page[i]
		if !needsOutcome(rec) {
			continue
		}
		cp, ok := byCondition[rec.ConditionID]
		if !ok {
			continue
		}
		rec.Outcome = cp.Outcome
		if rec.Price == 0 {
			rec.Price = cp.AvgPrice
		}
		filled++
	}
	return filled
}
