package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyview/internal/activity"
	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/portfolio"
)

// DefaultPageSize is the number of records per history or trades page.
const DefaultPageSize = 20

// Page is one rendered view of a tab. History and trades pages carry Rows;
// the positions tab carries Portfolio.
type Page struct {
	SessionID string             `json:"sessionId,omitempty"`
	Tab       Tab                `json:"tab"`
	Address   string             `json:"address"`
	Offset    int                `json:"offset"`
	Append    bool               `json:"append"`
	HasMore   bool               `json:"hasMore"`
	Range     string             `json:"range,omitempty"`
	Rows      []activity.Row     `json:"rows,omitempty"`
	Portfolio *portfolio.Summary `json:"portfolio,omitempty"`
	Partial   bool               `json:"partial,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`

	Resolution activity.Resolution    `json:"-"`
	Losses     activity.LossSynthesis `json:"-"`
}

// HistoryConfig sizes the history pipeline.
type HistoryConfig struct {
	PageSize             int
	HistoryLimit         int
	ClosedPositionsLimit int
	Location             *time.Location
	Now                  func() time.Time
}

// HistoryService builds the history and trades tabs: it fetches a page and,
// for the first page of a history search, resolves redemption outcomes and
// merges synthesized losses.
type HistoryService struct {
	data     domain.MarketData
	resolver *activity.OutcomeResolver
	losses   *activity.LossSynthesizer
	pageSize int
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewHistoryService creates a HistoryService over the data API.
func NewHistoryService(data domain.MarketData, cfg HistoryConfig, logger *slog.Logger) *HistoryService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger = logger.With(slog.String("component", "history_service"))
	return &HistoryService{
		data:     data,
		resolver: activity.NewOutcomeResolver(data, cfg.HistoryLimit, logger),
		losses: activity.NewLossSynthesizer(data, cfg.ClosedPositionsLimit,
			activity.WithClock(cfg.Now),
			activity.WithSynthLogger(logger),
		),
		pageSize: cfg.PageSize,
		loc:      cfg.Location,
		now:      cfg.Now,
		logger:   logger,
	}
}

// PageSize is the configured page size.
func (s *HistoryService) PageSize() int { return s.pageSize }

// FetchPage loads one page of tab (history or trades) for addr at offset.
func (s *HistoryService) FetchPage(ctx context.Context, tab Tab, addr string, rng domain.DateRange, offset int) (*Page, error) {
	var (
		raw []domain.ActivityRecord
		err error
	)
	switch tab {
	case TabHistory:
		raw, err = s.data.Activity(ctx, domain.ActivityQuery{
			User:   addr,
			Limit:  s.pageSize,
			Offset: offset,
			Start:  rng.StartUnix(),
			End:    rng.EndUnix(),
		})
	case TabTrades:
		raw, err = s.data.Trades(ctx, addr, s.pageSize, offset)
	default:
		return nil, fmt.Errorf("history_service: %s: %w", tab, domain.ErrNotPaginated)
	}
	if err != nil {
		return nil, fmt.Errorf("history_service: fetch %s page: %w", tab, err)
	}

	page := &Page{
		Tab:     tab,
		Address: addr,
		Offset:  offset,
		Append:  offset > 0,
		HasMore: len(raw) >= s.pageSize,
	}
	if !rng.IsZero() {
		page.Range = rng.String()
	}

	var losses []domain.ActivityRecord
	if tab == TabHistory && offset == 0 {
		page.Resolution = s.resolver.Resolve(ctx, addr, raw)
		page.Losses = s.losses.Synthesize(ctx, addr, raw)
		losses = page.Losses.Losses
		s.noteDegradation(ctx, addr, page, raw)
	}

	merged := activity.Merge(raw, losses, rng)
	page.Rows = activity.Rows(merged, s.now(), s.loc)

	s.logger.DebugContext(ctx, "history_service: page loaded",
		slog.String("tab", string(tab)),
		slog.String("address", addr),
		slog.Int("offset", offset),
		slog.Int("fetched", len(raw)),
		slog.Int("rows", len(page.Rows)),
	)
	return page, nil
}

// noteDegradation records enrichment failures on page. Outcomes the resolver
// missed but the closed-positions backfill found do not count.
func (s *HistoryService) noteDegradation(ctx context.Context, addr string, page *Page, raw []domain.ActivityRecord) {
	unresolved := activity.UnresolvedOutcomes(raw)
	if page.Resolution.Err != nil || len(unresolved) > 0 {
		page.Warnings = append(page.Warnings, "outcome resolution incomplete")
	}
	if page.Losses.Err != nil {
		page.Warnings = append(page.Warnings, "loss history unavailable")
	}
	page.Partial = len(page.Warnings) > 0
	if page.Partial {
		s.logger.InfoContext(ctx, "history_service: partial enrichment",
			slog.String("address", addr),
			slog.Int("resolved", page.Resolution.Filled+page.Losses.Backfilled),
			slog.Int("unresolved", len(unresolved)),
			slog.Int("losses", len(page.Losses.Losses)),
		)
	}
}
