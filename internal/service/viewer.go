package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// Query is a search request from any surface.
type Query struct {
	Address string
	Tab     string
	From    string // YYYY-MM-DD, optional
	To      string // YYYY-MM-DD, optional
}

// Viewer drives the dashboard tabs. It validates input before any network
// call and keeps per-view state in a Session.
type Viewer struct {
	history    *HistoryService
	positions  *PositionService
	defaultTab Tab
	loc        *time.Location
	logger     *slog.Logger
}

// NewViewer creates a Viewer. An empty defaultTab selects the positions tab.
func NewViewer(history *HistoryService, positions *PositionService, defaultTab Tab, loc *time.Location, logger *slog.Logger) *Viewer {
	if defaultTab == "" {
		defaultTab = TabPositions
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Viewer{
		history:    history,
		positions:  positions,
		defaultTab: defaultTab,
		loc:        loc,
		logger:     logger.With(slog.String("component", "viewer")),
	}
}

// PageSize is the history and trades page size.
func (v *Viewer) PageSize() int { return v.history.PageSize() }

type validQuery struct {
	addr string
	tab  Tab
	rng  domain.DateRange
}

func (v *Viewer) validate(q Query) (validQuery, error) {
	addr, err := domain.ParseAddress(q.Address)
	if err != nil {
		return validQuery{}, err
	}
	tab, err := ParseTab(q.Tab)
	if err != nil {
		return validQuery{}, err
	}
	if tab == "" {
		tab = v.defaultTab
	}
	rng, err := domain.ParseDateRange(q.From, q.To, v.loc)
	if err != nil {
		return validQuery{}, err
	}
	return validQuery{addr: addr, tab: tab, rng: rng}, nil
}

// Search starts a new view on sess at offset 0. Invalid input returns a
// *domain.ValidationError without touching the network or the session.
func (v *Viewer) Search(ctx context.Context, sess *Session, q Query) (*Page, error) {
	vq, err := v.validate(q)
	if err != nil {
		return nil, err
	}

	release, err := sess.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	sess.reset(vq.addr, vq.tab, vq.rng)
	page, err := v.load(ctx, vq.tab, vq.addr, vq.rng, 0)
	if err != nil {
		v.logger.WarnContext(ctx, "viewer: search failed",
			slog.String("session", sess.ID()),
			slog.String("tab", string(vq.tab)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	page.SessionID = sess.ID()
	return page, nil
}

// LoadMore fetches the next page of the session's search. The offset is
// advanced before the fetch and rolled back if it fails, so the next call
// retries the same page.
func (v *Viewer) LoadMore(ctx context.Context, sess *Session) (*Page, error) {
	release, err := sess.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	st := sess.State()
	if !st.Active {
		return nil, domain.ErrNoSearch
	}
	if !st.Tab.Paginated() {
		return nil, domain.ErrNotPaginated
	}

	size := v.history.PageSize()
	offset := sess.advance(size)
	page, err := v.history.FetchPage(ctx, st.Tab, st.Address, st.Range, offset)
	if err != nil {
		sess.rollback(size)
		v.logger.WarnContext(ctx, "viewer: load more failed",
			slog.String("session", sess.ID()),
			slog.Int("offset", offset),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	page.SessionID = sess.ID()
	return page, nil
}

// Page loads tab for q at offset without a session, for stateless callers.
func (v *Viewer) Page(ctx context.Context, q Query, offset int) (*Page, error) {
	vq, err := v.validate(q)
	if err != nil {
		return nil, err
	}
	return v.load(ctx, vq.tab, vq.addr, vq.rng, max(offset, 0))
}

func (v *Viewer) load(ctx context.Context, tab Tab, addr string, rng domain.DateRange, offset int) (*Page, error) {
	if tab == TabPositions {
		sum, err := v.positions.Summary(ctx, addr)
		if err != nil {
			return nil, err
		}
		return &Page{Tab: tab, Address: addr, Portfolio: &sum}, nil
	}
	return v.history.FetchPage(ctx, tab, addr, rng, offset)
}
