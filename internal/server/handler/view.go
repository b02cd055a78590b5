package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polyview/internal/service"
)

// PageLoader loads one tab page without session state.
type PageLoader interface {
	Page(ctx context.Context, q service.Query, offset int) (*service.Page, error)
}

// ViewHandler serves the dashboard tabs as JSON. Every request is independent:
// pagination state lives in the caller's offset parameter.
type ViewHandler struct {
	viewer PageLoader
	logger *slog.Logger
}

// NewViewHandler creates a ViewHandler.
func NewViewHandler(viewer PageLoader, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		viewer: viewer,
		logger: logHandler(logger, "view"),
	}
}

// Positions returns open positions and totals.
// GET /api/positions?address=
func (h *ViewHandler) Positions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.TabPositions)
}

// History returns one page of merged activity.
// GET /api/history?address=&offset=&from=&to=
func (h *ViewHandler) History(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.TabHistory)
}

// Trades returns one page of trades.
// GET /api/trades?address=&offset=
func (h *ViewHandler) Trades(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.TabTrades)
}

func (h *ViewHandler) serve(w http.ResponseWriter, r *http.Request, tab service.Tab) {
	q := r.URL.Query()
	offset, err := parseOffset(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := service.Query{
		Address: q.Get("address"),
		Tab:     string(tab),
	}
	if tab == service.TabHistory {
		query.From = q.Get("from")
		query.To = q.Get("to")
	}

	page, err := h.viewer.Page(r.Context(), query, offset)
	if err != nil {
		status, _ := Classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "view: load failed",
				slog.String("tab", string(tab)),
				slog.Int("offset", offset),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
