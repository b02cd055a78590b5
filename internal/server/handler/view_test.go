package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/platform/polymarket"
	"github.com/alanyoungcy/polyview/internal/service"
)

const wallet = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// upstream fakes the data API and counts requests.
func upstream(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case polymarket.EndpointPositions:
			_, _ = w.Write([]byte(`[{"conditionId":"c1","title":"Fed cut?","outcome":"Yes","size":50,"avgPrice":0.4,"curPrice":0.6}]`))
		case polymarket.EndpointActivity:
			_, _ = w.Write([]byte(`[{"type":"REDEEM","conditionId":"c1","usdcSize":10,"timestamp":1704100000,"outcome":"Yes"}]`))
		case polymarket.EndpointClosedPositions:
			_, _ = w.Write([]byte(`[{"conditionId":"c2","outcome":"No","avgPrice":0.5,"realizedPnl":-2,"totalBought":10,"endDate":"2024-01-02T00:00:00Z"}]`))
		case polymarket.EndpointTrades:
			_, _ = w.Write([]byte(`[{"side":"SELL","conditionId":"c3","size":100,"price":0.03,"timestamp":1704000000}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newHandler(baseURL string) *ViewHandler {
	logger := discard()
	data := polymarket.NewDataClient(baseURL)
	now := func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }
	viewer := service.NewViewer(
		service.NewHistoryService(data, service.HistoryConfig{Now: now}, logger),
		service.NewPositionService(data, now, logger),
		service.TabPositions, time.UTC, logger,
	)
	return NewViewHandler(viewer, logger)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestPositions(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK)
	h := newHandler(srv.URL)

	rec := httptest.NewRecorder()
	h.Positions(rec, httptest.NewRequest(http.MethodGet, "/api/positions?address="+wallet, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tab       string `json:"tab"`
		Portfolio struct {
			Totals struct {
				Bet        string `json:"bet"`
				Value      string `json:"value"`
				PnLPercent string `json:"pnlPercent"`
				Count      int    `json:"count"`
			} `json:"totals"`
		} `json:"portfolio"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "positions", body.Tab)
	assert.Equal(t, 1, body.Portfolio.Totals.Count)
	assert.Equal(t, "20", body.Portfolio.Totals.Bet)
	assert.Equal(t, "30", body.Portfolio.Totals.Value)
	assert.Equal(t, "50", body.Portfolio.Totals.PnLPercent)
}

func TestHistory_MergesSynthesizedLoss(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK)
	h := newHandler(srv.URL)

	rec := httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/history?address="+wallet+"&from=2024-01-01&to=2024-01-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Range string `json:"range"`
		Rows  []struct {
			Type           string `json:"type"`
			ConditionID    string `json:"conditionId"`
			Classification struct {
				Label   string `json:"label"`
				Display string `json:"display"`
			} `json:"classification"`
		} `json:"rows"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "2024-01-01..2024-01-31", body.Range)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "LOST", body.Rows[0].Type)
	assert.Equal(t, "-$5.00", body.Rows[0].Classification.Display)
	assert.Equal(t, "Claimed", body.Rows[1].Classification.Label)
	assert.Equal(t, "+$10.00", body.Rows[1].Classification.Display)
}

func TestTrades(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK)
	h := newHandler(srv.URL)

	rec := httptest.NewRecorder()
	h.Trades(rec, httptest.NewRequest(http.MethodGet, "/api/trades?address="+wallet+"&offset=20", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Offset int  `json:"offset"`
		Append bool `json:"append"`
		Rows   []struct {
			Classification struct {
				Label   string `json:"label"`
				Display string `json:"display"`
			} `json:"classification"`
		} `json:"rows"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 20, body.Offset)
	assert.True(t, body.Append)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Lost", body.Rows[0].Classification.Label)
	assert.Equal(t, "-$3.00", body.Rows[0].Classification.Display)
}

func TestInvalidInputMakesNoUpstreamCalls(t *testing.T) {
	srv, hits := upstream(t, http.StatusOK)
	h := newHandler(srv.URL)

	for _, target := range []string{
		"/api/positions?address=not-an-address",
		"/api/history",
		"/api/history?address=" + wallet + "&from=2024-02-01&to=2024-01-01",
		"/api/trades?address=" + wallet + "&offset=-1",
	} {
		rec := httptest.NewRecorder()
		h.History(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body ErrorBody
		decode(t, rec, &body)
		assert.Equal(t, "validation", body.Code, target)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestUpstreamFailure(t *testing.T) {
	srv, _ := upstream(t, http.StatusInternalServerError)
	h := newHandler(srv.URL)

	rec := httptest.NewRecorder()
	h.Positions(rec, httptest.NewRequest(http.MethodGet, "/api/positions?address="+wallet, nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "upstream", body.Code)
	assert.Equal(t, "data API returned 500", body.Error)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrBusy, http.StatusConflict, "busy"},
		{domain.ErrNoSearch, http.StatusConflict, "no_search"},
		{domain.ErrNotPaginated, http.StatusBadRequest, "not_paginated"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, body := Classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, body.Code, tt.err.Error())
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, discard()).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	h := NewHealthHandler(map[string]Pinger{"redis": fakePinger{err: errors.New("down")}}, discard())
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"error"`)
}
