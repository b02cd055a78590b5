package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyview/internal/cache/memory"
	"github.com/alanyoungcy/polyview/internal/platform/polymarket"
	"github.com/alanyoungcy/polyview/internal/server/handler"
	"github.com/alanyoungcy/polyview/internal/server/middleware"
	"github.com/alanyoungcy/polyview/internal/service"
)

func testRoutes(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := polymarket.NewDataClient(upstream.URL)
	viewer := service.NewViewer(
		service.NewHistoryService(data, service.HistoryConfig{}, logger),
		service.NewPositionService(data, time.Now, logger),
		"", time.UTC, logger,
	)
	return Routes(cfg, Handlers{
		Health: handler.NewHealthHandler(nil, logger),
		View:   handler.NewViewHandler(viewer, logger),
	}, nil, memory.NewRateLimiter(), logger)
}

func TestRoutes(t *testing.T) {
	h := testRoutes(t, Config{})
	const addr = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"

	for _, target := range []string{
		"/api/health",
		"/api/positions?address=" + addr,
		"/api/history?address=" + addr,
		"/api/trades?address=" + addr,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader), target)
	}
}

func TestRoutes_ReadOnly(t *testing.T) {
	h := testRoutes(t, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/positions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "ws disabled without a hub")
}

func TestRoutes_RateLimited(t *testing.T) {
	h := testRoutes(t, Config{RateLimit: RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
