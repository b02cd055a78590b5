package polymarket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyview/internal/domain"
)

const testWallet = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"

func newTestServer(t *testing.T, path string, body string, gotQuery *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if gotQuery != nil {
			*gotQuery = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTrades_DefaultsTypeAndSendsPaging(t *testing.T) {
	var q url.Values
	srv := newTestServer(t, EndpointTrades, `[
		{"proxyWallet":"0xabc","side":"buy","conditionId":"0xc1","size":"100","price":0.42,
		 "timestamp":1704067200,"title":"Will it rain?","outcome":"Yes","eventSlug":"rain"}
	]`, &q)

	c := NewDataClient(srv.URL + "/")
	got, err := c.Trades(context.Background(), testWallet, 20, 40)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, testWallet, q.Get("user"))
	assert.Equal(t, "20", q.Get("limit"))
	assert.Equal(t, "40", q.Get("offset"))

	rec := got[0]
	assert.Equal(t, domain.ActivityTrade, rec.Type)
	assert.Equal(t, domain.SideBuy, rec.Side)
	assert.Equal(t, 100.0, rec.Size)
	assert.Equal(t, 0.42, rec.Price)
	assert.Equal(t, int64(1704067200), rec.Timestamp)
	assert.Equal(t, "rain", rec.MarketSlug())
}

func TestActivity_SendsRangeAndType(t *testing.T) {
	var q url.Values
	srv := newTestServer(t, EndpointActivity, `[
		{"type":"redeem","conditionId":"0xc1","usdc_size":"12.5","timestamp":"1704067200000"}
	]`, &q)

	c := NewDataClient(srv.URL)
	got, err := c.Activity(context.Background(), domain.ActivityQuery{
		User:  testWallet,
		Limit: 20,
		Start: 1704067200,
		End:   1706745599,
		Type:  domain.ActivityRedeem,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "0", q.Get("offset"))
	assert.Equal(t, "1704067200", q.Get("start"))
	assert.Equal(t, "1706745599", q.Get("end"))
	assert.Equal(t, "REDEEM", q.Get("type"))

	assert.Equal(t, domain.ActivityRedeem, got[0].Type)
	assert.Equal(t, 12.5, got[0].USDCSize)
	assert.Equal(t, int64(1704067200), got[0].Timestamp, "millisecond timestamps are scaled to seconds")
}

func TestActivity_OmitsOpenRange(t *testing.T) {
	var q url.Values
	srv := newTestServer(t, EndpointActivity, `[]`, &q)

	c := NewDataClient(srv.URL)
	got, err := c.Activity(context.Background(), domain.ActivityQuery{User: testWallet, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, q.Has("start"))
	assert.False(t, q.Has("end"))
	assert.False(t, q.Has("type"))
}

func TestPositions_IncludesDust(t *testing.T) {
	var q url.Values
	srv := newTestServer(t, EndpointPositions, `[
		{"conditionId":"0xc1","title":"T","outcome":"No","size":50,"buyPrice":"0.4","currentPrice":0.6,
		 "slug":"m-slug","end_date":"2030-01-01"}
	]`, &q)

	c := NewDataClient(srv.URL)
	got, err := c.Positions(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "0", q.Get("sizeThreshold"))
	p := got[0]
	assert.Equal(t, 0.4, p.AvgPrice)
	assert.Equal(t, 0.6, p.CurrentPrice)
	assert.Equal(t, "m-slug", p.MarketSlug())
	require.NotNil(t, p.EndDate)
	assert.Equal(t, 2030, p.EndDate.Year())
}

func TestClosedPositions_SendsSort(t *testing.T) {
	var q url.Values
	srv := newTestServer(t, EndpointClosedPositions, `[
		{"conditionId":"0xc9","outcome":"Yes","avgPrice":0.7,"realizedPnl":-35,"totalBought":50,
		 "endDate":"2024-01-15T12:00:00Z"}
	]`, &q)

	c := NewDataClient(srv.URL)
	got, err := c.ClosedPositions(context.Background(), domain.ClosedPositionsQuery{
		User:          testWallet,
		Limit:         50,
		SortBy:        "realizedPnl",
		SortDirection: "ASC",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "realizedPnl", q.Get("sortBy"))
	assert.Equal(t, "ASC", q.Get("sortDirection"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, -35.0, got[0].RealizedPnl)
	require.NotNil(t, got[0].EndDate)
	assert.Equal(t, int64(1705320000), got[0].EndDate.Unix())
}

func TestGet_NonSuccessReturnsAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"forbidden", http.StatusForbidden, domain.ErrUnauthorized},
		{"server error", http.StatusBadGateway, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			c := NewDataClient(srv.URL)
			_, err := c.Trades(context.Background(), testWallet, 20, 0)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, EndpointTrades, apiErr.Endpoint)
			assert.Contains(t, apiErr.Body, "nope")
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestGet_MalformedBody(t *testing.T) {
	srv := newTestServer(t, EndpointPositions, `{"not":"an array"}`, nil)

	c := NewDataClient(srv.URL)
	_, err := c.Positions(context.Background(), testWallet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode positions")
}

func TestGet_RateLimitWaitHonoursContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewDataClient(srv.URL, WithRateLimit(1))
	_, err := c.Trades(context.Background(), testWallet, 20, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Trades(ctx, testWallet, 20, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewDataClient_DefaultHost(t *testing.T) {
	c := NewDataClient("  ")
	assert.Equal(t, DefaultDataHost, c.baseURL)
	assert.Nil(t, c.limiter)
}
