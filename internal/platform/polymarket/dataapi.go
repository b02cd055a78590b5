package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// DefaultDataHost is the public, unauthenticated Polymarket data API.
const DefaultDataHost = "https://data-api.polymarket.com"

// Data API endpoints consumed by the viewer.
const (
	EndpointTrades          = "/trades"
	EndpointActivity        = "/activity"
	EndpointPositions       = "/positions"
	EndpointClosedPositions = "/closed-positions"
)

// DataClient is the REST client for the Polymarket data API. Each call is
// independent: there is no retry and no response caching.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// DataOption configures a DataClient.
type DataOption func(*DataClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) DataOption {
	return func(c *DataClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) DataOption {
	return func(c *DataClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit paces outbound requests to rps per second. Requests wait for
// a token; none are dropped. rps <= 0 disables pacing.
func WithRateLimit(rps int) DataOption {
	return func(c *DataClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(logger *slog.Logger) DataOption {
	return func(c *DataClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewDataClient creates a data API client.
//
// baseURL is the API root, e.g. "https://data-api.polymarket.com".
func NewDataClient(baseURL string, opts ...DataOption) *DataClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultDataHost
	}
	c := &DataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues GET endpoint?params and returns the raw body. A non-2xx
// response yields an *APIError carrying the status and body.
func (c *DataClient) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "polymarket/data: request",
		slog.String("endpoint", endpoint),
		slog.String("query", params.Encode()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if err := statusError(endpoint, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Trades returns one page of /trades for user, normalized to TRADE records.
func (c *DataClient) Trades(ctx context.Context, user string, limit, offset int) ([]domain.ActivityRecord, error) {
	params := url.Values{}
	params.Set("user", user)
	setPositive(params, "limit", limit)
	params.Set("offset", strconv.Itoa(max(offset, 0)))

	body, err := c.Get(ctx, EndpointTrades, params)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get trades: %w", err)
	}

	var raw []APIActivity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode trades: %w", err)
	}

	out := make([]domain.ActivityRecord, 0, len(raw))
	for i := range raw {
		rec := raw[i].ToDomainActivity()
		if rec.Type == "" {
			rec.Type = domain.ActivityTrade
		}
		out = append(out, rec)
	}
	return out, nil
}

// Activity returns one page of /activity.
func (c *DataClient) Activity(ctx context.Context, q domain.ActivityQuery) ([]domain.ActivityRecord, error) {
	params := url.Values{}
	params.Set("user", q.User)
	setPositive(params, "limit", q.Limit)
	params.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	if q.Start > 0 {
		params.Set("start", strconv.FormatInt(q.Start, 10))
	}
	if q.End > 0 {
		params.Set("end", strconv.FormatInt(q.End, 10))
	}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}

	body, err := c.Get(ctx, EndpointActivity, params)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get activity: %w", err)
	}

	var raw []APIActivity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode activity: %w", err)
	}

	out := make([]domain.ActivityRecord, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToDomainActivity())
	}
	return out, nil
}

// Positions returns every current position for user, including dust.
func (c *DataClient) Positions(ctx context.Context, user string) ([]domain.Position, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("sizeThreshold", "0")

	body, err := c.Get(ctx, EndpointPositions, params)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get positions: %w", err)
	}

	var raw []APIPosition
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode positions: %w", err)
	}

	out := make([]domain.Position, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToDomainPosition())
	}
	return out, nil
}

// ClosedPositions returns one page of /closed-positions.
func (c *DataClient) ClosedPositions(ctx context.Context, q domain.ClosedPositionsQuery) ([]domain.ClosedPosition, error) {
	params := url.Values{}
	params.Set("user", q.User)
	setPositive(params, "limit", q.Limit)
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortDirection != "" {
		params.Set("sortDirection", q.SortDirection)
	}

	body, err := c.Get(ctx, EndpointClosedPositions, params)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get closed positions: %w", err)
	}

	var raw []APIClosedPosition
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode closed positions: %w", err)
	}

	out := make([]domain.ClosedPosition, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToDomainClosedPosition())
	}
	return out, nil
}

func setPositive(params url.Values, key string, n int) {
	if n > 0 {
		params.Set(key, strconv.Itoa(n))
	}
}

// Compile-time interface check.
var _ domain.MarketData = (*DataClient)(nil)
