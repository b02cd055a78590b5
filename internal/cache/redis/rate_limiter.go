package redis

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyview/internal/domain"
)

//go:embed scripts/sliding_window.lua
var slidingWindowLua string

// RateLimiter implements domain.RateLimiter with a sliding window kept in a
// Redis sorted set, so several viewer processes share one budget per client.
type RateLimiter struct {
	rdb           redis.Scripter
	slidingWindow *redis.Script
	prefix        string
	now           func() time.Time
}

// NewRateLimiter creates a RateLimiter backed by c, keyed under the
// client's namespace.
func NewRateLimiter(c *Client) *RateLimiter {
	return newRateLimiter(c.rdb, c.prefix)
}

func newRateLimiter(rdb redis.Scripter, prefix string) *RateLimiter {
	return &RateLimiter{
		rdb:           rdb,
		slidingWindow: redis.NewScript(slidingWindowLua),
		prefix:        normalizePrefix(prefix),
		now:           time.Now,
	}
}

func (rl *RateLimiter) key(key string) string {
	return namespacedKey(rl.prefix, "ratelimit", key)
}

// Allow counts one request for key and reports whether it fits in limit
// requests per window. Rejected requests are not counted.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateDecision, error) {
	if limit <= 0 || window <= 0 {
		return domain.RateDecision{Allowed: true}, nil
	}

	now := rl.now().UnixMicro()
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	result, err := rl.slidingWindow.Run(
		ctx,
		rl.rdb,
		[]string{rl.key(key)},
		now,
		window.Microseconds(),
		limit,
		member,
	).Int64Slice()
	if err != nil {
		return domain.RateDecision{}, fmt.Errorf("redis: rate limit allow %s: %w", key, err)
	}
	if len(result) < 3 {
		return domain.RateDecision{}, fmt.Errorf("redis: rate limit allow %s: unexpected result length %d", key, len(result))
	}

	return domain.RateDecision{
		Allowed:    result[0] == 1,
		Remaining:  int(result[1]),
		RetryAfter: time.Duration(result[2]) * time.Microsecond,
	}, nil
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
