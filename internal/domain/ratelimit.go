package domain

import (
	"context"
	"time"
)

// RateDecision is the verdict for one request against a rate limit.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter limits requests per key to limit within window. Implementations
// live in internal/cache/memory (single process) and internal/cache/redis
// (shared across processes).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error)
}
