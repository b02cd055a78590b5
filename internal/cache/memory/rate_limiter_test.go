package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := rl.Allow(ctx, "ip", 3, 3*time.Second)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := rl.Allow(ctx, "ip", 3, 3*time.Second)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	now = now.Add(time.Second)
	d, err = rl.Allow(ctx, "ip", 3, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "one token refilled")

	d, err = rl.Allow(ctx, "other", 3, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRateLimiter_DisabledAndSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	d, err := rl.Allow(ctx, "ip", 0, time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, rl.Len())

	_, _ = rl.Allow(ctx, "a", 5, time.Second)
	_, _ = rl.Allow(ctx, "b", 5, time.Second)
	assert.Equal(t, 2, rl.Len())

	now = now.Add(idleTTL + time.Second)
	_, _ = rl.Allow(ctx, "c", 5, time.Second)
	assert.Equal(t, 1, rl.Len())
}
