package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConfig_Options(t *testing.T) {
	opts := ClientConfig{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 4, MaxRetries: -1}.options()
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 4, opts.PoolSize)
	assert.Equal(t, -1, opts.MaxRetries)
	assert.Equal(t, "polyview", opts.ClientName)
	assert.Equal(t, defaultDialTimeout, opts.DialTimeout)
	assert.Nil(t, opts.TLSConfig)

	opts = ClientConfig{Addr: "cache:6380", TLSEnabled: true, DialTimeout: time.Second}.options()
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

func TestRateLimiterKey_Namespaced(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "polyview:ratelimit:10.0.0.1"},
		{prefix: "  ", want: "polyview:ratelimit:10.0.0.1"},
		{prefix: "staging", want: "staging:ratelimit:10.0.0.1"},
		{prefix: "staging:", want: "staging:ratelimit:10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, newRateLimiter(nil, tt.prefix).key("10.0.0.1"))
			c := &Client{prefix: normalizePrefix(tt.prefix)}
			assert.Equal(t, tt.want, NewRateLimiter(c).key("10.0.0.1"))
		})
	}
}

func TestNew_EmptyAddr(t *testing.T) {
	_, err := New(context.Background(), ClientConfig{Addr: " "})
	assert.ErrorIs(t, err, errNoAddr)
}
