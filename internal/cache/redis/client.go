// Package redis backs the local server's shared rate limiter with
// go-redis/v9. Every key the viewer writes lives under one namespace so
// several deployments can share a Redis database.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces keys when ClientConfig.KeyPrefix is empty.
const DefaultKeyPrefix = "polyview"

// clientName is reported by CLIENT LIST on the server.
const clientName = "polyview"

const defaultDialTimeout = 5 * time.Second

var errNoAddr = errors.New("redis: addr is required")

// ClientConfig holds connection parameters for the viewer's Redis client.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool

	// KeyPrefix namespaces every key; empty means DefaultKeyPrefix.
	KeyPrefix string
	// DialTimeout also bounds the startup ping; zero means 5s.
	DialTimeout time.Duration
}

func (cfg ClientConfig) options() *redis.Options {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		ClientName:  clientName,
		DialTimeout: dial,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// Client is a go-redis client bound to the viewer's key namespace.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New validates cfg, connects and pings within DialTimeout. A failed ping
// closes the client.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errNoAddr
	}
	opts := cfg.options()

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return &Client{rdb: rdb, prefix: normalizePrefix(cfg.KeyPrefix)}, nil
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), ":")
	if p == "" {
		return DefaultKeyPrefix
	}
	return p
}

// namespacedKey joins parts under prefix: "<prefix>:a:b".
func namespacedKey(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

// Ping satisfies handler.Pinger for /api/health.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
