// Package config defines the top-level configuration for the wallet viewer
// and provides validation helpers.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYVIEW_* environment variables.
type Config struct {
	DataAPI   DataAPIConfig `toml:"data_api"`
	View      ViewConfig    `toml:"view"`
	Server    ServerConfig  `toml:"server"`
	Redis     RedisConfig   `toml:"redis"`
	Mode      string        `toml:"mode"`
	LogLevel  string        `toml:"log_level"`
	LogFormat string        `toml:"log_format"`
}

// DataAPIConfig holds the Polymarket data API endpoint and fetch sizes.
type DataAPIConfig struct {
	Host                 string   `toml:"host"`
	Timeout              duration `toml:"timeout"`
	PageSize             int      `toml:"page_size"`
	HistoryLimit         int      `toml:"history_limit"`
	ClosedPositionsLimit int      `toml:"closed_positions_limit"`
	RateLimitRPS         int      `toml:"rate_limit_rps"`
}

// ViewConfig holds presentation settings.
type ViewConfig struct {
	// Timezone is an IANA name used for date ranges and display, e.g.
	// "America/New_York". Empty means UTC.
	Timezone   string `toml:"timezone"`
	DefaultTab string `toml:"default_tab"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool            `toml:"enabled"`
	Port        int             `toml:"port"`
	CORSOrigins []string        `toml:"cors_origins"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig limits API requests per client IP.
type RateLimitConfig struct {
	Enabled  bool     `toml:"enabled"`
	Backend  string   `toml:"backend"` // "memory" or "redis"
	Requests int      `toml:"requests"`
	Window   duration `toml:"window"`
}

// RedisConfig holds Redis connection parameters, used only by the redis
// rate-limit backend.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Rate-limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		DataAPI: DataAPIConfig{
			Host:                 "https://data-api.polymarket.com",
			Timeout:              duration{30 * time.Second},
			PageSize:             20,
			HistoryLimit:         200,
			ClosedPositionsLimit: 50,
			RateLimitRPS:         10,
		},
		View: ViewConfig{
			Timezone:   "UTC",
			DefaultTab: "positions",
		},
		Server: ServerConfig{
			Enabled:     false,
			Port:        8080,
			CORSOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:  true,
				Backend:  BackendMemory,
				Requests: 60,
				Window:   duration{time.Minute},
			},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			KeyPrefix:  "polyview",
		},
		Mode:      "cli",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Location resolves View.Timezone. An empty name is UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.View.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.View.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.View.Timezone, err)
	}
	return loc, nil
}

// ServerEnabled reports whether the HTTP server should run.
func (c *Config) ServerEnabled() bool {
	return strings.EqualFold(c.Mode, "server") || c.Server.Enabled
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"cli":    true,
	"server": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validTabs = map[string]bool{
	"positions": true,
	"history":   true,
	"trades":    true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: cli, server)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q (valid: json, text)", c.LogFormat))
	}

	// Data API
	if u, err := url.Parse(c.DataAPI.Host); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("data_api: host must be an absolute URL, got %q", c.DataAPI.Host))
	}
	if c.DataAPI.Timeout.Duration <= 0 {
		errs = append(errs, "data_api: timeout must be > 0")
	}
	if c.DataAPI.PageSize < 1 || c.DataAPI.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("data_api: page_size must be 1-500, got %d", c.DataAPI.PageSize))
	}
	if c.DataAPI.HistoryLimit < 1 {
		errs = append(errs, "data_api: history_limit must be >= 1")
	}
	if c.DataAPI.ClosedPositionsLimit < 1 {
		errs = append(errs, "data_api: closed_positions_limit must be >= 1")
	}
	if c.DataAPI.RateLimitRPS < 0 {
		errs = append(errs, "data_api: rate_limit_rps must be >= 0")
	}

	// View
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("view: unknown timezone %q", c.View.Timezone))
	}
	if c.View.DefaultTab != "" && !validTabs[strings.ToLower(c.View.DefaultTab)] {
		errs = append(errs, fmt.Sprintf("view: unknown default_tab %q (valid: positions, history, trades)", c.View.DefaultTab))
	}

	// Server
	if c.ServerEnabled() {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		rl := c.Server.RateLimit
		if rl.Enabled {
			if rl.Backend != BackendMemory && rl.Backend != BackendRedis {
				errs = append(errs, fmt.Sprintf("server: rate_limit.backend must be memory or redis, got %q", rl.Backend))
			}
			if rl.Requests < 1 {
				errs = append(errs, "server: rate_limit.requests must be >= 1")
			}
			if rl.Window.Duration <= 0 {
				errs = append(errs, "server: rate_limit.window must be > 0")
			}
			if rl.Backend == BackendRedis {
				if c.Redis.Addr == "" {
					errs = append(errs, "redis: addr must not be empty for the redis rate_limit backend")
				}
				if c.Redis.PoolSize < 1 {
					errs = append(errs, "redis: pool_size must be >= 1")
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
