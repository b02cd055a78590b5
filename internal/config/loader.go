package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYVIEW_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYVIEW_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Data API ──
	setStr(&cfg.DataAPI.Host, "POLYVIEW_DATA_API_HOST")
	setDuration(&cfg.DataAPI.Timeout, "POLYVIEW_DATA_API_TIMEOUT")
	setInt(&cfg.DataAPI.PageSize, "POLYVIEW_DATA_API_PAGE_SIZE")
	setInt(&cfg.DataAPI.HistoryLimit, "POLYVIEW_DATA_API_HISTORY_LIMIT")
	setInt(&cfg.DataAPI.ClosedPositionsLimit, "POLYVIEW_DATA_API_CLOSED_POSITIONS_LIMIT")
	setInt(&cfg.DataAPI.RateLimitRPS, "POLYVIEW_DATA_API_RATE_LIMIT_RPS")

	// ── View ──
	setStr(&cfg.View.Timezone, "POLYVIEW_VIEW_TIMEZONE")
	setStr(&cfg.View.DefaultTab, "POLYVIEW_VIEW_DEFAULT_TAB")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "POLYVIEW_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "POLYVIEW_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYVIEW_SERVER_CORS_ORIGINS")
	setBool(&cfg.Server.RateLimit.Enabled, "POLYVIEW_SERVER_RATE_LIMIT_ENABLED")
	setStr(&cfg.Server.RateLimit.Backend, "POLYVIEW_SERVER_RATE_LIMIT_BACKEND")
	setInt(&cfg.Server.RateLimit.Requests, "POLYVIEW_SERVER_RATE_LIMIT_REQUESTS")
	setDuration(&cfg.Server.RateLimit.Window, "POLYVIEW_SERVER_RATE_LIMIT_WINDOW")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "POLYVIEW_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYVIEW_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYVIEW_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYVIEW_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYVIEW_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYVIEW_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "POLYVIEW_REDIS_KEY_PREFIX")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYVIEW_MODE")
	setStr(&cfg.LogLevel, "POLYVIEW_LOG_LEVEL")
	setStr(&cfg.LogFormat, "POLYVIEW_LOG_FORMAT")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
