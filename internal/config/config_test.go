package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.DataAPI.PageSize)
	assert.Equal(t, 200, cfg.DataAPI.HistoryLimit)
	assert.Equal(t, 50, cfg.DataAPI.ClosedPositionsLimit)
	assert.False(t, cfg.ServerEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "server"
log_format = "text"

[data_api]
page_size = 50
timeout = "5s"

[view]
timezone = "America/New_York"

[server]
port = 9090
cors_origins = ["https://a.example"]

[server.rate_limit]
backend = "redis"
window = "30s"
`), 0o600))

	t.Setenv("POLYVIEW_SERVER_PORT", "9191")
	t.Setenv("POLYVIEW_SERVER_CORS_ORIGINS", "https://b.example, https://c.example,")
	t.Setenv("POLYVIEW_REDIS_PASSWORD", "hunter2")
	t.Setenv("POLYVIEW_REDIS_KEY_PREFIX", "staging")
	t.Setenv("POLYVIEW_DATA_API_HISTORY_LIMIT", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "server", cfg.Mode)
	assert.True(t, cfg.ServerEnabled())
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 50, cfg.DataAPI.PageSize)
	assert.Equal(t, 5*time.Second, cfg.DataAPI.Timeout.Duration)
	assert.Equal(t, 200, cfg.DataAPI.HistoryLimit, "unparsable override is ignored")
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, BackendRedis, cfg.Server.RateLimit.Backend)
	assert.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window.Duration)
	assert.Equal(t, 60, cfg.Server.RateLimit.Requests, "default survives partial section")
	assert.Equal(t, "staging", cfg.Redis.KeyPrefix)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	red := RedactedConfig(cfg)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	red.Server.CORSOrigins[0] = "mutated"
	assert.Equal(t, "https://b.example", cfg.Server.CORSOrigins[0])
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().DataAPI.Host, cfg.DataAPI.Host)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	cfg.LogLevel = "verbose"
	cfg.LogFormat = "xml"
	cfg.DataAPI.Host = "data-api"
	cfg.DataAPI.PageSize = 0
	cfg.View.Timezone = "Mars/Olympus"
	cfg.View.DefaultTab = "orders"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`unknown mode "trade"`,
		`unknown log_level "verbose"`,
		`unknown log_format "xml"`,
		"data_api: host",
		"data_api: page_size",
		`unknown timezone "Mars/Olympus"`,
		`unknown default_tab "orders"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_ServerRateLimit(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	cfg.Server.Port = 70000
	cfg.Server.RateLimit.Backend = "etcd"
	cfg.Server.RateLimit.Requests = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server: port must be 1-65535")
	assert.Contains(t, err.Error(), "rate_limit.backend")
	assert.Contains(t, err.Error(), "rate_limit.requests")

	cfg = Defaults()
	cfg.Mode = "server"
	cfg.Server.RateLimit.Backend = BackendRedis
	cfg.Redis.Addr = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: addr")
}
