package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
env = "prod"

[http]
port = "9000"
cors_origins = ["https://school.example"]

[database]
dsn = "sqlite://attendance.db"
max_open_conns = 4

[queue]
backend = "memory"
`)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("SUMMARY_TTL", "30s")
	t.Setenv("CACHE_BACKEND", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, []string{"https://school.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "sqlite://attendance.db", cfg.Database.DSN)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, "memory", cfg.Queue.Backend)
	assert.Equal(t, "attendance:sheets", cfg.Queue.Key)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.SummaryTTL.Duration)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, "[http\nport = ")
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.HTTP.RateLimitPerMin)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL.Duration)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoadDurationsFromFile(t *testing.T) {
	path := writeConfig(t, `
[database]
conn_lifetime = "30m"

[auth]
access_ttl = "5m"
refresh_ttl = "12h"

[cache]
summary_ttl = "30s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnLifetime.Duration)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL.Duration)
	assert.Equal(t, 12*time.Hour, cfg.Auth.RefreshTTL.Duration)
	assert.Equal(t, 30*time.Second, cfg.Cache.SummaryTTL.Duration)

	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[cache]\nsummary_ttl = \"soon\"\n"))
		require.Error(t, err)
	})
}
