package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, env, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", env+".yaml"), []byte(body), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, v, err := Load()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, 5*time.Minute, cfg.Cooldown.Window)
	assert.True(t, cfg.Cooldown.Enabled)
	assert.Equal(t, 5, cfg.Pagination.PageSize)
	assert.Equal(t, "usd", cfg.Provider.QuoteCurrency)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("APP_ENV", "staging")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	writeConfig(t, dir, "staging", `
cooldown:
  window: 30s
storage:
  backend: redis
history:
  timezone: Europe/Moscow
`)

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.Cooldown.Window)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "Europe/Moscow", cfg.History.Timezone)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("API_ID", "42")
	t.Setenv("API_HASH", "hash")
	t.Setenv("SESSION", "session-string")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cg-key", cfg.Provider.APIKey)
	assert.Equal(t, "42", cfg.Relay.APIID)
	assert.Equal(t, "hash", cfg.Relay.APIHash)
	assert.Equal(t, "session-string", cfg.Relay.Session)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		body  string
	}{
		{name: "missing token", token: "", body: ""},
		{name: "bad backend", token: "123:abc", body: "storage:\n  backend: etcd\n"},
		{name: "page size too large", token: "123:abc", body: "pagination:\n  page_size: 500\n"},
		{name: "sentry without dsn", token: "123:abc", body: "sentry:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			t.Setenv("APP_ENV", "test")
			t.Setenv("TELEGRAM_BOT_TOKEN", tt.token)
			t.Setenv("BOT_TOKEN", "")
			writeConfig(t, dir, "test", tt.body)

			_, _, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestHistoryConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, HistoryConfig{Timezone: "Not/AZone"}.Location())

	loc := HistoryConfig{Timezone: "Asia/Tokyo"}.Location()
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestConfig_UsesRedis(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "memory only", cfg: Config{Storage: StorageConfig{Backend: "memory"}}, want: false},
		{name: "redis storage", cfg: Config{Storage: StorageConfig{Backend: "redis"}}, want: true},
		{name: "relay enabled", cfg: Config{Storage: StorageConfig{Backend: "memory"}, Relay: RelayConfig{Enabled: true}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.UsesRedis())
		})
	}
}
