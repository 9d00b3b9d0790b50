package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racebot/ergast"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())

	require.NoError(t, err)
	assert.Equal(t, ergast.DefaultBaseURL, cfg.Ergast.BaseURL)
	assert.Equal(t, ergast.DefaultPolicy(), cfg.Ergast.Policy())
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, Tracing{Sampling: 1}, cfg.Tracing)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RACEBOT_ERGAST_BASE_URL", "http://localhost:9000/f1")
	t.Setenv("RACEBOT_ERGAST_RETRIES", "5")
	t.Setenv("RACEBOT_ERGAST_TIMEOUT", "2s")
	t.Setenv("RACEBOT_ERGAST_BACKOFF", "50ms")
	t.Setenv("RACEBOT_LOG_LEVEL", "DEBUG")
	t.Setenv("RACEBOT_TRACING_ENDPOINT", "localhost:4318")
	t.Setenv("RACEBOT_TRACING_SAMPLING", "0.25")
	t.Setenv("RACEVK_BOT", "group")
	t.Setenv("USERTOKEN_VK", "user")
	t.Setenv("RACETG_BOT", "tg")

	cfg, err := Load(New())

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/f1", cfg.Ergast.BaseURL)
	assert.Equal(t, ergast.Policy{Retries: 5, Timeout: 2 * time.Second, Backoff: 50 * time.Millisecond}, cfg.Ergast.Policy())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, Tracing{Endpoint: "localhost:4318", Sampling: 0.25}, cfg.Tracing)
	assert.Equal(t, Bots{VkGroupToken: "group", VkUserToken: "user", TgChatToken: "tg"}, cfg.Bots)
	assert.NoError(t, cfg.RequireBots())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "zero retries", key: KeyRetries, value: 0},
		{name: "bad url", key: KeyBaseURL, value: "not a url"},
		{name: "zero timeout", key: KeyTimeout, value: time.Duration(0)},
		{name: "unknown level", key: KeyLogLevel, value: "verbose"},
		{name: "sampling above one", key: KeyTracingSampling, value: 1.5},
		{name: "endpoint with scheme", key: KeyTracingEndpoint, value: "http://localhost:4318"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)

			assert.Error(t, err)
		})
	}
}

func TestRequireBots(t *testing.T) {
	cfg := &Config{Bots: Bots{VkGroupToken: "group"}}

	err := cfg.RequireBots()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERTOKEN_VK")
	assert.Contains(t, err.Error(), "RACETG_BOT")
	assert.NotContains(t, err.Error(), "RACEVK_BOT")
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "data.env")
	require.NoError(t, os.WriteFile(path, []byte("RACEBOT_SERVER_ADDRESS=:9999\n"), 0o600))
	t.Setenv("RACEBOT_SERVER_ADDRESS", "")
	require.NoError(t, os.Unsetenv("RACEBOT_SERVER_ADDRESS"))

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load(New())

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
}
