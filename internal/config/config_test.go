package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MARKETLEDGER_PROVIDER", "MARKETLEDGER_BASE_URL", "MARKETLEDGER_API_KEY", "HTTPS_PROXY",
		"MARKETLEDGER_LEDGER_FILE", "MARKETLEDGER_WATCHLIST_FILE", "SQLITE_PATH",
		"MARKETLEDGER_SNAPSHOT_CRON", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"MARKETLEDGER_ADDR", "LOG_LEVEL", "MARKETLEDGER_CONCURRENCY",
		"MARKETLEDGER_FETCH_TIMEOUT", "MARKETLEDGER_INDICES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"^GSPC", "^DJI", "^IXIC"}, cfg.Market.Indices)
	assert.Equal(t, "data/ledger.json", cfg.Storage.LedgerFile)
	assert.Equal(t, "USD", cfg.Market.Currency)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source:
  provider: rest
  base_url: http://localhost:9000
fetch:
  concurrency: 3
  timeout: 2s
market:
  indices: ["^FTSE"]
telegram:
  bot_token: file-token
  chat_id: "42"
`), 0o644))
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("MARKETLEDGER_FETCH_TIMEOUT", "1500ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"^FTSE"}, cfg.Market.Indices)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadBadEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKETLEDGER_CONCURRENCY", "many")

	_, err := Load("")
	assert.ErrorContains(t, err, "MARKETLEDGER_CONCURRENCY")
}

func TestLoadCorruptYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch: [unclosed"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cases := map[string]func(*Config){
		"unknown provider":    func(c *Config) { c.DataSource.Provider = "bloomberg" },
		"rest needs base url": func(c *Config) { c.DataSource.Provider = "rest"; c.DataSource.BaseURL = "" },
		"concurrency":         func(c *Config) { c.Fetch.Concurrency = -1 },
		"timeout":             func(c *Config) { c.Fetch.Timeout = -time.Second },
		"telegram half set":   func(c *Config) { c.Telegram.BotToken = "x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
