package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string        `yaml:"provider"` // yahoo, rest or mock
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Proxy    string        `yaml:"proxy"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Fetch struct {
		Concurrency int           `yaml:"concurrency"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	Storage struct {
		LedgerFile    string `yaml:"ledger_file"`
		WatchlistFile string `yaml:"watchlist_file"`
		SQLitePath    string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Market struct {
		Indices  []string `yaml:"indices"`
		Currency string   `yaml:"currency"`
	} `yaml:"market"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides (a .env file in the working directory is honoured) and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"MARKETLEDGER_PROVIDER":       &c.DataSource.Provider,
		"MARKETLEDGER_BASE_URL":       &c.DataSource.BaseURL,
		"MARKETLEDGER_API_KEY":        &c.DataSource.APIKey,
		"HTTPS_PROXY":                 &c.DataSource.Proxy,
		"MARKETLEDGER_LEDGER_FILE":    &c.Storage.LedgerFile,
		"MARKETLEDGER_WATCHLIST_FILE": &c.Storage.WatchlistFile,
		"SQLITE_PATH":                 &c.Storage.SQLitePath,
		"MARKETLEDGER_SNAPSHOT_CRON":  &c.Schedule.SnapshotCron,
		"TELEGRAM_BOT_TOKEN":          &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":            &c.Telegram.ChatID,
		"MARKETLEDGER_ADDR":           &c.Server.Addr,
		"LOG_LEVEL":                   &c.Log.Level,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("MARKETLEDGER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARKETLEDGER_CONCURRENCY: %w", err)
		}
		c.Fetch.Concurrency = n
	}
	if v := os.Getenv("MARKETLEDGER_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MARKETLEDGER_FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if v := os.Getenv("MARKETLEDGER_INDICES"); v != "" {
		c.Market.Indices = splitList(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 8
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 10 * time.Second
	}
	if c.Storage.LedgerFile == "" {
		c.Storage.LedgerFile = "data/ledger.json"
	}
	if c.Storage.WatchlistFile == "" {
		c.Storage.WatchlistFile = "data/watchlist.json"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/marketledger.db"
	}
	if len(c.Market.Indices) == 0 {
		c.Market.Indices = []string{"^GSPC", "^DJI", "^IXIC"}
	}
	if c.Market.Currency == "" {
		c.Market.Currency = "USD"
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 30 16 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks field combinations that can't be defaulted.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether digests should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
