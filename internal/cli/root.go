// Package cli implements the marketledger command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"MarketLedger/internal/collector"
	"MarketLedger/internal/config"
	"MarketLedger/internal/ledger"
	"MarketLedger/internal/logger"
	"MarketLedger/internal/model"
	"MarketLedger/internal/tracker"
	"MarketLedger/internal/watchlist"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootConfig carries the persistent flags shared by every command.
type RootConfig struct {
	ConfigPath string
	LogLevel   string
	Source     string
}

// App is everything a command needs, built from the loaded config.
type App struct {
	Cfg       *config.Config
	Log       zerolog.Logger
	Ledger    *ledger.Store
	Watchlist *watchlist.Store
	Provider  collector.QuoteProvider
	Fetcher   *collector.BatchFetcher
	Tracker   *tracker.Tracker
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}
	cmd := &cobra.Command{
		Use:           "marketledger",
		Short:         "Track equity positions and a watchlist against live market data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", cfgPath, "path to the YAML config file (env CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "debug, info, warn, error or off (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.Source, "source", "", "market data provider: yahoo, rest or mock (overrides config)")

	cmd.AddCommand(
		newQuoteCmd(rc),
		newHistoryCmd(rc),
		newIndicesCmd(rc),
		newWatchlistCmd(rc),
		newPortfolioCmd(rc),
		newSnapshotsCmd(rc),
		newDaemonCmd(rc),
		newServeCmd(rc),
	)
	return cmd
}

// Execute runs the command tree with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// open loads config and wires stores, provider and tracker.
func (rc *RootConfig) open(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.Source != "" {
		cfg.DataSource.Provider = rc.Source
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: cmd.ErrOrStderr()})
	logger.SetGlobalLogger(log)

	led, err := ledger.Open(cfg.Storage.LedgerFile, log)
	if err != nil {
		return nil, err
	}
	wl, err := watchlist.Open(cfg.Storage.WatchlistFile, log)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := collector.NewBatchFetcher(provider, cfg.Fetch.Concurrency, cfg.Fetch.Timeout, log)

	indices := make([]model.Ticker, 0, len(cfg.Market.Indices))
	for _, raw := range cfg.Market.Indices {
		t, err := model.NormalizeTicker(raw)
		if err != nil {
			return nil, fmt.Errorf("market.indices: %w", err)
		}
		indices = append(indices, t)
	}

	return &App{
		Cfg:       cfg,
		Log:       log,
		Ledger:    led,
		Watchlist: wl,
		Provider:  provider,
		Fetcher:   fetcher,
		Tracker:   tracker.New(led, wl, fetcher, indices, log),
	}, nil
}

func newProvider(cfg *config.Config) (collector.QuoteProvider, error) {
	ds := cfg.DataSource
	switch strings.ToLower(ds.Provider) {
	case "yahoo":
		var opts []collector.Option
		if ds.BaseURL != "" {
			opts = append(opts, collector.WithBaseURL(ds.BaseURL))
		}
		return collector.NewYahooFetcher(ds.Proxy, ds.Timeout, opts...), nil
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.Proxy, ds.Timeout, collector.WithAPIKey(ds.APIKey)), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", ds.Provider)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
