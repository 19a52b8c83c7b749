// Package tracker wires the stores to the batch fetcher and folds the results
// into valuation and watchlist reports.
package tracker

import (
	"context"
	"fmt"

	"MarketLedger/internal/calculator"
	"MarketLedger/internal/collector"
	"MarketLedger/internal/model"
	"MarketLedger/internal/valuation"
	"MarketLedger/internal/watchlist"

	"github.com/rs/zerolog"
)

// PositionSource supplies ledger positions.
type PositionSource interface {
	Positions() []model.Position
}

// TickerSource supplies watched tickers.
type TickerSource interface {
	List() []model.Ticker
}

type Tracker struct {
	ledger  PositionSource
	watch   TickerSource
	fetcher *collector.BatchFetcher
	indices []model.Ticker
	log     zerolog.Logger
}

// New creates a tracker. indices are the tickers quoted by MarketIndices.
func New(ledger PositionSource, watch TickerSource, fetcher *collector.BatchFetcher, indices []model.Ticker, log zerolog.Logger) *Tracker {
	return &Tracker{
		ledger:  ledger,
		watch:   watch,
		fetcher: fetcher,
		indices: indices,
		log:     log.With().Str("component", "tracker").Logger(),
	}
}

// Portfolio values every ledger position at current prices.
func (t *Tracker) Portfolio(ctx context.Context) (model.Valuation, error) {
	positions := t.ledger.Positions()
	if len(positions) == 0 {
		return valuation.Valuate(nil, nil), nil
	}
	tickers := make([]model.Ticker, len(positions))
	for i, p := range positions {
		tickers[i] = p.Ticker
	}
	quotes, err := t.fetcher.Fetch(ctx, tickers)
	if err != nil {
		return model.Valuation{}, fmt.Errorf("portfolio quotes: %w", err)
	}
	v := valuation.Valuate(positions, quotes)
	t.log.Info().Int("positions", len(v.Rows)).Float64("value", v.Total.TotalValue).Msg("portfolio valued")
	return v, nil
}

// WatchlistReport quotes every watched ticker.
func (t *Tracker) WatchlistReport(ctx context.Context) ([]model.WatchlistRow, error) {
	tickers := t.watch.List()
	if len(tickers) == 0 {
		return []model.WatchlistRow{}, nil
	}
	quotes, err := t.fetcher.Fetch(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("watchlist quotes: %w", err)
	}
	return watchlist.BuildReport(tickers, quotes), nil
}

// Quote fetches one ticker with its quote details.
func (t *Tracker) Quote(ctx context.Context, rawTicker string) (*model.QuoteSnapshot, error) {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	res, err := t.fetcher.Fetch(ctx, []model.Ticker{ticker})
	if err != nil {
		return nil, err
	}
	r := res[ticker]
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Snapshot, nil
}

// History returns the close series for period with its summary.
func (t *Tracker) History(ctx context.Context, rawTicker, period string) (*model.History, error) {
	ticker, err := model.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	if !collector.ValidPeriod(period) {
		return nil, &model.ValidationError{Ticker: ticker, Field: "period", Value: period, Reason: "unsupported range"}
	}

	callCtx, cancel := context.WithTimeout(ctx, t.fetcher.Timeout)
	defer cancel()
	points, err := t.fetcher.Provider.FetchHistory(callCtx, ticker, period)
	if err != nil {
		return nil, &model.FetchError{Ticker: ticker, Op: "history", Err: err}
	}
	if points == nil {
		points = []model.ClosePoint{}
	}
	return &model.History{
		Ticker:  ticker,
		Period:  period,
		Points:  points,
		Summary: calculator.Summarize(points),
	}, nil
}

// MarketIndices quotes the configured index tickers, in configured order.
// Indices the provider doesn't know are omitted.
func (t *Tracker) MarketIndices(ctx context.Context) ([]model.Quote, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.fetcher.Timeout)
	defer cancel()
	quotes, err := t.fetcher.Provider.FetchIndices(callCtx, t.indices)
	if err != nil {
		return nil, &model.FetchError{Op: "indices", Err: err}
	}
	out := make([]model.Quote, 0, len(quotes))
	for _, idx := range t.indices {
		if q, ok := quotes[idx]; ok && q != nil {
			out = append(out, *q)
		}
	}
	return out, nil
}
