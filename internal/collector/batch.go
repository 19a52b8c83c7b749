package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketLedger/internal/calculator"
	"MarketLedger/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second

	// weekHistoryPeriod is wide enough to cover the seven-day window across
	// weekends and holidays.
	weekHistoryPeriod = "1mo"

	// minUnreachableBatch is the smallest batch whose total transport failure
	// is taken as a provider outage. A lone failed ticker stays a per-row error.
	minUnreachableBatch = 2
)

// ErrProviderUnreachable is returned when every ticker in a batch of at least
// two failed at the transport level.
var ErrProviderUnreachable = errors.New("market data provider unreachable")

// BatchFetcher fetches snapshots for many tickers with bounded concurrency.
// It never retries.
type BatchFetcher struct {
	Provider    QuoteProvider
	Concurrency int
	Timeout     time.Duration

	log zerolog.Logger
}

// NewBatchFetcher creates a fetcher. Non-positive concurrency or timeout
// select the defaults.
func NewBatchFetcher(p QuoteProvider, concurrency int, timeout time.Duration, log zerolog.Logger) *BatchFetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BatchFetcher{
		Provider:    p,
		Concurrency: concurrency,
		Timeout:     timeout,
		log:         log.With().Str("component", "batch_fetcher").Str("provider", p.Name()).Logger(),
	}
}

// Fetch returns exactly one result per distinct normalized ticker. Per-ticker
// failures are reported in the result, not as the returned error. When ctx is
// cancelled no partial results are returned.
func (b *BatchFetcher) Fetch(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]model.FetchResult, error) {
	results := make(map[model.Ticker]model.FetchResult, len(tickers))
	unique := make([]model.Ticker, 0, len(tickers))
	for _, raw := range tickers {
		t, err := model.NormalizeTicker(string(raw))
		if err != nil {
			results[raw] = model.FetchResult{Err: &model.FetchError{Ticker: raw, Op: "quote", Err: err}}
			continue
		}
		if _, seen := results[t]; seen {
			continue
		}
		results[t] = model.FetchResult{}
		unique = append(unique, t)
	}

	fetched := make([]model.FetchResult, len(unique))
	var g errgroup.Group
	g.SetLimit(b.concurrency())
	for i, t := range unique {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fetched[i] = b.fetchOne(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		b.log.Warn().Err(err).Int("tickers", len(unique)).Msg("batch fetch cancelled")
		return nil, err
	}

	failed := 0
	var lastErr error
	for i, t := range unique {
		results[t] = fetched[i]
		if fetched[i].Err != nil {
			lastErr = fetched[i].Err
			if transportFailure(fetched[i].Err) {
				failed++
			}
		}
	}
	if len(unique) >= minUnreachableBatch && failed == len(unique) {
		b.log.Error().Err(lastErr).Int("tickers", len(unique)).Msg("provider unreachable")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnreachable, lastErr)
	}

	b.log.Debug().Int("tickers", len(unique)).Int("failed", countFailed(fetched)).Msg("batch fetch done")
	return results, nil
}

func (b *BatchFetcher) fetchOne(ctx context.Context, t model.Ticker) model.FetchResult {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	q, err := b.Provider.FetchQuote(callCtx, t)
	if err == nil && q == nil {
		err = model.ErrNotFound
	}
	if err != nil {
		b.log.Warn().Err(err).Str("ticker", t.String()).Msg("quote fetch failed")
		return model.FetchResult{Err: &model.FetchError{Ticker: t, Op: "quote", Err: err}}
	}

	snap := &model.QuoteSnapshot{
		Ticker:       t,
		Price:        q.Price,
		DayChange:    q.DayChange,
		DayChangePct: q.DayChangePct,
		Details:      q,
	}

	history, err := b.Provider.FetchHistory(callCtx, t, weekHistoryPeriod)
	if err != nil {
		b.log.Warn().Err(err).Str("ticker", t.String()).Msg("history fetch failed, week change unavailable")
	} else {
		snap.WeekChangePct = calculator.WeekChangePct(history)
	}
	return model.FetchResult{Snapshot: snap}
}

func (b *BatchFetcher) concurrency() int {
	if b.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return b.Concurrency
}

func (b *BatchFetcher) timeout() time.Duration {
	if b.Timeout <= 0 {
		return DefaultTimeout
	}
	return b.Timeout
}

func transportFailure(err error) bool {
	return errors.Is(err, model.ErrTransport) || errors.Is(err, context.DeadlineExceeded)
}

func countFailed(rs []model.FetchResult) int {
	n := 0
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return n
}
