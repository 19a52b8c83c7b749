package collector_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"MarketLedger/internal/collector"
	"MarketLedger/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T) *MockQuoteProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	p := NewMockQuoteProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	return p
}

func quote(t model.Ticker, price, chg, pct float64) *model.Quote {
	return &model.Quote{
		Ticker:       t,
		Price:        model.Some(price),
		DayChange:    model.Some(chg),
		DayChangePct: model.Some(pct),
	}
}

func dailySeries(closes ...float64) []model.ClosePoint {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.ClosePoint, len(closes))
	for i, c := range closes {
		out[i] = model.ClosePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestFetchIsolatesFailures(t *testing.T) {
	t.Parallel()

	// Arrange: three tickers, the second one unknown to the provider.
	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("AAPL")).Return(quote("AAPL", 190, 2, 1.06), nil)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("BAD")).Return(nil, model.ErrNotFound)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("MSFT")).Return(quote("MSFT", 410, -1, -0.24), nil)
	p.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), "1mo").Return(dailySeries(100, 101), nil).Times(2)

	f := collector.NewBatchFetcher(p, 2, time.Second, zerolog.Nop())

	// Act
	res, err := f.Fetch(context.Background(), []model.Ticker{"AAPL", "BAD", "MSFT"})

	// Assert
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.True(t, res["AAPL"].OK())
	assert.True(t, res["MSFT"].OK())
	assert.False(t, res["BAD"].OK())

	var fe *model.FetchError
	require.True(t, errors.As(res["BAD"].Err, &fe))
	assert.Equal(t, model.Ticker("BAD"), fe.Ticker)
	assert.ErrorIs(t, res["BAD"].Err, model.ErrNotFound)

	assert.Equal(t, model.Some(410), res["MSFT"].Snapshot.Price)
	assert.Equal(t, model.Some(1), res["MSFT"].Snapshot.WeekChangePct)
}

func TestFetchNormalizesAndDeduplicates(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("AAPL")).Return(quote("AAPL", 190, 0, 0), nil).Times(1)
	p.EXPECT().FetchHistory(gomock.Any(), model.Ticker("AAPL"), "1mo").Return(nil, nil).Times(1)

	f := collector.NewBatchFetcher(p, 0, 0, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"aapl", "AAPL ", " aapl"})

	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res["AAPL"].OK())
	assert.False(t, res["AAPL"].Snapshot.WeekChangePct.Present)
}

func TestFetchWeekChange(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("SPY")).Return(quote("SPY", 110, 0, 0), nil)
	p.EXPECT().FetchHistory(gomock.Any(), model.Ticker("SPY"), "1mo").
		Return(dailySeries(100, 102, 98, 101, 105, 103, 110), nil)

	f := collector.NewBatchFetcher(p, 1, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"SPY"})

	require.NoError(t, err)
	assert.Equal(t, model.Some(10), res["SPY"].Snapshot.WeekChangePct)
}

func TestFetchHistoryFailureKeepsQuote(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("AAPL")).Return(quote("AAPL", 190, 1, 0.5), nil)
	p.EXPECT().FetchHistory(gomock.Any(), model.Ticker("AAPL"), "1mo").Return(nil, model.ErrTransport)

	f := collector.NewBatchFetcher(p, 1, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"AAPL"})

	require.NoError(t, err)
	require.True(t, res["AAPL"].OK())
	assert.Equal(t, model.Some(190), res["AAPL"].Snapshot.Price)
	assert.False(t, res["AAPL"].Snapshot.WeekChangePct.Present)
}

func TestFetchProviderUnreachable(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), gomock.Any()).Return(nil, model.ErrTransport).Times(3)

	f := collector.NewBatchFetcher(p, 3, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"A", "B", "C"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, collector.ErrProviderUnreachable)
}

func TestFetchSingleTransportFailureStaysPerTicker(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("AAPL")).Return(nil, model.ErrTransport)

	f := collector.NewBatchFetcher(p, 3, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"AAPL"})

	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.ErrorIs(t, res["AAPL"].Err, model.ErrTransport)
}

func TestFetchTimeoutIsPerTicker(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("SLOW")).
		DoAndReturn(func(ctx context.Context, _ model.Ticker) (*model.Quote, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("FAST")).Return(quote("FAST", 10, 0, 0), nil)
	p.EXPECT().FetchHistory(gomock.Any(), model.Ticker("FAST"), "1mo").Return(nil, nil)

	f := collector.NewBatchFetcher(p, 2, 50*time.Millisecond, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"SLOW", "FAST"})

	require.NoError(t, err)
	assert.True(t, res["FAST"].OK())
	assert.ErrorIs(t, res["SLOW"].Err, context.DeadlineExceeded)
}

func TestFetchCancelledReturnsNothing(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), gomock.Any()).Return(quote("X", 1, 0, 0), nil).AnyTimes()
	p.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := collector.NewBatchFetcher(p, 2, time.Second, zerolog.Nop())
	res, err := f.Fetch(ctx, []model.Ticker{"A", "B", "C"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tk model.Ticker) (*model.Quote, error) {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return quote(tk, 1, 0, 0), nil
		}).Times(10)
	p.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), "1mo").Return(nil, nil).Times(10)

	tickers := []model.Ticker{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	f := collector.NewBatchFetcher(p, 3, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), tickers)

	require.NoError(t, err)
	assert.Len(t, res, 10)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestFetchInvalidTickerGetsResult(t *testing.T) {
	t.Parallel()

	p := newProvider(t)
	p.EXPECT().FetchQuote(gomock.Any(), model.Ticker("AAPL")).Return(quote("AAPL", 1, 0, 0), nil)
	p.EXPECT().FetchHistory(gomock.Any(), model.Ticker("AAPL"), "1mo").Return(nil, nil)

	f := collector.NewBatchFetcher(p, 1, time.Second, zerolog.Nop())
	res, err := f.Fetch(context.Background(), []model.Ticker{"AAPL", "  "})

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.ErrorIs(t, res["  "].Err, model.ErrInvalidTicker)
}
