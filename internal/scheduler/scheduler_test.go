package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"MarketLedger/internal/model"
	"MarketLedger/internal/recorder"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	valuation model.Valuation
	watch     []model.WatchlistRow
	err       error
}

func (f *fakeReporter) Portfolio(context.Context) (model.Valuation, error) {
	return f.valuation, f.err
}

func (f *fakeReporter) WatchlistReport(context.Context) ([]model.WatchlistRow, error) {
	return f.watch, nil
}

type captureNotifier struct {
	mu       sync.Mutex
	sent     []string
	attempts int
	failures int
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.failures > 0 {
		c.failures--
		return errors.New("telegram API error: status 502")
	}
	c.sent = append(c.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, rep Reporter) (*Scheduler, *captureNotifier, *recorder.SQLiteRecorder) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "snap.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	n := &captureNotifier{}
	s := NewScheduler(context.Background(), rep, n, rec, "USD", zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 6, 3, 20, 30, 0, 0, time.UTC) }
	s.RetryDelay = time.Millisecond
	return s, n, rec
}

func TestRunNowRecordsAndNotifies(t *testing.T) {
	rep := &fakeReporter{
		valuation: model.Valuation{
			Rows: []model.ValuationRow{{Ticker: "AAPL", TotalQuantity: 1, MarketPrice: 10, MarketValue: 10,
				PriceAvailable: true, Classification: model.Favorable}},
			Total: model.ValuationTotal{TotalValue: 10, TotalCost: 8, TotalGain: 2, TotalGainPct: model.Some(25)},
		},
		watch: []model.WatchlistRow{{Ticker: "MSFT", Price: model.Some(400)}},
	}
	s, n, rec := newTestScheduler(t, rep)

	snap, err := s.RunNow()
	require.NoError(t, err)
	assert.Len(t, snap.RunID, 26)

	totals, err := rec.RecentTotals(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, snap.RunID, totals[0].RunID)
	assert.Equal(t, model.Some(25), totals[0].GainPct)

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "MarketLedger snapshot")
	assert.Contains(t, n.sent[0], "MSFT $400.00")
}

func TestRunNowFailureSendsAlert(t *testing.T) {
	s, n, rec := newTestScheduler(t, &fakeReporter{err: errors.New("market data provider unreachable")})

	_, err := s.RunNow()
	require.Error(t, err)

	totals, err := rec.RecentTotals(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, totals)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "snapshot failed")
}

func TestRunNowRetriesFailedDigest(t *testing.T) {
	s, n, _ := newTestScheduler(t, &fakeReporter{})
	n.failures = 1

	_, err := s.RunNow()
	require.NoError(t, err)

	assert.Equal(t, 2, n.attempts)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "MarketLedger snapshot")
}

func TestRunNowGivesUpAfterRetries(t *testing.T) {
	s, n, _ := newTestScheduler(t, &fakeReporter{})
	s.SendRetries = 2
	n.failures = 10

	_, err := s.RunNow()
	require.NoError(t, err)

	assert.Equal(t, 3, n.attempts)
	assert.Empty(t, n.sent)
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeReporter{})

	require.NoError(t, s.Register("0 30 16 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("every day"))

	s.Start()
	s.Stop()
}
