package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"MarketLedger/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers without an entry in Quotes get a synthetic quote derived from Price,
// or ErrNotFound when Price is zero.
type MockFetcher struct {
	Price         float64
	Quotes        map[model.Ticker]*model.Quote
	Histories     map[model.Ticker][]model.ClosePoint
	Errors        map[model.Ticker]error
	HistoryErrors map[model.Ticker]error
	Delay         time.Duration
	// Now anchors synthetic history; zero means time.Now.
	Now func() time.Time

	quoteCalls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// QuoteCalls reports how many FetchQuote calls were served.
func (m *MockFetcher) QuoteCalls() int64 { return m.quoteCalls.Load() }

func (m *MockFetcher) FetchQuote(ctx context.Context, ticker model.Ticker) (*model.Quote, error) {
	m.quoteCalls.Add(1)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if q, ok := m.Quotes[ticker]; ok {
		cp := *q
		cp.Ticker = ticker
		return &cp, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("mock quote %s: %w", ticker, model.ErrNotFound)
	}
	price := m.basePrice(ticker)
	prev := price / 1.01
	return &model.Quote{
		Ticker:       ticker,
		Name:         string(ticker) + " Inc.",
		Currency:     "USD",
		Price:        model.Some(price),
		DayChange:    model.Some(price - prev),
		DayChangePct: model.Some(1),
		Week52High:   model.Some(price * 1.2),
		Week52Low:    model.Some(price * 0.8),
	}, nil
}

func (m *MockFetcher) FetchHistory(ctx context.Context, ticker model.Ticker, period string) ([]model.ClosePoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if !ValidPeriod(period) {
		return nil, &model.ValidationError{Ticker: ticker, Field: "period", Value: period, Reason: "unsupported range"}
	}
	if err, ok := m.HistoryErrors[ticker]; ok {
		return nil, err
	}
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if h, ok := m.Histories[ticker]; ok {
		out := make([]model.ClosePoint, len(h))
		copy(out, h)
		return out, nil
	}
	if m.Price <= 0 {
		return []model.ClosePoint{}, nil
	}
	return generateMockCloses(m.basePrice(ticker), periodDays(period), m.now()), nil
}

func (m *MockFetcher) FetchIndices(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]*model.Quote, error) {
	out := make(map[model.Ticker]*model.Quote, len(tickers))
	for _, t := range tickers {
		q, err := m.FetchQuote(ctx, t)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out[t] = q
	}
	return out, nil
}

func (m *MockFetcher) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", model.ErrTransport, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// basePrice spreads synthetic prices per ticker so they aren't all equal.
func (m *MockFetcher) basePrice(t model.Ticker) float64 {
	h := fnv.New32a()
	h.Write([]byte(t))
	return m.Price * (1 + float64(h.Sum32()%50)/100)
}

func periodDays(period string) int {
	switch period {
	case "5d":
		return 5
	case "1mo":
		return 30
	case "3mo":
		return 90
	case "6mo":
		return 180
	case "2y":
		return 730
	case "5y", "max":
		return 1825
	default:
		return 365
	}
}

func generateMockCloses(basePrice float64, count int, now time.Time) []model.ClosePoint {
	points := make([]model.ClosePoint, count)
	day := now.UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		points[i] = model.ClosePoint{
			Date:  day.AddDate(0, 0, -(count - 1 - i)),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}
