package collector

import (
	"context"
	"net/http"

	"MarketLedger/internal/model"
)

//go:generate mockgen -package=collector_test -destination=mock_provider_test.go -source=provider.go

// QuoteProvider is the market data source. Implementations return
// model.ErrNotFound for unknown symbols and wrap model.ErrTransport for
// network failures and 5xx responses.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, ticker model.Ticker) (*model.Quote, error)
	// FetchHistory returns daily closes ordered by date; an empty slice when
	// the provider has no data for the period.
	FetchHistory(ctx context.Context, ticker model.Ticker, period string) ([]model.ClosePoint, error)
	// FetchIndices quotes several symbols in one call. Symbols the provider
	// doesn't know are left out of the map.
	FetchIndices(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]*model.Quote, error)
	Name() string
}

// HTTPClient is the subset of *http.Client used by the HTTP adapters.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures an HTTP-backed provider.
type Option func(*httpOptions)

type httpOptions struct {
	client  HTTPClient
	baseURL string
	apiKey  string
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *httpOptions) { o.client = c }
}

// WithBaseURL points the provider at a different host.
func WithBaseURL(u string) Option {
	return func(o *httpOptions) { o.baseURL = u }
}

// WithAPIKey sets the bearer token sent by the REST provider.
func WithAPIKey(key string) Option {
	return func(o *httpOptions) { o.apiKey = key }
}

// Periods are the history ranges every provider accepts.
var Periods = []string{"5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "ytd", "max"}

// ValidPeriod reports whether p is one of Periods.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}
