package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"MarketLedger/internal/model"
)

// RESTFetcher implements QuoteProvider against a self-hosted JSON API:
//
//	GET {base}/api/v1/quote?symbol=AAPL
//	GET {base}/api/v1/bars/daily?symbol=AAPL&period=1mo
type RESTFetcher struct {
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewRESTFetcher creates a new fetcher with optional proxy support. The
// bearer token is set with WithAPIKey.
func NewRESTFetcher(baseURL, proxyURL string, timeout time.Duration, opts ...Option) *RESTFetcher {
	o := httpOptions{baseURL: baseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewHTTPClient(proxyURL, timeout)
	}
	return &RESTFetcher{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		apiKey:  o.apiKey,
		client:  o.client,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restQuote is the expected JSON shape of the quote endpoint.
type restQuote struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Currency   string   `json:"currency"`
	Sector     string   `json:"sector"`
	Price      *float64 `json:"price"`
	Change     *float64 `json:"change"`
	ChangePct  *float64 `json:"change_pct"`
	MarketCap  *float64 `json:"market_cap"`
	PERatio    *float64 `json:"pe_ratio"`
	EPS        *float64 `json:"eps"`
	Week52High *float64 `json:"week52_high"`
	Week52Low  *float64 `json:"week52_low"`
}

// restBar is the expected JSON shape of one daily bar.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Close     *float64 `json:"close"`
}

func (f *RESTFetcher) header() http.Header {
	h := http.Header{}
	if f.apiKey != "" {
		h.Set("Authorization", "Bearer "+f.apiKey)
	}
	return h
}

func (f *RESTFetcher) FetchQuote(ctx context.Context, ticker model.Ticker) (*model.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.baseURL, url.QueryEscape(string(ticker)))
	var rq restQuote
	if err := getJSON(ctx, f.client, endpoint, f.header(), &rq); err != nil {
		return nil, fmt.Errorf("rest quote %s: %w", ticker, err)
	}
	return &model.Quote{
		Ticker:       ticker,
		Name:         rq.Name,
		Currency:     rq.Currency,
		Sector:       rq.Sector,
		Price:        model.SomePtr(rq.Price),
		DayChange:    model.SomePtr(rq.Change),
		DayChangePct: model.SomePtr(rq.ChangePct),
		MarketCap:    model.SomePtr(rq.MarketCap),
		PERatio:      model.SomePtr(rq.PERatio),
		EPS:          model.SomePtr(rq.EPS),
		Week52High:   model.SomePtr(rq.Week52High),
		Week52Low:    model.SomePtr(rq.Week52Low),
	}, nil
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, ticker model.Ticker, period string) ([]model.ClosePoint, error) {
	if !ValidPeriod(period) {
		return nil, &model.ValidationError{Ticker: ticker, Field: "period", Value: period, Reason: "unsupported range"}
	}
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&period=%s",
		f.baseURL, url.QueryEscape(string(ticker)), url.QueryEscape(period))
	var bars []restBar
	if err := getJSON(ctx, f.client, endpoint, f.header(), &bars); err != nil {
		return nil, fmt.Errorf("rest history %s: %w", ticker, err)
	}
	points := make([]model.ClosePoint, 0, len(bars))
	for _, b := range bars {
		if b.Close == nil {
			continue
		}
		points = append(points, model.ClosePoint{Date: time.Unix(b.Timestamp, 0).UTC(), Close: *b.Close})
	}
	// Ensure chronological order
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// FetchIndices quotes each symbol in turn; the API has no batch endpoint.
func (f *RESTFetcher) FetchIndices(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]*model.Quote, error) {
	quotes := make(map[model.Ticker]*model.Quote, len(tickers))
	for _, t := range tickers {
		q, err := f.FetchQuote(ctx, t)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		quotes[t] = q
	}
	return quotes, nil
}
