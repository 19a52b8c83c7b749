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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements QuoteProvider using the Yahoo Finance public API.
// Quotes come from the v7 quote endpoint; when Yahoo refuses it (it often
// demands a crumb) the v8 chart metadata is used instead.
type YahooFetcher struct {
	client    HTTPClient
	baseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration, opts ...Option) *YahooFetcher {
	o := httpOptions{baseURL: yahooBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewHTTPClient(proxyURL, timeout)
	}
	return &YahooFetcher{
		client:  o.client,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(t model.Ticker) string {
	if mapped, ok := f.SymbolMap[string(t)]; ok {
		return mapped
	}
	return string(t)
}

func (f *YahooFetcher) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0")
	h.Set("Accept", "application/json")
	return h
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooQuoteResponse is the response structure from the v7 quote API.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  *yahooError  `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuote struct {
	Symbol                     string   `json:"symbol"`
	LongName                   string   `json:"longName"`
	ShortName                  string   `json:"shortName"`
	Currency                   string   `json:"currency"`
	Sector                     string   `json:"sector"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	EpsTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
}

func (y yahooQuote) toModel(t model.Ticker) *model.Quote {
	name := y.LongName
	if name == "" {
		name = y.ShortName
	}
	return &model.Quote{
		Ticker:       t,
		Name:         name,
		Currency:     y.Currency,
		Sector:       y.Sector,
		Price:        model.SomePtr(y.RegularMarketPrice),
		DayChange:    model.SomePtr(y.RegularMarketChange),
		DayChangePct: model.SomePtr(y.RegularMarketChangePercent),
		MarketCap:    model.SomePtr(y.MarketCap),
		PERatio:      model.SomePtr(y.TrailingPE),
		EPS:          model.SomePtr(y.EpsTrailingTwelveMonths),
		Week52High:   model.SomePtr(y.FiftyTwoWeekHigh),
		Week52Low:    model.SomePtr(y.FiftyTwoWeekLow),
	}
}

// yahooChart is the response structure from the v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				Currency           string   `json:"currency"`
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				PreviousClose      *float64 `json:"previousClose"`
				FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchQuote(ctx context.Context, ticker model.Ticker) (*model.Quote, error) {
	quotes, err := f.quoteV7(ctx, []model.Ticker{ticker})
	if err != nil {
		if !refused(err) {
			return nil, fmt.Errorf("yahoo quote %s: %w", ticker, err)
		}
		q, err := f.quoteFromChart(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("yahoo quote %s: %w", ticker, err)
		}
		return q, nil
	}
	q, ok := quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("yahoo quote %s: %w", ticker, model.ErrNotFound)
	}
	return q, nil
}

func (f *YahooFetcher) FetchIndices(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]*model.Quote, error) {
	if len(tickers) == 0 {
		return map[model.Ticker]*model.Quote{}, nil
	}
	quotes, err := f.quoteV7(ctx, tickers)
	if err == nil {
		return quotes, nil
	}
	if !refused(err) {
		return nil, fmt.Errorf("yahoo indices: %w", err)
	}

	quotes = make(map[model.Ticker]*model.Quote, len(tickers))
	for _, t := range tickers {
		q, err := f.quoteFromChart(ctx, t)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("yahoo indices %s: %w", t, err)
		}
		quotes[t] = q
	}
	return quotes, nil
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker model.Ticker, period string) ([]model.ClosePoint, error) {
	if !ValidPeriod(period) {
		return nil, &model.ValidationError{Ticker: ticker, Field: "period", Value: period, Reason: "unsupported range"}
	}
	chart, err := f.fetchChart(ctx, ticker, "1d", period)
	if err != nil {
		return nil, fmt.Errorf("yahoo history %s: %w", ticker, err)
	}
	if len(chart.Chart.Result) == 0 {
		return []model.ClosePoint{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []model.ClosePoint{}, nil
	}
	closes := result.Indicators.Quote[0].Close
	points := make([]model.ClosePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		c, ok := toFloat(closes[i])
		if !ok {
			continue // null bars (holidays etc.)
		}
		points = append(points, model.ClosePoint{Date: time.Unix(ts, 0).UTC(), Close: c})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (f *YahooFetcher) quoteV7(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]*model.Quote, error) {
	bySymbol := make(map[string]model.Ticker, len(tickers))
	symbols := make([]string, 0, len(tickers))
	for _, t := range tickers {
		s := f.yahooSymbol(t)
		bySymbol[s] = t
		symbols = append(symbols, s)
	}

	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.baseURL, url.QueryEscape(strings.Join(symbols, ",")))
	var resp yahooQuoteResponse
	if err := getJSON(ctx, f.client, u, f.header(), &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}

	quotes := make(map[model.Ticker]*model.Quote, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		t, ok := bySymbol[r.Symbol]
		if !ok {
			continue
		}
		quotes[t] = r.toModel(t)
	}
	return quotes, nil
}

// quoteFromChart derives a quote from chart metadata. Fundamentals are not
// available there and stay absent.
func (f *YahooFetcher) quoteFromChart(ctx context.Context, ticker model.Ticker) (*model.Quote, error) {
	chart, err := f.fetchChart(ctx, ticker, "1d", "5d")
	if err != nil {
		return nil, err
	}
	if len(chart.Chart.Result) == 0 {
		return nil, model.ErrNotFound
	}
	meta := chart.Chart.Result[0].Meta

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	q := &model.Quote{
		Ticker:     ticker,
		Name:       name,
		Currency:   meta.Currency,
		Price:      model.SomePtr(meta.RegularMarketPrice),
		Week52High: model.SomePtr(meta.FiftyTwoWeekHigh),
		Week52Low:  model.SomePtr(meta.FiftyTwoWeekLow),
	}
	prev := meta.PreviousClose
	if prev == nil {
		prev = meta.ChartPreviousClose
	}
	if q.Price.Present && prev != nil {
		q.DayChange = model.Some(q.Price.Value - *prev)
		if *prev != 0 {
			q.DayChangePct = model.Some((q.Price.Value - *prev) / *prev * 100)
		}
	}
	return q, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, ticker model.Ticker, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.baseURL, url.PathEscape(f.yahooSymbol(ticker)), interval, rng)

	var chart yahooChart
	if err := getJSON(ctx, f.client, u, f.header(), &chart); err != nil {
		return nil, err
	}
	if e := chart.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", model.ErrNotFound, e.Description)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	return &chart, nil
}

// refused reports a v7 rejection that the chart endpoint can stand in for.
func refused(err error) bool {
	switch statusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
