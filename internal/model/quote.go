package model

import "time"

// Quote is what a provider returns for one symbol.
type Quote struct {
	Ticker       Ticker `json:"ticker"`
	Name         string `json:"name,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Sector       string `json:"sector,omitempty"`
	Price        Metric `json:"price"`
	DayChange    Metric `json:"day_change"`
	DayChangePct Metric `json:"day_change_pct"`
	MarketCap    Metric `json:"market_cap"`
	PERatio      Metric `json:"pe_ratio"`
	EPS          Metric `json:"eps"`
	Week52High   Metric `json:"week52_high"`
	Week52Low    Metric `json:"week52_low"`
}

// ClosePoint is one entry of a historical close series.
type ClosePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// QuoteSnapshot is a point-in-time read of a ticker. It is never persisted.
type QuoteSnapshot struct {
	Ticker        Ticker `json:"ticker"`
	Price         Metric `json:"price"`
	DayChange     Metric `json:"day_change"`
	DayChangePct  Metric `json:"day_change_pct"`
	WeekChangePct Metric `json:"week_change_pct"`
	Details       *Quote `json:"details,omitempty"`
}

// FetchResult holds either a snapshot or the error that prevented it.
type FetchResult struct {
	Snapshot *QuoteSnapshot
	Err      error
}

// OK reports whether the fetch produced a snapshot.
func (r FetchResult) OK() bool { return r.Err == nil && r.Snapshot != nil }
