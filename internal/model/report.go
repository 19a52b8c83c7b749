package model

import "time"

// ValuationRow is the valuation of a single position.
type ValuationRow struct {
	Ticker         Ticker  `json:"ticker"`
	TotalQuantity  float64 `json:"total_quantity"`
	AverageCost    float64 `json:"average_cost"`
	TotalCost      float64 `json:"total_cost"`
	MarketPrice    float64 `json:"market_price"`
	MarketValue    float64 `json:"market_value"`
	Gain           float64 `json:"gain"`
	GainPct        float64 `json:"gain_pct"`
	Classification Sign    `json:"classification"`
	DayChangePct   Metric  `json:"day_change_pct"`
	// PriceAvailable is false when the row was valued at a zero price because
	// the quote failed or carried no price.
	PriceAvailable bool   `json:"price_available"`
	Error          string `json:"error,omitempty"`
}

// ValuationTotal is the aggregate row. TotalGainPct is absent when nothing
// was paid for the portfolio.
type ValuationTotal struct {
	TotalCost      float64 `json:"total_cost"`
	TotalValue     float64 `json:"total_value"`
	TotalGain      float64 `json:"total_gain"`
	TotalGainPct   Metric  `json:"total_gain_pct"`
	Classification Sign    `json:"classification"`
}

type Valuation struct {
	Rows  []ValuationRow `json:"rows"`
	Total ValuationTotal `json:"total"`
}

// WatchlistRow is one line of the watchlist report. A ticker whose fetch
// failed still gets a row with every metric absent.
type WatchlistRow struct {
	Ticker        Ticker `json:"ticker"`
	Price         Metric `json:"price"`
	DayChangePct  Metric `json:"day_change_pct"`
	DayChange     Metric `json:"day_change"`
	WeekChangePct Metric `json:"week_change_pct"`
	Error         string `json:"error,omitempty"`
}

// HistorySummary condenses a close series.
type HistorySummary struct {
	Points     int    `json:"points"`
	First      Metric `json:"first"`
	Last       Metric `json:"last"`
	High       Metric `json:"high"`
	Low        Metric `json:"low"`
	ChangePct  Metric `json:"change_pct"`
	Volatility Metric `json:"volatility_pct"`
	SMA20      Metric `json:"sma20"`
	RSI14      Metric `json:"rsi14"`
}

type History struct {
	Ticker  Ticker         `json:"ticker"`
	Period  string         `json:"period"`
	Points  []ClosePoint   `json:"points"`
	Summary HistorySummary `json:"summary"`
}

// SnapshotTotal is one recorded portfolio total.
type SnapshotTotal struct {
	RunID      string    `json:"run_id"`
	RecordedAt time.Time `json:"recorded_at"`
	TotalCost  float64   `json:"total_cost"`
	TotalValue float64   `json:"total_value"`
	TotalGain  float64   `json:"total_gain"`
	GainPct    Metric    `json:"total_gain_pct"`
}
