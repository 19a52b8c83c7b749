package watchlist

import (
	"MarketLedger/internal/model"
)

// BuildReport joins watched tickers with fetch results. Output is sorted by
// ticker and holds exactly one row per distinct ticker; a failed or missing
// fetch yields a row with every metric absent.
func BuildReport(tickers []model.Ticker, quotes map[model.Ticker]model.FetchResult) []model.WatchlistRow {
	seen := make(map[model.Ticker]struct{}, len(tickers))
	ordered := make([]model.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		ordered = append(ordered, t)
	}
	model.SortTickers(ordered)

	rows := make([]model.WatchlistRow, 0, len(ordered))
	for _, t := range ordered {
		row := model.WatchlistRow{Ticker: t}
		res, ok := quotes[t]
		switch {
		case !ok:
			row.Error = "no result"
		case !res.OK():
			if res.Err != nil {
				row.Error = res.Err.Error()
			} else {
				row.Error = "no data"
			}
		default:
			snap := res.Snapshot
			row.Price = snap.Price
			row.DayChangePct = snap.DayChangePct
			row.DayChange = snap.DayChange
			row.WeekChangePct = snap.WeekChangePct
		}
		rows = append(rows, row)
	}
	return rows
}
