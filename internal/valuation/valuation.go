// Package valuation values ledger positions against fetched quotes.
package valuation

import (
	"sort"

	"MarketLedger/internal/calculator"
	"MarketLedger/internal/ledger"
	"MarketLedger/internal/model"

	"github.com/shopspring/decimal"
)

// Valuate builds one row per position, sorted by ticker, plus the aggregate.
// A position whose quote failed or has no price is valued at zero and flagged
// with PriceAvailable=false.
func Valuate(positions []model.Position, quotes map[model.Ticker]model.FetchResult) model.Valuation {
	sorted := make([]model.Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ticker < sorted[j].Ticker })

	totalCost := decimal.Zero
	totalValue := decimal.Zero
	rows := make([]model.ValuationRow, 0, len(sorted))

	for _, p := range sorted {
		cb := ledger.ComputeCostBasis(p.Lots)
		row := model.ValuationRow{
			Ticker:        p.Ticker,
			TotalQuantity: cb.TotalQuantity,
			AverageCost:   cb.WeightedAverageUnitCost,
			TotalCost:     cb.TotalCost,
		}

		res, ok := quotes[p.Ticker]
		switch {
		case !ok:
			row.Error = "no result"
		case res.Err != nil:
			row.Error = res.Err.Error()
		case res.Snapshot == nil:
			row.Error = "no data"
		default:
			row.DayChangePct = res.Snapshot.DayChangePct
			if res.Snapshot.Price.Present {
				row.MarketPrice = res.Snapshot.Price.Value
				row.PriceAvailable = true
			} else {
				row.Error = "no price"
			}
		}

		cost := decimal.NewFromFloat(cb.TotalCost)
		value := decimal.NewFromFloat(cb.TotalQuantity).Mul(decimal.NewFromFloat(row.MarketPrice))
		gain := value.Sub(cost)

		row.MarketValue = value.InexactFloat64()
		row.Gain = gain.InexactFloat64()
		row.GainPct = gainPct(gain, cost).Or(0)
		row.Classification = classify(gain)

		totalCost = totalCost.Add(cost)
		totalValue = totalValue.Add(value)
		rows = append(rows, row)
	}

	totalGain := totalValue.Sub(totalCost)
	return model.Valuation{
		Rows: rows,
		Total: model.ValuationTotal{
			TotalCost:      totalCost.InexactFloat64(),
			TotalValue:     totalValue.InexactFloat64(),
			TotalGain:      totalGain.InexactFloat64(),
			TotalGainPct:   gainPct(totalGain, totalCost),
			Classification: classify(totalGain),
		},
	}
}

// gainPct is gain/cost*100 rounded to two places, absent when cost is zero.
func gainPct(gain, cost decimal.Decimal) model.Metric {
	if cost.IsZero() {
		return model.None()
	}
	pct := gain.Div(cost).Mul(decimal.NewFromInt(100))
	return model.Some(calculator.Round2(pct.InexactFloat64()))
}

// classify treats a break-even position as favorable.
func classify(gain decimal.Decimal) model.Sign {
	if gain.IsNegative() {
		return model.Unfavorable
	}
	return model.Favorable
}
