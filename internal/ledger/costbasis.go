package ledger

import (
	"math"
	"strconv"

	"MarketLedger/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeCostBasis sums a lot list. The weighted average is reported as 0
// when the total quantity is zero.
func ComputeCostBasis(lots []model.Lot) model.CostBasis {
	qty := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		q := decimal.NewFromFloat(l.Quantity)
		qty = qty.Add(q)
		cost = cost.Add(q.Mul(decimal.NewFromFloat(l.UnitCost)))
	}

	cb := model.CostBasis{
		TotalQuantity: qty.InexactFloat64(),
		TotalCost:     cost.InexactFloat64(),
	}
	if !qty.IsZero() {
		cb.WeightedAverageUnitCost = cost.Div(qty).InexactFloat64()
	}
	return cb
}

func validateLot(ticker model.Ticker, quantity, unitCost float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return &model.ValidationError{
			Ticker: ticker,
			Field:  "quantity",
			Value:  strconv.FormatFloat(quantity, 'g', -1, 64),
			Reason: "must be a finite number greater than zero",
			Err:    model.ErrInvalidQuantity,
		}
	}
	if math.IsNaN(unitCost) || math.IsInf(unitCost, 0) || unitCost < 0 {
		return &model.ValidationError{
			Ticker: ticker,
			Field:  "unit_cost",
			Value:  strconv.FormatFloat(unitCost, 'g', -1, 64),
			Reason: "must be a finite number not below zero",
			Err:    model.ErrInvalidPrice,
		}
	}
	return nil
}
