package model

// Lot is one purchase of a quantity at a unit cost. Lots are never edited;
// corrections are recorded as new lots.
type Lot struct {
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

// Position is every lot held for one ticker, in insertion order.
type Position struct {
	Ticker Ticker `json:"ticker"`
	Lots   []Lot  `json:"lots"`
}

// CostBasis aggregates the lots of a position.
type CostBasis struct {
	TotalQuantity           float64 `json:"total_quantity"`
	WeightedAverageUnitCost float64 `json:"weighted_average_unit_cost"`
	TotalCost               float64 `json:"total_cost"`
}
