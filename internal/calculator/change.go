package calculator

import (
	"errors"
	"sort"
	"time"

	"MarketLedger/internal/model"

	"github.com/shopspring/decimal"
)

// WeekWindow is the trailing window used for the week change.
const WeekWindow = 7 * 24 * time.Hour

// PercentChange returns (to-from)/from*100.
func PercentChange(from, to float64) (float64, error) {
	if from == 0 {
		return 0, errors.New("base value is zero")
	}
	return (to - from) / from * 100, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// WeekChangePct compares the oldest and newest close inside the trailing
// seven-day window that ends at the newest point. It is absent with fewer
// than two points in the window or a zero oldest close.
func WeekChangePct(points []model.ClosePoint) model.Metric {
	window := trailingWindow(points, WeekWindow)
	if len(window) < 2 {
		return model.None()
	}
	pct, err := PercentChange(window[0].Close, window[len(window)-1].Close)
	if err != nil {
		return model.None()
	}
	return model.Some(Round2(pct))
}

func trailingWindow(points []model.ClosePoint, span time.Duration) []model.ClosePoint {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]model.ClosePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	cutoff := sorted[len(sorted)-1].Date.Add(-span)
	start := 0
	for start < len(sorted) && sorted[start].Date.Before(cutoff) {
		start++
	}
	return sorted[start:]
}
