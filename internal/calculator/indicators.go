package calculator

import (
	"MarketLedger/internal/model"

	"gonum.org/v1/gonum/stat"
)

const (
	smaWindow = 20
	rsiPeriod = 14
)

// TrailingMean is the mean close of the last window points, absent when the
// series is shorter than window.
func TrailingMean(points []model.ClosePoint, window int) model.Metric {
	if window <= 0 || len(points) < window {
		return model.None()
	}
	tail := make([]float64, window)
	for i, p := range points[len(points)-window:] {
		tail[i] = p.Close
	}
	return model.Some(stat.Mean(tail, nil))
}

// RSI is Wilder's relative strength index. The first average is seeded from
// period deltas, so period+1 points are needed; fewer give an absent value.
func RSI(points []model.ClosePoint, period int) model.Metric {
	if period <= 0 || len(points) <= period {
		return model.None()
	}
	n := float64(period)
	var up, down float64
	for i := 1; i < len(points); i++ {
		gain, loss := split(points[i].Close - points[i-1].Close)
		if i <= period {
			up += gain / n
			down += loss / n
			continue
		}
		up = (up*(n-1) + gain) / n
		down = (down*(n-1) + loss) / n
	}
	if down == 0 {
		return model.Some(100)
	}
	return model.Some(100 - 100/(1+up/down))
}

// split returns the positive and negative parts of a close-to-close move.
func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}
