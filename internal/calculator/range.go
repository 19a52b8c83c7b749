package calculator

import (
	"errors"
	"math"

	"MarketLedger/internal/model"

	"gonum.org/v1/gonum/stat"
)

// CloseRange returns the highest and lowest close of the series.
func CloseRange(points []model.ClosePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no points provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}
	return high, low, nil
}

// Volatility is the sample standard deviation of period-over-period percent
// returns. Needs at least three points.
func Volatility(points []model.ClosePoint) (float64, error) {
	if len(points) < 3 {
		return 0, errors.New("not enough points for volatility")
	}
	returns := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		r, err := PercentChange(points[i-1].Close, points[i].Close)
		if err != nil {
			continue
		}
		returns = append(returns, r)
	}
	if len(returns) < 2 {
		return 0, errors.New("not enough non-zero closes for volatility")
	}
	return stat.StdDev(returns, nil), nil
}

// Summarize computes the summary shown next to a history series.
func Summarize(points []model.ClosePoint) model.HistorySummary {
	s := model.HistorySummary{Points: len(points)}
	if len(points) == 0 {
		return s
	}
	first, last := points[0].Close, points[len(points)-1].Close
	s.First = model.Some(first)
	s.Last = model.Some(last)

	if h, l, err := CloseRange(points); err == nil {
		s.High = model.Some(h)
		s.Low = model.Some(l)
	}
	if pct, err := PercentChange(first, last); err == nil {
		s.ChangePct = model.Some(Round2(pct))
	}
	if v, err := Volatility(points); err == nil {
		s.Volatility = model.Some(Round2(v))
	}
	s.SMA20 = TrailingMean(points, smaWindow)
	if rsi := RSI(points, rsiPeriod); rsi.Present {
		s.RSI14 = model.Some(Round2(rsi.Value))
	}
	return s
}
