package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"MarketLedger/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in the currency's minor units, e.g. $1,650.00.
// Unknown currency codes fall back to a plain two-decimal number.
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return decimal.NewFromFloat(amount).StringFixed(2)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func formatSignedMoney(amount float64, currency string) string {
	if amount < 0 {
		return "-" + FormatMoney(math.Abs(amount), currency)
	}
	return "+" + FormatMoney(amount, currency)
}

func formatPct(m model.Metric) string {
	if !m.Present {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", m.Value)
}

func signMark(s model.Sign) string {
	switch s {
	case model.Favorable:
		return "🟢"
	case model.Unfavorable:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatDigest formats a snapshot run into a Telegram message.
func FormatDigest(at time.Time, v *model.Valuation, watch []model.WatchlistRow, currency string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>MarketLedger snapshot</b> | %s\n", at.Format("2006-01-02 15:04")))

	if v != nil {
		b.WriteString("\n💼 <b>Portfolio</b>\n")
		if len(v.Rows) == 0 {
			b.WriteString("  no positions\n")
		}
		for _, r := range v.Rows {
			if !r.PriceAvailable {
				b.WriteString(fmt.Sprintf("  %s %s: price unavailable\n",
					signMark(model.Neutral), html.EscapeString(string(r.Ticker))))
				continue
			}
			b.WriteString(fmt.Sprintf("  %s %s %s @ %s  %s (%+.2f%%)\n",
				signMark(r.Classification), html.EscapeString(string(r.Ticker)),
				decimal.NewFromFloat(r.TotalQuantity).String(), FormatMoney(r.MarketPrice, currency),
				formatSignedMoney(r.Gain, currency), r.GainPct))
		}
		t := v.Total
		b.WriteString(fmt.Sprintf("Value: %s | Cost: %s\n", FormatMoney(t.TotalValue, currency), FormatMoney(t.TotalCost, currency)))
		b.WriteString(fmt.Sprintf("Gain: %s (%s) %s\n", formatSignedMoney(t.TotalGain, currency), formatPct(t.TotalGainPct), signMark(t.Classification)))
	}

	if len(watch) > 0 {
		b.WriteString("\n👀 <b>Watchlist</b>\n")
		for _, r := range watch {
			if !r.Price.Present {
				b.WriteString(fmt.Sprintf("  %s %s: unavailable\n", signMark(model.Neutral), html.EscapeString(string(r.Ticker))))
				continue
			}
			b.WriteString(fmt.Sprintf("  %s %s %s  day %s  week %s\n",
				signMark(r.DayChangePct.Sign()), html.EscapeString(string(r.Ticker)),
				FormatMoney(r.Price.Value, currency), formatPct(r.DayChangePct), formatPct(r.WeekChangePct)))
		}
	}

	return b.String()
}

// FormatFailure reports a run that could not fetch any data.
func FormatFailure(at time.Time, err error) string {
	return fmt.Sprintf("⚠️ <b>MarketLedger snapshot failed</b> | %s\n%s",
		at.Format("2006-01-02 15:04"), html.EscapeString(err.Error()))
}
