// Package portfolio computes cost basis, value and unrealized P&L for open
// positions and rolls them into portfolio totals.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polyview/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PositionMetrics are the derived figures for one open position.
type PositionMetrics struct {
	Position   domain.Position `json:"position"`
	Bet        decimal.Decimal `json:"bet"`
	Value      decimal.Decimal `json:"value"`
	ToWin      decimal.Decimal `json:"toWin"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnlPercent"`
}

// Totals are portfolio-wide sums. PnLPercent is computed from the sums, not
// averaged across positions.
type Totals struct {
	Bet        decimal.Decimal `json:"bet"`
	ToWin      decimal.Decimal `json:"toWin"`
	Value      decimal.Decimal `json:"value"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnlPercent"`
	Count      int             `json:"count"`
}

// Summary is the positions tab: per-position metrics and totals.
type Summary struct {
	Positions []PositionMetrics `json:"positions"`
	Totals    Totals            `json:"totals"`
}

// Metrics computes bet = size*avgPrice, value = size*currentPrice,
// toWin = size and pnl = value-bet for p.
func Metrics(p domain.Position) PositionMetrics {
	size := decimal.NewFromFloat(p.Size)
	bet := size.Mul(decimal.NewFromFloat(p.AvgPrice))
	value := size.Mul(decimal.NewFromFloat(p.CurrentPrice))
	pnl := value.Sub(bet)
	return PositionMetrics{
		Position:   p,
		Bet:        bet,
		Value:      value,
		ToWin:      size,
		PnL:        pnl,
		PnLPercent: percent(pnl, bet),
	}
}

// Aggregate keeps the positions open at now, in input order, and totals them.
func Aggregate(positions []domain.Position, now time.Time) Summary {
	out := Summary{Positions: make([]PositionMetrics, 0, len(positions))}
	for i := range positions {
		if !positions[i].IsOpen(now) {
			continue
		}
		m := Metrics(positions[i])
		out.Positions = append(out.Positions, m)
		out.Totals.Bet = out.Totals.Bet.Add(m.Bet)
		out.Totals.ToWin = out.Totals.ToWin.Add(m.ToWin)
		out.Totals.Value = out.Totals.Value.Add(m.Value)
	}
	out.Totals.Count = len(out.Positions)
	out.Totals.PnL = out.Totals.Value.Sub(out.Totals.Bet)
	out.Totals.PnLPercent = percent(out.Totals.PnL, out.Totals.Bet)
	return out
}

func percent(pnl, bet decimal.Decimal) decimal.Decimal {
	if !bet.IsPositive() {
		return decimal.Zero
	}
	return pnl.Div(bet).Mul(hundred)
}
