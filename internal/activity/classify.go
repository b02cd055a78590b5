package activity

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// NearZeroPrice is the price below which a SELL is treated as dumping a
// losing position rather than a sale.
var NearZeroPrice = decimal.RequireFromString("0.05")

// Sign is the direction of a row's cash flow for the wallet.
type Sign string

const (
	SignPositive Sign = "+"
	SignNegative Sign = "-"
)

// Display labels.
const (
	LabelBought    = "Bought"
	LabelSold      = "Sold"
	LabelClaimed   = "Claimed"
	LabelLost      = "Lost"
	LabelMerged    = "Merged"
	LabelSplit     = "Split"
	LabelReward    = "Reward"
	LabelConverted = "Converted"
)

// Classification is the display category and signed cash flow of one record.
type Classification struct {
	Label     string          `json:"label"`
	IconClass string          `json:"iconClass"`
	Sign      Sign            `json:"sign"`
	Value     decimal.Decimal `json:"value"`
	Display   string          `json:"display"`
}

// Signed returns Value with Sign applied.
func (c Classification) Signed() decimal.Decimal {
	if c.Sign == SignNegative {
		return c.Value.Neg()
	}
	return c.Value
}

// Classify maps rec to its label, icon class and signed value. It is pure:
// the same record always yields the same Classification.
func Classify(rec domain.ActivityRecord) Classification {
	notional := decimal.NewFromFloat(rec.Size).Mul(decimal.NewFromFloat(rec.Price))

	var label string
	var sign Sign
	value := notional

	switch {
	case rec.Type == domain.ActivityTrade && rec.Side == domain.SideBuy:
		label, sign = LabelBought, SignNegative
	case rec.Type == domain.ActivityTrade && rec.Side == domain.SideSell:
		if decimal.NewFromFloat(rec.Price).LessThan(NearZeroPrice) {
			label, sign = LabelLost, SignNegative
		} else {
			label, sign = LabelSold, SignPositive
		}
	case rec.Type.IsRedemption():
		value = decimal.NewFromFloat(rec.USDCSize)
		if value.IsPositive() {
			label, sign = LabelClaimed, SignPositive
		} else {
			label, sign = LabelLost, SignNegative
		}
	case rec.Type == domain.ActivityMerge:
		label, sign = LabelMerged, SignPositive
	case rec.Type == domain.ActivitySplit:
		label, sign = LabelSplit, SignNegative
	case rec.Type == domain.ActivityReward:
		label, sign = LabelReward, SignPositive
	case rec.Type == domain.ActivityConversion:
		label, sign = LabelConverted, SignPositive
	case rec.Type.IsLoss():
		label, sign = LabelLost, SignNegative
	default:
		// Includes a TRADE with no recognised side.
		label, sign = string(rec.Type), SignNegative
	}

	value = value.Abs()
	return Classification{
		Label:     label,
		IconClass: iconClass(label),
		Sign:      sign,
		Value:     value,
		Display:   formatSigned(sign, value),
	}
}

func iconClass(label string) string {
	switch label {
	case LabelBought:
		return "icon-bought"
	case LabelSold:
		return "icon-sold"
	case LabelClaimed:
		return "icon-claimed"
	case LabelLost:
		return "icon-lost"
	case LabelMerged:
		return "icon-merged"
	case LabelSplit:
		return "icon-split"
	case LabelReward:
		return "icon-reward"
	case LabelConverted:
		return "icon-converted"
	}
	return "icon-other"
}

// formatSigned renders "<sign>$<value>" or "-" when value is not positive.
func formatSigned(sign Sign, value decimal.Decimal) string {
	if !value.IsPositive() {
		return "-"
	}
	return string(sign) + FormatUSD(value)
}
