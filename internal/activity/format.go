package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MarketBaseURL is the public market page prefix.
const MarketBaseURL = "https://polymarket.com/event/"

// UnknownMarket is shown when a record carries no title.
const UnknownMarket = "Unknown Market"

// FormatUSD renders d as "$1234.50". Negative values keep their sign before
// the dollar symbol.
func FormatUSD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatSignedUSD renders d with an explicit "+" or "-".
func FormatSignedUSD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

// FormatPercent renders p with two decimals and a trailing "%".
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}

// PriceCents renders a 0..1 price as whole cents, e.g. 0.42 -> "42¢".
func PriceCents(price float64) string {
	return decimal.NewFromFloat(price).Shift(2).StringFixed(0) + "¢"
}

// Shares renders a share count with one decimal.
func Shares(size float64) string {
	return decimal.NewFromFloat(size).StringFixed(1)
}

// MarketURL links a market slug, or "#" when there is none.
func MarketURL(slug string) string {
	if slug == "" {
		return "#"
	}
	return MarketBaseURL + slug
}

// MarketTitle returns title or UnknownMarket.
func MarketTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return UnknownMarket
	}
	return title
}

// BadgeClass is "badge-yes" for a Yes outcome and "badge-no" otherwise.
func BadgeClass(outcome string) string {
	if strings.EqualFold(strings.TrimSpace(outcome), "yes") {
		return "badge-yes"
	}
	return "badge-no"
}

// RelativeTime renders a unix timestamp relative to now: "Just now", "5m ago",
// "3h ago", "2d ago", and "Jan 2" in loc beyond a week. Zero renders empty.
func RelativeTime(ts int64, now time.Time, loc *time.Location) string {
	if ts == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(ts, 0)
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return t.In(loc).Format("Jan 2")
	}
}
