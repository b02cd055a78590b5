package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// flexFloat unmarshals from a JSON number, a numeric string, or null. Values
// that cannot be parsed decode as zero rather than failing the whole page.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			n = 0
		}
		*f = flexFloat(n)
		return nil
	}
	*f = 0
	return nil
}

// flexUnix unmarshals a timestamp sent as seconds or milliseconds, as a
// number or a string. Millisecond values are scaled down to seconds.
type flexUnix int64

// msThreshold separates second and millisecond epochs; 1e12 seconds is far
// beyond any market date.
const msThreshold = 1_000_000_000_000

func (u *flexUnix) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	n := int64(f)
	if n >= msThreshold {
		n /= 1000
	}
	*u = flexUnix(n)
	return nil
}

// firstNonZero returns the first non-zero value, or 0.
func firstNonZero(vals ...flexFloat) float64 {
	for _, v := range vals {
		if v != 0 {
			return float64(v)
		}
	}
	return 0
}

// firstNonEmpty returns the first non-blank string, trimmed.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// parseEndDate accepts RFC3339 timestamps and bare calendar dates. A bare
// date is taken as midnight UTC.
func parseEndDate(vals ...string) *time.Time {
	s := firstNonEmpty(vals...)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", domain.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Data API DTOs
// --------------------------------------------------------------------------

// APIActivity is a row from /activity or /trades. /trades rows carry no
// type and are treated as TRADE by the caller.
type APIActivity struct {
	ProxyWallet     string    `json:"proxyWallet"`
	Type            string    `json:"type"`
	Timestamp       flexUnix  `json:"timestamp"`
	ConditionID     string    `json:"conditionId"`
	Title           string    `json:"title"`
	Icon            string    `json:"icon"`
	EventSlug       string    `json:"eventSlug"`
	Slug            string    `json:"slug"`
	Outcome         string    `json:"outcome"`
	Side            string    `json:"side"`
	Size            flexFloat `json:"size"`
	UsdcSize        flexFloat `json:"usdcSize"`
	UsdcSizeSnake   flexFloat `json:"usdc_size"`
	Price           flexFloat `json:"price"`
	TransactionHash string    `json:"transactionHash"`
}

// APIPosition is a row from /positions.
type APIPosition struct {
	ConditionID   string    `json:"conditionId"`
	Title         string    `json:"title"`
	Outcome       string    `json:"outcome"`
	Size          flexFloat `json:"size"`
	AvgPrice      flexFloat `json:"avgPrice"`
	BuyPrice      flexFloat `json:"buyPrice"`
	CurPrice      flexFloat `json:"curPrice"`
	CurrentPrice  flexFloat `json:"currentPrice"`
	Price         flexFloat `json:"price"`
	EventSlug     string    `json:"eventSlug"`
	Slug          string    `json:"slug"`
	Icon          string    `json:"icon"`
	EndDate       string    `json:"endDate"`
	EndDateSnake  string    `json:"end_date"`
	Redeemable    bool      `json:"redeemable"`
	Mergeable     bool      `json:"mergeable"`
	OutcomeIndex  int       `json:"outcomeIndex"`
	NegativeRisk  bool      `json:"negativeRisk"`
	InitialValue  flexFloat `json:"initialValue"`
	CurrentValue  flexFloat `json:"currentValue"`
	CashPnl       flexFloat `json:"cashPnl"`
	PercentPnl    flexFloat `json:"percentPnl"`
	TotalBought   flexFloat `json:"totalBought"`
	RealizedPnl   flexFloat `json:"realizedPnl"`
	ProxyWallet   string    `json:"proxyWallet"`
	Asset         string    `json:"asset"`
	OppositeAsset string    `json:"oppositeAsset"`
}

// APIClosedPosition is a row from /closed-positions.
type APIClosedPosition struct {
	ConditionID  string    `json:"conditionId"`
	Title        string    `json:"title"`
	Icon         string    `json:"icon"`
	EventSlug    string    `json:"eventSlug"`
	Slug         string    `json:"slug"`
	Outcome      string    `json:"outcome"`
	AvgPrice     flexFloat `json:"avgPrice"`
	BuyPrice     flexFloat `json:"buyPrice"`
	CurPrice     flexFloat `json:"curPrice"`
	RealizedPnl  flexFloat `json:"realizedPnl"`
	TotalBought  flexFloat `json:"totalBought"`
	Size         flexFloat `json:"size"`
	EndDate      string    `json:"endDate"`
	EndDateSnake string    `json:"end_date"`
	Timestamp    flexUnix  `json:"timestamp"`
}

// --------------------------------------------------------------------------
// Normalization: API types -> domain types
//
// Precedence when the upstream sends alternative field names:
//   price:        avgPrice -> buyPrice -> 0
//   current:      curPrice -> currentPrice -> price -> 0
//   usdc size:    usdcSize -> usdc_size -> 0
//   end date:     endDate -> end_date (RFC3339 or YYYY-MM-DD)
//   market slug:  eventSlug -> slug (resolved at display time)
// --------------------------------------------------------------------------

// ToDomainActivity converts an APIActivity to a domain.ActivityRecord.
func (a *APIActivity) ToDomainActivity() domain.ActivityRecord {
	return domain.ActivityRecord{
		Type:            domain.ParseActivityType(a.Type),
		Timestamp:       int64(a.Timestamp),
		ConditionID:     strings.TrimSpace(a.ConditionID),
		Title:           strings.TrimSpace(a.Title),
		Icon:            strings.TrimSpace(a.Icon),
		EventSlug:       strings.TrimSpace(a.EventSlug),
		Slug:            strings.TrimSpace(a.Slug),
		Outcome:         strings.TrimSpace(a.Outcome),
		Side:            domain.ParseTradeSide(a.Side),
		Size:            float64(a.Size),
		USDCSize:        firstNonZero(a.UsdcSize, a.UsdcSizeSnake),
		Price:           float64(a.Price),
		TransactionHash: a.TransactionHash,
	}
}

// ToDomainPosition converts an APIPosition to a domain.Position.
func (p *APIPosition) ToDomainPosition() domain.Position {
	return domain.Position{
		ConditionID:  strings.TrimSpace(p.ConditionID),
		Title:        strings.TrimSpace(p.Title),
		Outcome:      strings.TrimSpace(p.Outcome),
		Size:         float64(p.Size),
		AvgPrice:     firstNonZero(p.AvgPrice, p.BuyPrice),
		CurrentPrice: firstNonZero(p.CurPrice, p.CurrentPrice, p.Price),
		EventSlug:    strings.TrimSpace(p.EventSlug),
		Slug:         strings.TrimSpace(p.Slug),
		Icon:         strings.TrimSpace(p.Icon),
		EndDate:      parseEndDate(p.EndDate, p.EndDateSnake),
	}
}

// ToDomainClosedPosition converts an APIClosedPosition to a
// domain.ClosedPosition. When no end date is sent, the row timestamp stands in.
func (c *APIClosedPosition) ToDomainClosedPosition() domain.ClosedPosition {
	cp := domain.ClosedPosition{
		ConditionID: strings.TrimSpace(c.ConditionID),
		Title:       strings.TrimSpace(c.Title),
		Icon:        strings.TrimSpace(c.Icon),
		EventSlug:   strings.TrimSpace(c.EventSlug),
		Slug:        strings.TrimSpace(c.Slug),
		Outcome:     strings.TrimSpace(c.Outcome),
		AvgPrice:    firstNonZero(c.AvgPrice, c.BuyPrice),
		CurPrice:    float64(c.CurPrice),
		RealizedPnl: float64(c.RealizedPnl),
		TotalBought: float64(c.TotalBought),
		Size:        float64(c.Size),
		EndDate:     parseEndDate(c.EndDate, c.EndDateSnake),
	}
	if cp.EndDate == nil && c.Timestamp > 0 {
		t := time.Unix(int64(c.Timestamp), 0).UTC()
		cp.EndDate = &t
	}
	return cp
}
