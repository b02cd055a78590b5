package domain

import "strings"

// ActivityType is the upstream activity discriminator, kept as the raw
// upper-case string so unknown types survive normalization untouched.
type ActivityType string

const (
	ActivityTrade      ActivityType = "TRADE"
	ActivityRedeem     ActivityType = "REDEEM"
	ActivityClaim      ActivityType = "CLAIM"
	ActivityMerge      ActivityType = "MERGE"
	ActivitySplit      ActivityType = "SPLIT"
	ActivityReward     ActivityType = "REWARD"
	ActivityConversion ActivityType = "CONVERSION"
	ActivityLost       ActivityType = "LOST"
	ActivityLoss       ActivityType = "LOSS"
	ActivityExpire     ActivityType = "EXPIRE"
	ActivityExpired    ActivityType = "EXPIRED"
)

// ParseActivityType upper-cases and trims s. Unknown values are returned as-is
// so the classifier can fall back to the raw label.
func ParseActivityType(s string) ActivityType {
	return ActivityType(strings.ToUpper(strings.TrimSpace(s)))
}

// IsSettlement reports whether t represents the end of a position: a
// redemption, claim, or loss row.
func (t ActivityType) IsSettlement() bool {
	switch t {
	case ActivityRedeem, ActivityClaim, ActivityLost, ActivityLoss:
		return true
	default:
		return false
	}
}

// IsRedemption reports whether t is a REDEEM or CLAIM record.
func (t ActivityType) IsRedemption() bool {
	return t == ActivityRedeem || t == ActivityClaim
}

// IsLoss reports whether t is one of the loss-like types.
func (t ActivityType) IsLoss() bool {
	switch t {
	case ActivityLost, ActivityLoss, ActivityExpire, ActivityExpired:
		return true
	default:
		return false
	}
}

// TradeSide is the direction of a TRADE record.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// ParseTradeSide normalizes s to BUY, SELL, or the empty side.
func ParseTradeSide(s string) TradeSide {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy
	case "SELL":
		return SideSell
	default:
		return ""
	}
}

// ActivityRecord is one normalized historical event for a wallet. Records come
// from the data API or are synthesized locally (LOST rows).
type ActivityRecord struct {
	Type            ActivityType `json:"type"`
	Timestamp       int64        `json:"timestamp"` // unix seconds
	ConditionID     string       `json:"conditionId"`
	Title           string       `json:"title"`
	Icon            string       `json:"icon,omitempty"`
	EventSlug       string       `json:"eventSlug,omitempty"`
	Slug            string       `json:"slug,omitempty"`
	Outcome         string       `json:"outcome,omitempty"`
	Side            TradeSide    `json:"side,omitempty"`
	Size            float64      `json:"size"`
	USDCSize        float64      `json:"usdcSize"`
	Price           float64      `json:"price"`
	TransactionHash string       `json:"transactionHash,omitempty"`
	Synthetic       bool         `json:"synthetic,omitempty"`
}

// MarketSlug returns the slug used to link the record's market, preferring
// the event slug.
func (r *ActivityRecord) MarketSlug() string {
	if r.EventSlug != "" {
		return r.EventSlug
	}
	return r.Slug
}

// ActivityQuery parameterizes an /activity fetch.
type ActivityQuery struct {
	User   string
	Limit  int
	Offset int
	Start  int64 // unix seconds, 0 = unbounded
	End    int64 // unix seconds, 0 = unbounded
	Type   ActivityType
}

// ClosedPositionsQuery parameterizes a /closed-positions fetch.
type ClosedPositionsQuery struct {
	User          string
	Limit         int
	SortBy        string
	SortDirection string
}
