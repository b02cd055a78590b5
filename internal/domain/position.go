package domain

import "time"

// Position is an address's current holding of shares in one market outcome,
// as reported by /positions.
type Position struct {
	ConditionID  string     `json:"conditionId"`
	Title        string     `json:"title"`
	Outcome      string     `json:"outcome"`
	Size         float64    `json:"size"`
	AvgPrice     float64    `json:"avgPrice"`
	CurrentPrice float64    `json:"currentPrice"`
	EventSlug    string     `json:"eventSlug,omitempty"`
	Slug         string     `json:"slug,omitempty"`
	Icon         string     `json:"icon,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

// IsOpen reports whether the position still has shares and its market has not
// passed its end date at now.
func (p *Position) IsOpen(now time.Time) bool {
	if p.Size <= 0 {
		return false
	}
	return p.EndDate == nil || p.EndDate.After(now)
}

// MarketSlug returns the slug used to link the position's market.
func (p *Position) MarketSlug() string {
	if p.EventSlug != "" {
		return p.EventSlug
	}
	return p.Slug
}

// ClosedPosition is a settled or fully exited position from /closed-positions.
// It is the read-only source for loss synthesis and outcome backfill.
type ClosedPosition struct {
	ConditionID string     `json:"conditionId"`
	Title       string     `json:"title"`
	Icon        string     `json:"icon,omitempty"`
	EventSlug   string     `json:"eventSlug,omitempty"`
	Slug        string     `json:"slug,omitempty"`
	Outcome     string     `json:"outcome"`
	AvgPrice    float64    `json:"avgPrice"`
	CurPrice    float64    `json:"curPrice"`
	RealizedPnl float64    `json:"realizedPnl"`
	TotalBought float64    `json:"totalBought"`
	Size        float64    `json:"size"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}
