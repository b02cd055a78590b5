package activity

import (
	"time"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// Row is one activity record prepared for display.
type Row struct {
	domain.ActivityRecord
	Classification Classification `json:"classification"`
	MarketTitle    string         `json:"marketTitle"`
	MarketURL      string         `json:"marketUrl"`
	ShowBadge      bool           `json:"showBadge"`
	BadgeClass     string         `json:"badgeClass,omitempty"`
	PriceCents     string         `json:"priceCents"`
	Shares         string         `json:"shares"`
	When           string         `json:"when"`
}

// NewRow classifies rec and renders its display fields relative to now.
func NewRow(rec domain.ActivityRecord, now time.Time, loc *time.Location) Row {
	row := Row{
		ActivityRecord: rec,
		Classification: Classify(rec),
		MarketTitle:    MarketTitle(rec.Title),
		MarketURL:      MarketURL(rec.MarketSlug()),
		ShowBadge:      rec.Outcome != "",
		PriceCents:     PriceCents(rec.Price),
		Shares:         Shares(rec.Size),
		When:           RelativeTime(rec.Timestamp, now, loc),
	}
	if row.ShowBadge {
		row.BadgeClass = BadgeClass(rec.Outcome)
	}
	return row
}

// Rows converts a feed into display rows.
func Rows(recs []domain.ActivityRecord, now time.Time, loc *time.Location) []Row {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, NewRow(rec, now, loc))
	}
	return rows
}
