// Package activity turns raw data API pages into the merged, classified
// activity feed: outcome resolution, loss synthesis, merging and display
// classification.
package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// DefaultDeepHistoryLimit is the size of the extended /trades page fetched
// when the current page cannot resolve every redemption.
const DefaultDeepHistoryLimit = 200

// TradeHistory is the subset of the data API the resolver needs.
type TradeHistory interface {
	Trades(ctx context.Context, user string, limit, offset int) ([]domain.ActivityRecord, error)
}

// Resolution reports what Resolve filled in. Partial is set when some
// redemption is left without an outcome or the deep history fetch failed;
// Err holds that failure.
type Resolution struct {
	Filled     int
	Unresolved []string // condition IDs still missing an outcome
	Partial    bool
	Err        error
}

type outcomeHint struct {
	outcome string
	price   float64
}

// OutcomeResolver back-fills outcome and price on REDEEM/CLAIM records from
// the wallet's trades.
type OutcomeResolver struct {
	trades TradeHistory
	limit  int
	logger *slog.Logger
}

// NewOutcomeResolver creates an OutcomeResolver. limit <= 0 uses
// DefaultDeepHistoryLimit.
func NewOutcomeResolver(trades TradeHistory, limit int, logger *slog.Logger) *OutcomeResolver {
	if limit <= 0 {
		limit = DefaultDeepHistoryLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OutcomeResolver{
		trades: trades,
		limit:  limit,
		logger: logger,
	}
}

// Resolve fills missing outcomes on the REDEEM/CLAIM records of page in
// place. Only empty outcomes and zero prices are written. A failed deep
// fetch degrades the result instead of returning an error.
func (r *OutcomeResolver) Resolve(ctx context.Context, user string, page []domain.ActivityRecord) Resolution {
	hints := make(map[string]outcomeHint)
	collectTradeHints(hints, page, nil)

	missing := missingOutcomes(page, hints)

	var res Resolution
	if len(missing) > 0 {
		deep, err := r.trades.Trades(ctx, user, r.limit, 0)
		if err != nil {
			res.Err = fmt.Errorf("activity: deep trade history: %w", err)
			r.logger.WarnContext(ctx, "activity: outcome resolution degraded",
				slog.String("user", user),
				slog.Int("missing", len(missing)),
				slog.String("error", err.Error()),
			)
		} else {
			collectTradeHints(hints, deep, missing)
		}
	}

	res.Filled = applyHints(page, hints)
	res.Unresolved = UnresolvedOutcomes(page)
	res.Partial = res.Err != nil || len(res.Unresolved) > 0
	return res
}

// collectTradeHints records the first outcome seen per condition ID among
// TRADE records. When only is non-nil, other condition IDs are ignored.
func collectTradeHints(hints map[string]outcomeHint, recs []domain.ActivityRecord, only map[string]struct{}) {
	for i := range recs {
		rec := &recs[i]
		if rec.Type != domain.ActivityTrade || rec.Outcome == "" || rec.ConditionID == "" {
			continue
		}
		if only != nil {
			if _, ok := only[rec.ConditionID]; !ok {
				continue
			}
		}
		if _, seen := hints[rec.ConditionID]; seen {
			continue
		}
		hints[rec.ConditionID] = outcomeHint{outcome: rec.Outcome, price: rec.Price}
	}
}

func needsOutcome(rec *domain.ActivityRecord) bool {
	return rec.Type.IsRedemption() && rec.Outcome == "" && rec.ConditionID != ""
}

func missingOutcomes(page []domain.ActivityRecord, hints map[string]outcomeHint) map[string]struct{} {
	missing := make(map[string]struct{})
	for i := range page {
		if !needsOutcome(&page[i]) {
			continue
		}
		if _, ok := hints[page[i].ConditionID]; !ok {
			missing[page[i].ConditionID] = struct{}{}
		}
	}
	return missing
}

func applyHints(page []domain.ActivityRecord, hints map[string]outcomeHint) int {
	filled := 0
	for i := range page {
		rec := &page[i]
		if !needsOutcome(rec) {
			continue
		}
		h, ok := hints[rec.ConditionID]
		if !ok {
			continue
		}
		rec.Outcome = h.outcome
		if rec.Price == 0 {
			rec.Price = h.price
		}
		filled++
	}
	return filled
}

// UnresolvedOutcomes lists the condition IDs of REDEEM/CLAIM records that
// still lack an outcome, once each, in page order.
func UnresolvedOutcomes(page []domain.ActivityRecord) []string {
	var ids []string
	seen := make(map[string]struct{})
	for i := range page {
		if !needsOutcome(&page[i]) {
			continue
		}
		id := page[i].ConditionID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
