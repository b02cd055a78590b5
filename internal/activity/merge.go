package activity

import (
	"cmp"
	"slices"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// Merge combines a fetched page with synthesized losses into one feed.
//
// A loss is dropped when its condition ID already has a settlement row
// (REDEEM, CLAIM, LOST or LOSS) in the page or an earlier loss. When rng is
// set, page rows and losses outside it are dropped too. The result is
// stable-sorted by timestamp, newest first. page and losses are not modified.
func Merge(page, losses []domain.ActivityRecord, rng domain.DateRange) []domain.ActivityRecord {
	settled := make(map[string]struct{})
	for i := range page {
		if page[i].Type.IsSettlement() && page[i].ConditionID != "" {
			settled[page[i].ConditionID] = struct{}{}
		}
	}

	out := make([]domain.ActivityRecord, 0, len(page)+len(losses))
	for i := range page {
		if rng.Contains(page[i].Timestamp) {
			out = append(out, page[i])
		}
	}
	for i := range losses {
		loss := losses[i]
		if loss.ConditionID != "" {
			if _, dup := settled[loss.ConditionID]; dup {
				continue
			}
			settled[loss.ConditionID] = struct{}{}
		}
		if rng.Contains(loss.Timestamp) {
			out = append(out, loss)
		}
	}

	SortNewestFirst(out)
	return out
}

// SortNewestFirst stable-sorts recs by timestamp descending in place.
func SortNewestFirst(recs []domain.ActivityRecord) {
	slices.SortStableFunc(recs, func(a, b domain.ActivityRecord) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
}
