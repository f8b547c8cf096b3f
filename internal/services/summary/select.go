// Package summary turns a user's pet-care activity into the bounded context
// block that is sent to the language model with every chat message.
package summary

import (
	"slices"
	"time"
)

// DefaultLimit is the number of records per collection that reach the prompt.
const DefaultLimit = 5

// Dated is implemented by every activity record (through models.Dates).
type Dated interface {
	RecencyKey() (time.Time, bool)
}

// SelectRecent returns at most limit items ordered most-recent-first. Items
// without a usable date sort after all dated items; ties keep their input order.
// The input slice is never reordered. A non-positive limit means DefaultLimit.
func SelectRecent[T Dated](items []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return compareRecency(a, b)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit:limit]
	}
	return sorted
}

// compareRecency orders newer before older and undated last.
func compareRecency(a, b Dated) int {
	ta, okA := a.RecencyKey()
	tb, okB := b.RecencyKey()
	switch {
	case okA && okB:
		return tb.Compare(ta)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}
