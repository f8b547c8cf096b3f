package summary

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/pawcare/pawcare-api/internal/models"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func reminderAt(title string, daysAgo int) models.Reminder {
	return models.Reminder{
		Title: title,
		Dates: models.Dates{DueDate: models.TimestampPtr(baseTime.AddDate(0, 0, -daysAgo))},
	}
}

func titles(items []models.Reminder) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.Title)
	}
	return out
}

func TestSelectRecent_OrdersAndLimits(t *testing.T) {
	t.Parallel()

	items := []models.Reminder{
		reminderAt("d3", 3),
		reminderAt("d1", 1),
		{Title: "undated"},
		reminderAt("d6", 6),
		reminderAt("d2", 2),
		reminderAt("d5", 5),
		reminderAt("d4", 4),
	}

	got := SelectRecent(items, 5)
	assert.Equal(t, []string{"d1", "d2", "d3", "d4", "d5"}, titles(got))

	// Input order is untouched.
	assert.Equal(t, "d3", items[0].Title)
}

func TestSelectRecent_UndatedSortLast(t *testing.T) {
	t.Parallel()

	items := []models.Reminder{
		{Title: "first undated"},
		{Title: "bad date", Dates: models.Dates{DueDate: ptr(models.ParseTimestamp("next tuesday"))}},
		reminderAt("dated", 10),
	}

	got := SelectRecent(items, 5)
	assert.Equal(t, []string{"dated", "first undated", "bad date"}, titles(got))
}

func TestSelectRecent_FallsBackThroughDateFields(t *testing.T) {
	t.Parallel()

	items := []models.LogEntry{
		{Action: "old timestamp", Dates: models.Dates{Timestamp: models.TimestampPtr(baseTime.AddDate(0, 0, -3))}},
		{Action: "date", Dates: models.Dates{Date: models.TimestampPtr(baseTime.AddDate(0, 0, -1))}},
		{Action: "invalid due, valid date", Dates: models.Dates{
			DueDate: ptr(models.ParseTimestamp("soon")),
			Date:    models.TimestampPtr(baseTime),
		}},
	}

	got := SelectRecent(items, 5)
	require.Len(t, got, 3)
	assert.Equal(t, "invalid due, valid date", got[0].Action)
	assert.Equal(t, "date", got[1].Action)
	assert.Equal(t, "old timestamp", got[2].Action)
}

func TestSelectRecent_TiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	items := []models.Reminder{
		reminderAt("a", 1),
		reminderAt("b", 1),
		reminderAt("c", 1),
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles(SelectRecent(items, 5)))
}

func TestSelectRecent_EmptyAndDefaultLimit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SelectRecent[models.Reminder](nil, 5))

	items := make([]models.Reminder, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, reminderAt(fmt.Sprintf("r%d", i), i))
	}
	assert.Len(t, SelectRecent(items, 0), DefaultLimit)
}

func TestSelectRecent_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 15).Draw(rt, "n")
		items := make([]models.Reminder, 0, n)
		for i := 0; i < n; i++ {
			r := models.Reminder{Title: fmt.Sprintf("r%d", i)}
			if rapid.Bool().Draw(rt, fmt.Sprintf("dated%d", i)) {
				days := rapid.IntRange(0, 400).Draw(rt, fmt.Sprintf("days%d", i))
				r.DueDate = models.TimestampPtr(baseTime.AddDate(0, 0, -days))
			}
			items = append(items, r)
		}

		got := SelectRecent(items, DefaultLimit)

		if n <= DefaultLimit {
			if len(got) != n {
				rt.Fatalf("expected all %d items, got %d", n, len(got))
			}
		} else if len(got) != DefaultLimit {
			rt.Fatalf("expected %d items, got %d", DefaultLimit, len(got))
		}

		// Non-increasing dates, undated only after every dated item.
		seenUndated := false
		for i, r := range got {
			ti, ok := r.RecencyKey()
			if !ok {
				seenUndated = true
				continue
			}
			if seenUndated {
				rt.Fatalf("dated item %q after an undated one", r.Title)
			}
			if i > 0 {
				if prev, okPrev := got[i-1].RecencyKey(); okPrev && prev.Before(ti) {
					rt.Fatalf("item %d newer than item %d", i, i-1)
				}
			}
		}

		// Nothing left out is newer than the oldest dated item kept.
		kept := make(map[string]bool, len(got))
		for _, r := range got {
			kept[r.Title] = true
		}
		if len(got) == 0 {
			return
		}
		last, lastOK := got[len(got)-1].RecencyKey()
		for _, r := range items {
			if kept[r.Title] {
				continue
			}
			ti, ok := r.RecencyKey()
			if ok && (!lastOK || ti.After(last)) {
				rt.Fatalf("dropped %q is newer than a kept item", r.Title)
			}
		}
	})
}

func ptr[T any](v T) *T {
	return &v
}
