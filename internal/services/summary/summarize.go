package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawcare/pawcare-api/internal/models"
)

const notAvailable = "N/A"

// SummarizeReminders reports totals, overdue and recurring counts, and the
// most recent reminder.
func SummarizeReminders(items []models.Reminder, now time.Time) string {
	if len(items) == 0 {
		return "No reminders."
	}

	overdue, recurring := 0, 0
	for _, r := range items {
		if r.IsOverdue(now) {
			overdue++
		}
		if r.IsRecurring {
			recurring++
		}
	}

	latest := ""
	if recent := SelectRecent(items, 1); len(recent) > 0 {
		latest = firstNonEmpty(recent[0].Title, recent[0].Description)
	}

	return fmt.Sprintf("Reminders: %d total, %d overdue, %d recurring. Most recent: %s.",
		len(items), overdue, recurring, describe(latest))
}

// SummarizeMedicalRecords reports the total, a per-type breakdown in
// first-seen order, and the most recent record.
func SummarizeMedicalRecords(items []models.MedicalRecord) string {
	if len(items) == 0 {
		return "No medical records."
	}

	counts := make(map[string]int)
	var order []string
	for _, m := range items {
		if m.Type == "" {
			continue
		}
		if _, seen := counts[m.Type]; !seen {
			order = append(order, m.Type)
		}
		counts[m.Type]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Medical records: %d total", len(items))
	if len(order) > 0 {
		parts := make([]string, 0, len(order))
		for _, t := range order {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], t))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}

	latest := ""
	if recent := SelectRecent(items, 1); len(recent) > 0 {
		latest = recent[0].Title
	}
	fmt.Fprintf(&b, ". Most recent: %s.", describe(latest))

	return b.String()
}

// SummarizeLogs reports how many log entries were provided and the most recent
// action. The count covers whatever the client sent; it is not a date window.
func SummarizeLogs(items []models.LogEntry) string {
	if len(items) == 0 {
		return "No logs."
	}

	latest := ""
	if recent := SelectRecent(items, 1); len(recent) > 0 {
		latest = firstNonEmpty(recent[0].Action, recent[0].Event)
	}

	return fmt.Sprintf("Logs: %d provided (not filtered by date). Most recent: %s.",
		len(items), describe(latest))
}

func describe(name string) string {
	if name == "" {
		return notAvailable
	}
	return `"` + name + `"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
