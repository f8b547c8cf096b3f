package summary

import (
	"unicode/utf8"

	"github.com/pawcare/pawcare-api/internal/models"
)

const (
	// MaxFieldLength is the longest free-text field, in characters, sent to the model.
	MaxFieldLength = 500
	// TruncationMarker is appended to every field cut at MaxFieldLength.
	TruncationMarker = "...[truncated]"
)

// Truncate cuts s to MaxFieldLength characters and appends TruncationMarker.
// Strings within the limit are returned unchanged.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxFieldLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxFieldLength]) + TruncationMarker
}

// SanitizeReminder returns a copy of r with its description bounded.
func SanitizeReminder(r models.Reminder) models.Reminder {
	r.Description = Truncate(r.Description)
	return r
}

// SanitizeMedicalRecord returns a copy of m with free text bounded and file
// references removed. Attachments never reach the model.
func SanitizeMedicalRecord(m models.MedicalRecord) models.MedicalRecord {
	m.Description = Truncate(m.Description)
	m.ExtractedText = Truncate(m.ExtractedText)
	m.Files = nil
	m.Extra = m.Extra.Without("files")
	return m
}

func sanitizeAll[T any](items []T, fn func(T) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
