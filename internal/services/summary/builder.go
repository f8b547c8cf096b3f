package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pawcare/pawcare-api/internal/models"
)

// SystemPolicy is the fixed instruction placed ahead of the user's context.
const SystemPolicy = `You are PawCare's pet-health assistant. You help owners understand their pet's care history and plan next steps.

Rules:
- Cross-reference reminders with medical records. For example, check whether a vaccination reminder is covered by a matching vaccination record, and point out reminders that look satisfied, missed or contradicted.
- When the user asks what a document says, reproduce its extracted text verbatim instead of paraphrasing.
- If information the user asks about is missing from the context (a field, a date, a result), say explicitly that it is missing.
- Never invent reminders, records, dates, test results, doses or diagnoses that are not in the context.
- For symptoms, diagnoses, medication doses, or any ambiguous medical question, recommend consulting a veterinarian.`

const contextPreamble = `The following is the user's data from the app. Use it fully and exactly as given when answering. Do not mention that you were given this context unless it is relevant to the question.`

// Builder assembles the system instruction for one chat request.
type Builder struct {
	// Limit is the number of records kept per collection.
	Limit int
	// Now is the clock used for overdue checks and the current-date line.
	Now func() time.Time
}

// NewBuilder returns a Builder with the default limit and the wall clock.
func NewBuilder() *Builder {
	return &Builder{
		Limit: DefaultLimit,
		Now:   time.Now,
	}
}

// BuildSystemInstruction returns SystemPolicy followed by the rendered context.
func (b *Builder) BuildSystemInstruction(c models.ChatContext) (string, error) {
	contextText, err := b.BuildContext(c)
	if err != nil {
		return "", err
	}
	return SystemPolicy + "\n\n" + contextText, nil
}

// BuildContext renders the user context: preamble, user name, pet profile, and
// for each activity kind a summary line followed by its recent records.
func (b *Builder) BuildContext(c models.ChatContext) (string, error) {
	now := b.now()
	limit := b.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	reminders := sanitizeAll(SelectRecent(c.Reminders, limit), SanitizeReminder)
	records := sanitizeAll(SelectRecent(c.MedicalRecords, limit), SanitizeMedicalRecord)
	logs := sanitizeAll(SelectRecent(c.Logs, limit), func(l models.LogEntry) models.LogEntry { return l })

	var sb strings.Builder
	sb.WriteString(contextPreamble)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Current date: %s\n", now.Format("2006-01-02"))
	if c.User != nil && strings.TrimSpace(c.User.Name) != "" {
		fmt.Fprintf(&sb, "User name: %s\n", c.User.Name)
	}

	if c.Pet == nil {
		sb.WriteString("\nPet profile: not provided.\n")
	} else {
		sb.WriteString("\nPet profile:\n")
		if err := writeJSON(&sb, c.Pet); err != nil {
			return "", fmt.Errorf("failed to render pet profile: %w", err)
		}
	}

	sections := []struct {
		kind    models.ActivityKind
		summary string
		items   any
	}{
		{models.KindReminders, SummarizeReminders(c.Reminders, now), reminders},
		{models.KindMedicalRecords, SummarizeMedicalRecords(c.MedicalRecords), records},
		{models.KindLogs, SummarizeLogs(c.Logs), logs},
	}
	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(s.summary)
		fmt.Fprintf(&sb, "\nRecent %s (up to %d, most recent first):\n", s.kind, limit)
		if err := writeJSON(&sb, s.items); err != nil {
			return "", fmt.Errorf("failed to render %s: %w", s.kind, err)
		}
	}

	return sb.String(), nil
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// writeJSON renders v indented, without HTML escaping, followed by a newline.
func writeJSON(sb *strings.Builder, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	sb.Write(buf.Bytes())
	return nil
}
