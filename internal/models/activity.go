package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"
)

// ActivityKind names one of the three activity collections.
type ActivityKind string

const (
	KindReminders      ActivityKind = "reminders"
	KindMedicalRecords ActivityKind = "medical records"
	KindLogs           ActivityKind = "logs"
)

// Reminder statuses the summarizer cares about. Any other value is passed through.
const (
	ReminderStatusOverdue   = "overdue"
	ReminderStatusCompleted = "completed"
)

// Dates holds the date fields an activity record may carry. Records are not
// consistent about which one they use, so recency resolves to the first one
// present and parseable.
type Dates struct {
	DueDate   *Timestamp `json:"due_date,omitempty"`
	Date      *Timestamp `json:"date,omitempty"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
}

// RecencyKey returns the resolved date used for ordering.
func (d Dates) RecencyKey() (time.Time, bool) {
	for _, ts := range []*Timestamp{d.DueDate, d.Date, d.Timestamp} {
		if ts == nil {
			continue
		}
		if t, ok := ts.Time(); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Reminder is a scheduled pet-care task (vaccination, medication, grooming...).
type Reminder struct {
	ID          FlexString `json:"id,omitempty"`
	PetID       FlexString `json:"pet_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Type        string     `json:"type,omitempty"`
	IsRecurring FlexBool   `json:"is_recurring,omitempty"`
	Recurrence  string     `json:"recurrence,omitempty"`
	Dates
	Extra Extra `json:"-"`
}

var reminderKeys = jsonKeys(reflect.TypeOf(Reminder{}))

func (r *Reminder) UnmarshalJSON(data []byte) error {
	type fields Reminder
	extra, err := decodeWithExtra(data, (*fields)(r), reminderKeys)
	if err != nil {
		return err
	}
	r.Extra = extra
	return nil
}

func (r Reminder) MarshalJSON() ([]byte, error) {
	type fields Reminder
	return encodeWithExtra(fields(r), r.Extra)
}

// IsOverdue reports whether the reminder counts as overdue at now.
func (r Reminder) IsOverdue(now time.Time) bool {
	if r.Status == ReminderStatusOverdue {
		return true
	}
	if r.DueDate == nil || r.Status == ReminderStatusCompleted {
		return false
	}
	due, ok := r.DueDate.Time()
	return ok && due.Before(now)
}

// MedicalRecord is an uploaded or entered medical document. ExtractedText holds
// OCR output; Files references the uploaded attachments.
type MedicalRecord struct {
	ID            FlexString      `json:"id,omitempty"`
	PetID         FlexString      `json:"pet_id,omitempty"`
	Title         string          `json:"title,omitempty"`
	Description   string          `json:"description,omitempty"`
	Type          string          `json:"type,omitempty"`
	ExtractedText string          `json:"extractedText,omitempty"`
	VetName       string          `json:"vet_name,omitempty"`
	Clinic        string          `json:"clinic,omitempty"`
	Files         json.RawMessage `json:"files,omitempty"`
	Dates
	Extra Extra `json:"-"`
}

var medicalRecordKeys = jsonKeys(reflect.TypeOf(MedicalRecord{}))

func (m *MedicalRecord) UnmarshalJSON(data []byte) error {
	type fields MedicalRecord
	extra, err := decodeWithExtra(data, (*fields)(m), medicalRecordKeys)
	if err != nil {
		return err
	}
	m.Extra = extra
	return nil
}

func (m MedicalRecord) MarshalJSON() ([]byte, error) {
	type fields MedicalRecord
	return encodeWithExtra(fields(m), m.Extra)
}

// LogEntry is one action the user recorded in the app (fed, walked, weighed...).
type LogEntry struct {
	ID      FlexString      `json:"id,omitempty"`
	PetID   FlexString      `json:"pet_id,omitempty"`
	Action  string          `json:"action,omitempty"`
	Event   string          `json:"event,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
	Dates
	Extra Extra `json:"-"`
}

var logEntryKeys = jsonKeys(reflect.TypeOf(LogEntry{}))

func (l *LogEntry) UnmarshalJSON(data []byte) error {
	type fields LogEntry
	extra, err := decodeWithExtra(data, (*fields)(l), logEntryKeys)
	if err != nil {
		return err
	}
	l.Extra = extra
	return nil
}

func (l LogEntry) MarshalJSON() ([]byte, error) {
	type fields LogEntry
	return encodeWithExtra(fields(l), l.Extra)
}

// Extra holds the keys of an activity record that have no typed field
// (amounts, notes, reminder times...). They are re-emitted unchanged after the
// typed fields, in key order.
type Extra map[string]json.RawMessage

// Without returns a copy of e minus key, matched case-insensitively.
func (e Extra) Without(key string) Extra {
	if len(e) == 0 {
		return e
	}
	out := make(Extra, len(e))
	for k, v := range e {
		if strings.EqualFold(k, key) {
			continue
		}
		out[k] = v
	}
	return out
}

// jsonKeys lists the lower-cased JSON names of t's fields, descending into
// embedded structs. encoding/json matches keys case-insensitively, so extras
// are compared the same way.
func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			for k := range jsonKeys(f.Type) {
				keys[k] = true
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = true
	}
	return keys
}

func decodeWithExtra(data []byte, typed any, known map[string]bool) (Extra, error) {
	if err := json.Unmarshal(data, typed); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra Extra
	for k, v := range all {
		if known[strings.ToLower(k)] {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = v
	}
	return extra, nil
}

func encodeWithExtra(typed any, extra Extra) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(typed); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	if len(extra) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Typed fields always encode as an object; reopen it before the closing brace.
	out = out[:len(out)-1]
	needComma := len(out) > 1
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if needComma {
			out = append(out, ',')
		}
		out = append(out, name...)
		out = append(out, ':')
		if v := extra[k]; len(v) > 0 {
			out = append(out, v...)
		} else {
			out = append(out, "null"...)
		}
		needComma = true
	}
	return append(out, '}'), nil
}
