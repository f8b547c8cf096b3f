package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when decoding a date string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a date value as sent by the mobile client. The client is not
// consistent about formats, so a Timestamp keeps the original JSON value for
// re-serialization and separately records whether it resolved to a usable time.
// An unparseable string is kept but reports ok=false from Time.
type Timestamp struct {
	raw   json.RawMessage
	t     time.Time
	valid bool
}

// NewTimestamp returns a valid Timestamp for t.
func NewTimestamp(t time.Time) Timestamp {
	raw, _ := json.Marshal(t.UTC().Format(time.RFC3339))
	return Timestamp{raw: raw, t: t, valid: true}
}

// ParseTimestamp builds a Timestamp from a string using the accepted layouts.
// The result is invalid (but keeps s) when no layout matches.
func ParseTimestamp(s string) Timestamp {
	raw, _ := json.Marshal(s)
	ts := Timestamp{raw: raw}
	if t, ok := parseTimeString(s); ok {
		ts.t = t
		ts.valid = true
	}
	return ts
}

// TimestampPtr is a convenience for building optional date fields.
func TimestampPtr(t time.Time) *Timestamp {
	ts := NewTimestamp(t)
	return &ts
}

// Time returns the resolved time and whether the value was usable.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.valid
}

// String returns the original value without JSON quoting.
func (ts Timestamp) String() string {
	var s string
	if err := json.Unmarshal(ts.raw, &s); err == nil {
		return s
	}
	return string(ts.raw)
}

// UnmarshalJSON accepts date strings and epoch milliseconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*ts = Timestamp{raw: append(json.RawMessage(nil), data...)}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		ts.raw = nil
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
		if t, ok := parseTimeString(s); ok {
			ts.t = t
			ts.valid = true
		}
		return nil
	default:
		ms, err := strconv.ParseFloat(string(data), 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: must be a string or epoch milliseconds", string(data))
		}
		// Numbers beyond the int64 millisecond range are kept but never resolve.
		if math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
			return nil
		}
		ts.t = time.UnixMilli(int64(ms)).UTC()
		ts.valid = true
		return nil
	}
}

// MarshalJSON writes the value exactly as it was received.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if len(ts.raw) == 0 {
		if ts.valid {
			return json.Marshal(ts.t.UTC().Format(time.RFC3339))
		}
		return []byte("null"), nil
	}
	return ts.raw, nil
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
