package summary

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/pawcare/pawcare-api/internal/models"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "short", input: "annual booster", want: "annual booster"},
		{name: "exactly at limit", input: strings.Repeat("a", MaxFieldLength), want: strings.Repeat("a", MaxFieldLength)},
		{name: "one over", input: strings.Repeat("a", MaxFieldLength+1), want: strings.Repeat("a", MaxFieldLength) + TruncationMarker},
		{name: "multibyte counted as characters", input: strings.Repeat("é", MaxFieldLength+20), want: strings.Repeat("é", MaxFieldLength) + TruncationMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Truncate(tt.input))
		})
	}
}

func TestTruncate_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringN(0, 900, -1).Draw(rt, "s")
		got := Truncate(s)

		n := utf8.RuneCountInString(s)
		if n <= MaxFieldLength {
			if got != s {
				rt.Fatalf("expected unchanged string")
			}
			return
		}
		if !strings.HasSuffix(got, TruncationMarker) {
			rt.Fatalf("expected truncation marker, got %q", got)
		}
		if utf8.RuneCountInString(got) != MaxFieldLength+utf8.RuneCountInString(TruncationMarker) {
			rt.Fatalf("unexpected length %d", utf8.RuneCountInString(got))
		}
	})
}

func TestSanitizeMedicalRecord(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 800)
	original := models.MedicalRecord{
		Title:         "Bloodwork",
		Description:   long,
		ExtractedText: long,
		Files:         json.RawMessage(`[{"url":"https://files.example.com/cbc.pdf"}]`),
		Extra: models.Extra{
			"FILES":    json.RawMessage(`["https://files.example.com/xray.png"]`),
			"lab_code": json.RawMessage(`"CBC-7"`),
		},
	}

	got := SanitizeMedicalRecord(original)

	assert.Nil(t, got.Files)
	assert.True(t, strings.HasSuffix(got.Description, TruncationMarker))
	assert.True(t, strings.HasSuffix(got.ExtractedText, TruncationMarker))
	assert.Equal(t, "Bloodwork", got.Title)

	// The caller's record is not modified.
	assert.NotEmpty(t, original.Files)
	assert.Contains(t, original.Extra, "FILES")
	assert.Equal(t, long, original.Description)

	out, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(out)), "files")
	assert.NotContains(t, string(out), "cbc.pdf")
	assert.NotContains(t, string(out), "xray.png")
	assert.Contains(t, string(out), `"lab_code":"CBC-7"`)
}

func TestSanitizeMedicalRecord_DecodedFiles(t *testing.T) {
	t.Parallel()

	var rec models.MedicalRecord
	err := json.Unmarshal([]byte(`{"title":"X-ray","files":{"front":"https://files.example.com/xray.png"},"clinic_phone":"555-0100"}`), &rec)
	assert.NoError(t, err)

	out, err := json.Marshal(SanitizeMedicalRecord(rec))
	assert.NoError(t, err)
	assert.NotContains(t, string(out), "xray.png")
	assert.Contains(t, string(out), `"clinic_phone":"555-0100"`)
}

func TestSanitizeReminder(t *testing.T) {
	t.Parallel()

	r := models.Reminder{Title: "Heartworm pill", Description: strings.Repeat("y", 501), Status: "pending"}
	got := SanitizeReminder(r)

	assert.Equal(t, strings.Repeat("y", 500)+TruncationMarker, got.Description)
	assert.Equal(t, "Heartworm pill", got.Title)
	assert.Equal(t, "pending", got.Status)
}
