package summary

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcare/pawcare-api/internal/models"
)

func fixedBuilder() *Builder {
	return &Builder{
		Limit: DefaultLimit,
		Now:   func() time.Time { return baseTime },
	}
}

func TestBuilder_SystemInstructionStartsWithPolicy(t *testing.T) {
	t.Parallel()

	got, err := fixedBuilder().BuildSystemInstruction(models.ChatContext{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, SystemPolicy+"\n\n"))
	assert.Contains(t, got, "Current date: 2024-06-01")
	assert.Contains(t, got, "Pet profile: not provided.")
	assert.Contains(t, got, "No reminders.")
	assert.Contains(t, got, "No medical records.")
	assert.Contains(t, got, "No logs.")
	assert.NotContains(t, got, "null")
}

func TestBuilder_KeepsFiveMostRecentReminders(t *testing.T) {
	t.Parallel()

	var c models.ChatContext
	for i := 1; i <= 6; i++ {
		c.Reminders = append(c.Reminders, models.Reminder{
			Title: fmt.Sprintf("reminder-%d", i),
			Dates: models.Dates{DueDate: models.TimestampPtr(time.Date(2024, 1, i, 9, 0, 0, 0, time.UTC))},
		})
	}

	got, err := fixedBuilder().BuildContext(c)
	require.NoError(t, err)

	for i := 2; i <= 6; i++ {
		assert.Contains(t, got, fmt.Sprintf(`"title": "reminder-%d"`, i))
	}
	assert.NotContains(t, got, `"title": "reminder-1"`)
	// The summary still counts every reminder.
	assert.Contains(t, got, "Reminders: 6 total, 6 overdue, 0 recurring.")
	assert.Less(t, strings.Index(got, "reminder-6"), strings.Index(got, "reminder-2"))
}

func TestBuilder_PetProfileWhitelist(t *testing.T) {
	t.Parallel()

	var c models.ChatContext
	err := json.Unmarshal([]byte(`{
		"user": {"name": "Sam", "email": "sam@example.com"},
		"pet": {"name": "Rex", "species": "dog", "microchip": "985112345678903", "insurance_policy": "P-77"}
	}`), &c)
	require.NoError(t, err)

	got, err := fixedBuilder().BuildContext(c)
	require.NoError(t, err)

	assert.Contains(t, got, "User name: Sam")
	assert.Contains(t, got, `"name": "Rex"`)
	assert.Contains(t, got, `"species": "dog"`)
	assert.NotContains(t, got, "microchip")
	assert.NotContains(t, got, "insurance_policy")
	assert.NotContains(t, got, "sam@example.com")
}

func TestBuilder_MedicalRecordsAreSanitized(t *testing.T) {
	t.Parallel()

	var c models.ChatContext
	err := json.Unmarshal([]byte(`{
		"medical_records": [{
			"title": "Discharge notes",
			"type": "visit",
			"date": "2024-05-20",
			"extractedText": "`+strings.Repeat("z", 700)+`",
			"files": [{"name": "notes.pdf", "url": "https://files.example.com/notes.pdf"}]
		}]
	}`), &c)
	require.NoError(t, err)

	got, err := fixedBuilder().BuildContext(c)
	require.NoError(t, err)

	assert.Contains(t, got, strings.Repeat("z", MaxFieldLength)+TruncationMarker)
	assert.NotContains(t, got, strings.Repeat("z", MaxFieldLength+1))
	assert.NotContains(t, got, "notes.pdf")
	assert.Contains(t, got, `Medical records: 1 total (1 visit). Most recent: "Discharge notes".`)
	// Dates are echoed as the client sent them.
	assert.Contains(t, got, `"date": "2024-05-20"`)
}

func TestBuilder_KeepsUntypedRecordFields(t *testing.T) {
	t.Parallel()

	var c models.ChatContext
	err := json.Unmarshal([]byte(`{
		"reminders": [{
			"title": "Heartworm pill",
			"due_date": "2024-05-30",
			"time": "08:00",
			"frequency": "monthly",
			"is_recurring": "true"
		}],
		"logs": [{
			"action": "fed",
			"timestamp": 1717200000000,
			"amount": "2 cups",
			"notes": "ate <all> of it",
			"meta": {"bowl": "blue"}
		}]
	}`), &c)
	require.NoError(t, err)

	got, err := fixedBuilder().BuildContext(c)
	require.NoError(t, err)

	assert.Contains(t, got, `"time": "08:00"`)
	assert.Contains(t, got, `"frequency": "monthly"`)
	assert.Contains(t, got, `"amount": "2 cups"`)
	assert.Contains(t, got, `"notes": "ate <all> of it"`)
	assert.Contains(t, got, `"bowl": "blue"`)
	assert.Contains(t, got, "1 recurring")
}

func TestBuilder_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	c := models.ChatContext{
		Logs: []models.LogEntry{{Action: "gave <1/2> tablet & water"}},
	}

	got, err := fixedBuilder().BuildContext(c)
	require.NoError(t, err)
	assert.Contains(t, got, "gave <1/2> tablet & water")
}

func TestBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	c := models.ChatContext{
		Reminders: []models.Reminder{
			{Title: "a"}, {Title: "b"}, reminderAt("c", 3), reminderAt("d", 3),
		},
	}

	b := fixedBuilder()
	first, err := b.BuildSystemInstruction(c)
	require.NoError(t, err)
	second, err := b.BuildSystemInstruction(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
