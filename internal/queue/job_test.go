package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/models"
)

func TestNewHealthReportJob(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	c := models.ChatContext{Pet: &models.PetProfile{Name: "Rex"}}

	job := NewHealthReportJob(reportID, "auth0|abc", c)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeHealthReport {
		t.Errorf("Expected job type to be %s, got %s", JobTypeHealthReport, job.Type)
	}
	if job.ReportID != reportID {
		t.Errorf("Expected report ID to be %s, got %s", reportID, job.ReportID)
	}
	if job.NotAfter == nil || job.NotAfter.Sub(job.CreatedAt) != DefaultJobTTL {
		t.Errorf("Expected NotAfter one TTL after creation, got %v", job.NotAfter)
	}
	if job.IsExpired() {
		t.Error("Expected a new job not to be expired")
	}
	if !job.Validate() {
		t.Error("Expected a new job to be valid")
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Minute)

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{name: "no expiration", job: &Job{}, want: false},
		{name: "expired", job: &Job{NotAfter: &past}, want: true},
		{name: "not yet expired", job: &Job{NotAfter: &future}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.job.IsExpired(); got != tt.want {
				t.Errorf("Expected IsExpired() = %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	if (&Job{Type: JobTypeHealthReport}).Validate() {
		t.Error("Expected job without report ID to be invalid")
	}
	if (&Job{Type: "task_analysis", ReportID: uuid.New()}).Validate() {
		t.Error("Expected unknown job type to be invalid")
	}
}

func TestJob_JSONCarriesContext(t *testing.T) {
	t.Parallel()

	var c models.ChatContext
	if err := json.Unmarshal([]byte(`{"reminders":[{"title":"Rabies","due_date":"2024-05-01"}]}`), &c); err != nil {
		t.Fatalf("Unmarshal context: %v", err)
	}
	job := NewHealthReportJob(uuid.New(), "", c)

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(decoded.Context.Reminders) != 1 {
		t.Fatalf("Expected 1 reminder, got %d", len(decoded.Context.Reminders))
	}
	due, ok := decoded.Context.Reminders[0].DueDate.Time()
	if !ok || due.Format("2006-01-02") != "2024-05-01" {
		t.Errorf("Expected due date to survive the queue, got %v (ok=%v)", due, ok)
	}
}
