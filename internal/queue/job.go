package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeHealthReport is a job for writing one health report
	JobTypeHealthReport JobType = "health_report"
)

// DefaultJobTTL is how long a queued report stays worth generating
const DefaultJobTTL = time.Hour

// Job represents a job in the queue
type Job struct {
	ID       uuid.UUID          `json:"id"`
	Type     JobType            `json:"type"`
	ReportID uuid.UUID          `json:"report_id"`
	Subject  string             `json:"subject,omitempty"`
	Context  models.ChatContext `json:"context"`
	// NotAfter is the latest time the job is still processed (nil = no expiration)
	NotAfter  *time.Time `json:"not_after,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewHealthReportJob creates a job that generates the given report
func NewHealthReportJob(reportID uuid.UUID, subject string, c models.ChatContext) *Job {
	now := time.Now().UTC()
	notAfter := now.Add(DefaultJobTTL)
	return &Job{
		ID:        uuid.New(),
		Type:      JobTypeHealthReport,
		ReportID:  reportID,
		Subject:   subject,
		Context:   c,
		NotAfter:  &notAfter,
		CreatedAt: now,
	}
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// Validate reports whether the job carries what its type needs
func (j *Job) Validate() bool {
	switch j.Type {
	case JobTypeHealthReport:
		return j.ReportID != uuid.Nil
	default:
		return false
	}
}
