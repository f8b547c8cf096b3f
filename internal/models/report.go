package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus tracks an asynchronous health report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// HealthReport is an AI-written overview of a pet's recent care history.
type HealthReport struct {
	ID        uuid.UUID    `json:"id"`
	Subject   string       `json:"subject,omitempty"`
	PetName   string       `json:"pet_name,omitempty"`
	Status    ReportStatus `json:"status" validate:"report_status"`
	Content   string       `json:"content,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReportRequest is the body of POST /api/v1/reports.
type ReportRequest struct {
	Context ChatContext `json:"context"`
}
