package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatContext is the denormalized pet-care history the client sends with a message.
type ChatContext struct {
	User           *UserProfile    `json:"user,omitempty"`
	Pet            *PetProfile     `json:"pet,omitempty"`
	Reminders      []Reminder      `json:"reminders,omitempty"`
	MedicalRecords []MedicalRecord `json:"medical_records,omitempty"`
	Logs           []LogEntry      `json:"logs,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string      `json:"message" validate:"notblank"`
	Context ChatContext `json:"context"`
	// Attachment is accepted for client compatibility and ignored.
	Attachment json.RawMessage `json:"attachment,omitempty"`
	SessionID  string          `json:"session_id,omitempty" validate:"omitempty,uuid"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the failure body of every API endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ChatExchange is one stored question/answer pair of a chat session.
type ChatExchange struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
