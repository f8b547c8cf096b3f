package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// ChatHistoryStore persists chat exchanges grouped by session
type ChatHistoryStore interface {
	Append(ctx context.Context, exchange *models.ChatExchange) error
	// List returns up to limit of the newest exchanges, oldest first
	List(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatExchange, error)
}

// ReportStore persists asynchronous health reports
type ReportStore interface {
	Create(ctx context.Context, report *models.HealthReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HealthReport, error)
	Update(ctx context.Context, report *models.HealthReport) error
}

// RatelimitConfigStore reads and writes the API rate limit
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ ChatHistoryStore     = (*ChatHistoryRepository)(nil)
	_ ChatHistoryStore     = (*MemoryChatHistory)(nil)
	_ ReportStore          = (*ReportRepository)(nil)
	_ ReportStore          = (*MemoryReportStore)(nil)
	_ RatelimitConfigStore = (*RatelimitConfigRepository)(nil)
)
