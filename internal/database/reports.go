package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/validation"
)

// ReportRepository stores health reports in Postgres
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.HealthReport) error {
	if err := prepareReport(report); err != nil {
		return err
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO health_reports (id, subject, pet_name, status, content, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING created_at, updated_at
	`, report.ID, report.Subject, report.PetName, report.Status, report.Content, report.Error, time.Now().UTC(),
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create health report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HealthReport, error) {
	report := &models.HealthReport{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, subject, pet_name, status, content, error, created_at, updated_at
		FROM health_reports
		WHERE id = $1
	`, id).Scan(
		&report.ID,
		&report.Subject,
		&report.PetName,
		&report.Status,
		&report.Content,
		&report.Error,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("health report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health report: %w", err)
	}
	return report, nil
}

// Update stores the status, content and error of an existing report
func (r *ReportRepository) Update(ctx context.Context, report *models.HealthReport) error {
	if err := validation.Validate.Struct(report); err != nil {
		return fmt.Errorf("invalid health report: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE health_reports
		SET status = $2, content = $3, error = $4, updated_at = $5
		WHERE id = $1
	`, report.ID, report.Status, report.Content, report.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update health report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("health report %s: %w", report.ID, ErrNotFound)
	}
	return nil
}

func prepareReport(report *models.HealthReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	if err := validation.Validate.Struct(report); err != nil {
		return fmt.Errorf("invalid health report: %w", err)
	}
	return nil
}

// MemoryReportStore keeps health reports in process memory
type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]models.HealthReport
}

// NewMemoryReportStore creates an in-memory report store
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[uuid.UUID]models.HealthReport)}
}

// Create stores a new report
func (m *MemoryReportStore) Create(_ context.Context, report *models.HealthReport) error {
	if err := prepareReport(report); err != nil {
		return err
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = *report
	return nil
}

// GetByID returns a copy of the stored report
func (m *MemoryReportStore) GetByID(_ context.Context, id uuid.UUID) (*models.HealthReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("health report %s: %w", id, ErrNotFound)
	}
	return &report, nil
}

// Update replaces the status, content and error of an existing report
func (m *MemoryReportStore) Update(_ context.Context, report *models.HealthReport) error {
	if err := validation.Validate.Struct(report); err != nil {
		return fmt.Errorf("invalid health report: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reports[report.ID]
	if !ok {
		return fmt.Errorf("health report %s: %w", report.ID, ErrNotFound)
	}
	stored.Status = report.Status
	stored.Content = report.Content
	stored.Error = report.Error
	stored.UpdatedAt = time.Now().UTC()
	m.reports[report.ID] = stored
	report.UpdatedAt = stored.UpdatedAt
	return nil
}
