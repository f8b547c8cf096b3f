package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/queue"
	"github.com/pawcare/pawcare-api/internal/request"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"go.uber.org/zap"
)

// ReportHandler accepts health report requests and serves their results
type ReportHandler struct {
	reports database.ReportStore
	jobs    queue.Publisher
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports database.ReportStore, jobs queue.Publisher, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, jobs: jobs, logger: logger}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reports", h.CreateReport).Methods(http.MethodPost)
	r.HandleFunc("/reports/{id}", h.GetReport).Methods(http.MethodGet)
}

// ReportAccepted is the body returned when a report is queued
type ReportAccepted struct {
	ID     uuid.UUID           `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// CreateReport stores a pending report and queues its generation
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusInternalServerError, "invalid request body: "+err.Error(), ai.CodeInvalidRequest)
		return
	}

	report := &models.HealthReport{Subject: request.Subject(ctx)}
	if req.Context.Pet != nil {
		report.PetName = string(req.Context.Pet.Name)
	}
	if err := h.reports.Create(ctx, report); err != nil {
		h.logger.Error("report_create_failed",
			zap.String("request_id", request.RequestID(ctx)),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to create report", ai.CodeInternalError)
		return
	}

	job := queue.NewHealthReportJob(report.ID, report.Subject, req.Context)
	if err := h.jobs.Enqueue(ctx, job); err != nil {
		h.logger.Error("report_enqueue_failed",
			zap.String("request_id", request.RequestID(ctx)),
			zap.String("report_id", report.ID.String()),
			zap.Error(err),
		)
		report.Status = models.ReportStatusFailed
		report.Error = "failed to queue report"
		if updateErr := h.reports.Update(ctx, report); updateErr != nil {
			h.logger.Warn("report_mark_failed_failed",
				zap.String("report_id", report.ID.String()),
				zap.Error(updateErr),
			)
		}
		respondError(w, http.StatusInternalServerError, "failed to queue report", ai.CodeInternalError)
		return
	}

	h.logger.Info("report_enqueued",
		zap.String("request_id", request.RequestID(ctx)),
		zap.String("report_id", report.ID.String()),
		zap.String("job_id", job.ID.String()),
	)
	respondJSON(w, http.StatusAccepted, ReportAccepted{ID: report.ID, Status: report.Status})
}

// GetReport returns a report by ID. Reports owned by another subject are
// reported as missing.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
		return
	}

	report, err := h.reports.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
		return
	}
	if err != nil {
		h.logger.Error("report_get_failed",
			zap.String("report_id", id.String()),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to load report", ai.CodeInternalError)
		return
	}

	if subject := request.Subject(r.Context()); subject != "" && report.Subject != subject {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
		return
	}

	respondJSON(w, http.StatusOK, report)
}
