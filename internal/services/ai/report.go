package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/services/summary"
	"go.uber.org/zap"
)

// ReportInstruction is the user turn sent when generating a health report
const ReportInstruction = `Write a health overview of this pet for its owner. Cover, in this order:
1. Upcoming and overdue reminders, and whether the medical records show they were done.
2. Notable findings from recent medical records.
3. Patterns in the recent activity logs.
4. Suggested next steps.
Keep it under 400 words. Say explicitly when information is missing.`

// ReportService writes health reports from a pet's care context
type ReportService struct {
	provider CompletionProvider
	builder  *summary.Builder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(provider CompletionProvider, builder *summary.Builder, timeout time.Duration, logger *zap.Logger) *ReportService {
	if builder == nil {
		builder = summary.NewBuilder()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		provider: provider,
		builder:  builder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate produces the report text with a single completion call
func (s *ReportService) Generate(ctx context.Context, c models.ChatContext) (string, error) {
	systemInstruction, err := s.builder.BuildSystemInstruction(c)
	if err != nil {
		return "", fmt.Errorf("failed to build system instruction: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.provider.Complete(callCtx, CompletionRequest{
		SystemInstruction: systemInstruction,
		UserMessage:       ReportInstruction,
		Operation:         "health_report",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate health report: %w", err)
	}
	return content, nil
}
