package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pawcare/pawcare-api/internal/database"
	logpkg "github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/queue"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"go.uber.org/zap"
)

// ReportWriter produces report text from a care context
type ReportWriter interface {
	Generate(ctx context.Context, c models.ChatContext) (string, error)
}

// ReportGenerator processes health report jobs
type ReportGenerator struct {
	writer  ReportWriter
	reports database.ReportStore
	logger  *zap.Logger
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(writer ReportWriter, reports database.ReportStore, logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportGenerator{
		writer:  writer,
		reports: reports,
		logger:  logger,
	}
}

// ProcessJob handles one delivery. Generation failures are recorded on the
// report and acked; they are never retried. Malformed or orphaned jobs are
// nacked to the dead letter queue.
func (g *ReportGenerator) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil || !job.Validate() {
		g.nack(msg, "invalid job")
		return errors.New("invalid job")
	}

	report, err := g.reports.GetByID(ctx, job.ReportID)
	if err != nil {
		g.nack(msg, "report lookup failed")
		return fmt.Errorf("failed to load report %s: %w", job.ReportID, err)
	}

	// Redelivered after a completed run
	if report.Status != models.ReportStatusPending {
		g.logger.Info("report_job_skipped",
			zap.String("job_id", job.ID.String()),
			zap.String("report_id", report.ID.String()),
			zap.String("status", string(report.Status)),
		)
		return g.ack(msg)
	}

	if job.IsExpired() {
		report.Status = models.ReportStatusFailed
		report.Error = "report request expired before it was processed"
		return g.finish(ctx, msg, report)
	}

	content, err := g.writer.Generate(ctx, job.Context)
	if err != nil {
		code := ai.Classify(err)
		g.logger.Warn("report_generation_failed",
			zap.String("job_id", job.ID.String()),
			zap.String("report_id", report.ID.String()),
			zap.String("code", string(code)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		report.Status = models.ReportStatusFailed
		report.Error = string(code)
		return g.finish(ctx, msg, report)
	}

	report.Status = models.ReportStatusCompleted
	report.Content = content
	report.Error = ""
	if err := g.finish(ctx, msg, report); err != nil {
		return err
	}

	g.logger.Info("report_completed",
		zap.String("job_id", job.ID.String()),
		zap.String("report_id", report.ID.String()),
		zap.Int("content_length", len(content)),
	)
	return nil
}

// finish stores the final report state and settles the message
func (g *ReportGenerator) finish(ctx context.Context, msg queue.MessageInterface, report *models.HealthReport) error {
	if err := g.reports.Update(ctx, report); err != nil {
		g.nack(msg, "report update failed")
		return fmt.Errorf("failed to update report %s: %w", report.ID, err)
	}
	return g.ack(msg)
}

func (g *ReportGenerator) ack(msg queue.MessageInterface) error {
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

func (g *ReportGenerator) nack(msg queue.MessageInterface, reason string) {
	if err := msg.Nack(false); err != nil {
		g.logger.Warn("queue_nack_failed", zap.String("reason", reason), zap.Error(err))
	}
}

// Run processes messages with the given number of goroutines until msgs is
// closed or ctx is cancelled. It returns once every goroutine has stopped.
func Run[M queue.MessageInterface](ctx context.Context, msgs <-chan M, concurrency int, handle func(context.Context, M) error, logger *zap.Logger) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						return
					}
					if err := handle(ctx, msg); err != nil {
						fields := []zap.Field{zap.Error(err)}
						if job := msg.GetJob(); job != nil {
							fields = append(fields,
								zap.String("job_id", job.ID.String()),
								zap.String("job_type", string(job.Type)),
							)
						}
						logger.Error("job_failed", fields...)
					}
				}
			}
		}()
	}
	wg.Wait()
}
