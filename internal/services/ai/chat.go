package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/database"
	logpkg "github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/request"
	"github.com/pawcare/pawcare-api/internal/services/summary"
	"github.com/pawcare/pawcare-api/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/pawcare/pawcare-api/internal/services/ai"

// ErrInvalidRequest marks failures caused by the caller's input
var ErrInvalidRequest = errors.New("invalid request")

// ChatOptions configures a ChatService
type ChatOptions struct {
	// History is optional; without it session IDs are accepted but nothing is stored
	History     database.ChatHistoryStore
	Builder     *summary.Builder
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	Logger      *zap.Logger
}

// ChatService answers one chat message against the caller's pet-care context
type ChatService struct {
	provider    CompletionProvider
	history     database.ChatHistoryStore
	builder     *summary.Builder
	timeout     time.Duration
	temperature float64
	maxTokens   int
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewChatService creates a new chat service
func NewChatService(provider CompletionProvider, opts ChatOptions) *ChatService {
	if opts.Builder == nil {
		opts.Builder = summary.NewBuilder()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &ChatService{
		provider:    provider,
		history:     opts.History,
		builder:     opts.Builder,
		timeout:     opts.Timeout,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      opts.Logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// Respond validates the request, builds the system instruction, and calls the
// provider exactly once. When the request names a session and a history store
// is configured, the exchange is stored; storage failures are logged only.
func (s *ChatService) Respond(ctx context.Context, subject string, req *models.ChatRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: missing body", ErrInvalidRequest)
	}
	if err := validation.Validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRequest, validation.Describe(err))
	}

	message := validation.SanitizeText(req.Message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	systemInstruction, err := s.builder.BuildSystemInstruction(req.Context)
	if err != nil {
		return "", fmt.Errorf("failed to build system instruction: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "chat.respond",
		trace.WithAttributes(
			attribute.String("ai.model", s.provider.Model()),
			attribute.Int("chat.reminders", len(req.Context.Reminders)),
			attribute.Int("chat.medical_records", len(req.Context.MedicalRecords)),
			attribute.Int("chat.logs", len(req.Context.Logs)),
			attribute.Int("chat.system_length", len(systemInstruction)),
		),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	response, err := s.provider.Complete(callCtx, CompletionRequest{
		SystemInstruction: systemInstruction,
		UserMessage:       message,
		Temperature:       s.temperature,
		MaxTokens:         s.maxTokens,
		Operation:         "chat",
	})
	latency := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(Classify(err)))
		s.logger.Warn("chat_completion_failed",
			zap.String("request_id", request.RequestID(ctx)),
			zap.String("code", string(Classify(err))),
			zap.String("error", logpkg.SanitizeError(err)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return "", err
	}

	s.logger.Info("chat_completed",
		zap.String("request_id", request.RequestID(ctx)),
		zap.String("model", s.provider.Model()),
		zap.Int("response_length", len(response)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	s.record(ctx, subject, req.SessionID, message, response)
	return response, nil
}

// History lists the stored exchanges of a session, oldest first
func (s *ChatService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatExchange, error) {
	if s.history == nil {
		return []models.ChatExchange{}, nil
	}
	exchanges, err := s.history.List(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return exchanges, nil
}

func (s *ChatService) record(ctx context.Context, subject, sessionID, message, response string) {
	if s.history == nil || sessionID == "" {
		return
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return
	}

	exchange := &models.ChatExchange{
		SessionID: id,
		Subject:   subject,
		Message:   message,
		Response:  response,
		Model:     s.provider.Model(),
	}
	// Detached from the request so a client disconnect does not drop the write.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.history.Append(storeCtx, exchange); err != nil {
		s.logger.Error("chat_history_append_failed",
			zap.String("request_id", request.RequestID(ctx)),
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
	}
}
