package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/request"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"go.uber.org/zap"
)

// ChatResponder answers chat messages and lists stored sessions
type ChatResponder interface {
	Respond(ctx context.Context, subject string, req *models.ChatRequest) (string, error)
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatExchange, error)
}

// ChatHandler handles AI chat requests
type ChatHandler struct {
	chat   ChatResponder
	logger *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatResponder, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat endpoint on r, answering every other
// method with 405
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}/history", h.GetHistory).Methods(http.MethodGet)
}

// HistoryResponse is the body of the session history endpoint
type HistoryResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []models.ChatExchange `json:"messages"`
}

// SendMessage answers one chat message. Every failure is a 500 whose code
// tells the caller what went wrong; nothing is retried.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		respondError(w, http.StatusInternalServerError, "Content-Type must be application/json", ai.CodeInvalidRequest)
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusInternalServerError, "invalid request body: "+err.Error(), ai.CodeInvalidRequest)
		return
	}

	response, err := h.chat.Respond(r.Context(), request.Subject(r.Context()), &req)
	if err != nil {
		code := ai.Classify(err)
		if errors.Is(err, ai.ErrInvalidRequest) {
			code = ai.CodeInvalidRequest
		}
		respondError(w, http.StatusInternalServerError, err.Error(), code)
		return
	}

	respondJSON(w, http.StatusOK, models.ChatResponse{Response: response})
}

// GetHistory lists the stored exchanges of a session, oldest first
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session id must be a UUID", ai.CodeInvalidRequest)
		return
	}

	limit := database.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusInternalServerError, "limit must be a positive integer", ai.CodeInvalidRequest)
			return
		}
	}

	messages, err := h.chat.History(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("chat_history_list_failed",
			zap.String("request_id", request.RequestID(r.Context())),
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to load chat history", ai.CodeInternalError)
		return
	}

	subject := request.Subject(r.Context())
	visible := make([]models.ChatExchange, 0, len(messages))
	for _, m := range messages {
		// Sessions stored under another caller are not disclosed
		if subject != "" && m.Subject != subject {
			continue
		}
		visible = append(visible, m)
	}

	respondJSON(w, http.StatusOK, HistoryResponse{
		SessionID: sessionID.String(),
		Messages:  visible,
	})
}
