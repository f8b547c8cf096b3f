package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/models"
)

const (
	// DefaultHistoryLimit is used when a caller asks for a non-positive limit
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps a single history read
	MaxHistoryLimit = 100
	// DefaultMemoryHistoryCap is the number of exchanges kept per session in memory
	DefaultMemoryHistoryCap = 100
)

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

func prepareExchange(exchange *models.ChatExchange) {
	if exchange.ID == uuid.Nil {
		exchange.ID = uuid.New()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}
}

// ChatHistoryRepository stores chat exchanges in Postgres
type ChatHistoryRepository struct {
	db *DB
}

// NewChatHistoryRepository creates a new chat history repository
func NewChatHistoryRepository(db *DB) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

// Append inserts one exchange
func (r *ChatHistoryRepository) Append(ctx context.Context, exchange *models.ChatExchange) error {
	prepareExchange(exchange)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_history (id, session_id, subject, message, response, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, exchange.ID, exchange.SessionID, exchange.Subject, exchange.Message, exchange.Response, exchange.Model, exchange.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append chat exchange: %w", err)
	}
	return nil
}

// List returns the newest exchanges of a session, oldest first
func (r *ChatHistoryRepository) List(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatExchange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, subject, message, response, model, created_at
		FROM (
			SELECT id, session_id, subject, message, response, model, created_at
			FROM chat_history
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, sessionID, clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	exchanges := make([]models.ChatExchange, 0)
	for rows.Next() {
		var e models.ChatExchange
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Subject, &e.Message, &e.Response, &e.Model, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}
	return exchanges, nil
}

// MemoryChatHistory keeps chat exchanges in process memory. Each session holds
// at most maxPerSession exchanges; the oldest is evicted first.
type MemoryChatHistory struct {
	mu            sync.RWMutex
	sessions      map[uuid.UUID][]models.ChatExchange
	maxPerSession int
}

// NewMemoryChatHistory creates an in-memory history store
func NewMemoryChatHistory(maxPerSession int) *MemoryChatHistory {
	if maxPerSession <= 0 {
		maxPerSession = DefaultMemoryHistoryCap
	}
	return &MemoryChatHistory{
		sessions:      make(map[uuid.UUID][]models.ChatExchange),
		maxPerSession: maxPerSession,
	}
}

// Append stores one exchange, evicting the session's oldest past the cap
func (m *MemoryChatHistory) Append(_ context.Context, exchange *models.ChatExchange) error {
	prepareExchange(exchange)

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.sessions[exchange.SessionID], *exchange)
	if over := len(list) - m.maxPerSession; over > 0 {
		list = append([]models.ChatExchange(nil), list[over:]...)
	}
	m.sessions[exchange.SessionID] = list
	return nil
}

// List returns the newest exchanges of a session, oldest first
func (m *MemoryChatHistory) List(_ context.Context, sessionID uuid.UUID, limit int) ([]models.ChatExchange, error) {
	limit = clampHistoryLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.sessions[sessionID]
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]models.ChatExchange, len(list))
	copy(out, list)
	return out, nil
}
