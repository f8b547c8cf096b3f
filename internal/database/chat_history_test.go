package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcare/pawcare-api/internal/models"
)

func TestMemoryChatHistory_EvictsOldest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryChatHistory(3)
	session := uuid.New()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, &models.ChatExchange{
			SessionID: session,
			Message:   fmt.Sprintf("q%d", i),
			Response:  fmt.Sprintf("a%d", i),
		}))
	}

	got, err := store.List(ctx, session, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "q3", got[0].Message)
	assert.Equal(t, "q5", got[2].Message)
	for _, e := range got {
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestMemoryChatHistory_IsolatesSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryChatHistory(0)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, store.Append(ctx, &models.ChatExchange{SessionID: a, Message: "for a"}))
	require.NoError(t, store.Append(ctx, &models.ChatExchange{SessionID: b, Message: "for b"}))

	gotA, err := store.List(ctx, a, 0)
	require.NoError(t, err)
	require.Len(t, gotA, 1)
	assert.Equal(t, "for a", gotA[0].Message)

	empty, err := store.List(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryChatHistory_LimitKeepsNewest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryChatHistory(50)
	session := uuid.New()
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, &models.ChatExchange{SessionID: session, Message: fmt.Sprintf("q%d", i)}))
	}

	got, err := store.List(ctx, session, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q8", got[0].Message)
	assert.Equal(t, "q9", got[1].Message)
}

func TestMemoryChatHistory_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryChatHistory(1000)
	session := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, &models.ChatExchange{SessionID: session, Message: fmt.Sprintf("q%d", i)})
		}(i)
	}
	wg.Wait()

	got, err := store.List(ctx, session, MaxHistoryLimit)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestClampHistoryLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultHistoryLimit, clampHistoryLimit(0))
	assert.Equal(t, DefaultHistoryLimit, clampHistoryLimit(-3))
	assert.Equal(t, 7, clampHistoryLimit(7))
	assert.Equal(t, MaxHistoryLimit, clampHistoryLimit(MaxHistoryLimit+1))
}

// TestChatHistoryRepository_Postgres runs against a real database when
// TEST_DATABASE_URL is set.
func TestChatHistoryRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	repo := NewChatHistoryRepository(db)
	session := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, &models.ChatExchange{
			SessionID: session,
			Message:   fmt.Sprintf("q%d", i),
			Response:  "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := repo.List(ctx, session, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Message)
	assert.Equal(t, "q2", got[1].Message)
}
