package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/queue"
	"github.com/pawcare/pawcare-api/internal/services/ai"
)

type completionCall struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-e2e",
		"object":  "chat.completion",
		"created": 1717243200,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return body
}

// newAPI serves the full router against a mocked completion endpoint
func newAPI(t *testing.T, upstream http.HandlerFunc) (http.Handler, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	provider := ai.NewOpenAIProviderWithOptions(ai.OpenAIOptions{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	chat := ai.NewChatService(provider, ai.ChatOptions{History: database.NewMemoryChatHistory(0)})

	return New(Options{Chat: chat, RequestTimeout: 10 * time.Second}), &calls
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChat_SummarizesMostRecentReminders(t *testing.T) {
	t.Parallel()

	var got completionCall
	h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("Rex is due for a booster."))
	})

	// Unsorted on purpose; day 1 is the oldest
	days := []int{4, 1, 6, 2, 5, 3}
	reminders := make([]string, 0, len(days))
	for _, d := range days {
		reminders = append(reminders, fmt.Sprintf(`{"title":"reminder-day-%d","due_date":"2024-03-%02dT09:00:00Z"}`, d, d))
	}
	body := `{"message":"Summarize my pet's health","context":{"pet":{"name":"Rex"},"reminders":[` + strings.Join(reminders, ",") + `]}}`

	w := postJSON(h, "/api/chat", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"response": "Rex is due for a booster."}, resp)

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Summarize my pet's health", got.Messages[1].Content)

	system := got.Messages[0].Content
	for d := 2; d <= 6; d++ {
		assert.Contains(t, system, fmt.Sprintf("reminder-day-%d", d))
	}
	assert.NotContains(t, system, "reminder-day-1")
	assert.Contains(t, system, `"name": "Rex"`)
	assert.Equal(t, ai.DefaultTemperature, got.Temperature)
	assert.Equal(t, ai.DefaultMaxTokens, got.MaxTokens)
}

func TestChat_NetworkErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("Expected hijackable response writer")
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	})

	w := postJSON(h, "/api/chat", `{"message":"hi","context":{}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, "upstream_error", body.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestChat_UpstreamStatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			wantCode: "upstream_rate_limited",
		},
		{
			name:     "quota",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`,
			wantCode: "upstream_quota_exceeded",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"error":{"message":"boom","type":"server_error"}}`,
			wantCode: "upstream_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			w := postJSON(h, "/api/v1/chat", `{"message":"hi"}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestChat_InvalidRequests(t *testing.T) {
	t.Parallel()

	h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody("unused"))
	})

	for _, body := range []string{`{"message":`, `{"message":"   "}`, `{"context":{}}`, `{"message":"hi","session_id":"nope"}`} {
		w := postJSON(h, "/api/chat", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.Contains(t, w.Body.String(), "invalid_request", body)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestChat_NonJSONContentType(t *testing.T) {
	t.Parallel()

	h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody("unused"))
	})

	for _, contentType := range []string{"", "text/plain", "application/x-www-form-urlencoded"} {
		for _, path := range []string{"/api/chat", "/api/v1/chat"} {
			req := httptest.NewRequest("POST", path, strings.NewReader(`{"message":"hi"}`))
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusInternalServerError, w.Code, "%s %q", path, contentType)
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(ai.CodeInvalidRequest), body.Code)
			assert.NotEmpty(t, body.Error)
		}
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestChat_WrongMethod(t *testing.T) {
	t.Parallel()

	h, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/api/chat", "/api/v1/chat"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
		assert.JSONEq(t, `{}`, w.Body.String(), path)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestChat_HistoryRoundTrip(t *testing.T) {
	t.Parallel()

	h, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("answer"))
	})

	session := "0b4f7f2e-6a57-4f8e-9a8e-2f3f0f6d1c11"
	for i := 0; i < 2; i++ {
		w := postJSON(h, "/api/v1/chat", fmt.Sprintf(`{"message":"question %d","session_id":"%s"}`, i, session))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/chat/sessions/"+session+"/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionID string                `json:"session_id"`
		Messages  []models.ChatExchange `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "question 0", body.Messages[0].Message)
	assert.Equal(t, "answer", body.Messages[1].Response)
}

func TestRouter_NotFoundAndHeaders(t *testing.T) {
	t.Parallel()

	h, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ReportRoutesNeedStoreAndQueue(t *testing.T) {
	t.Parallel()

	h, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	w := postJSON(h, "/api/v1/reports", `{"context":{}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type nopPublisher struct{}

func (nopPublisher) Enqueue(context.Context, *queue.Job) error { return nil }
func (nopPublisher) HealthCheck(context.Context) error         { return nil }

func TestRouter_ReportRoutesRequireJSON(t *testing.T) {
	t.Parallel()

	h := New(Options{
		Chat: ai.NewChatService(
			ai.NewOpenAIProviderWithOptions(ai.OpenAIOptions{APIKey: "sk-test"}),
			ai.ChatOptions{History: database.NewMemoryChatHistory(0)},
		),
		Reports: database.NewMemoryReportStore(),
		Jobs:    nopPublisher{},
	})

	req := httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(`{"context":{}}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = postJSON(h, "/api/v1/reports", `{"context":{}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
