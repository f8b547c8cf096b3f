package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/request"
	"github.com/pawcare/pawcare-api/internal/services/ai"
)

type fakeResponder struct {
	response string
	err      error
	got      *models.ChatRequest
	subject  string
	history  []models.ChatExchange
}

func (f *fakeResponder) Respond(_ context.Context, subject string, req *models.ChatRequest) (string, error) {
	f.got = req
	f.subject = subject
	return f.response, f.err
}

func (f *fakeResponder) History(_ context.Context, _ uuid.UUID, _ int) ([]models.ChatExchange, error) {
	return f.history, f.err
}

func chatRouter(h *ChatHandler) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()
	h.RegisterRoutes(r.PathPrefix("/api").Subrouter())
	return r
}

func postChat(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, models.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var errBody models.ErrorResponse
	if w.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	}
	return w, errBody
}

func TestChatHandler_Success(t *testing.T) {
	t.Parallel()

	fake := &fakeResponder{response: "Rex looks healthy."}
	r := chatRouter(NewChatHandler(fake, nil))

	w, _ := postChat(t, r, `{"message":"How is Rex?","context":{"pet":{"name":"Rex"}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"response": "Rex looks healthy."}, body)
	assert.Equal(t, "How is Rex?", fake.got.Message)
	assert.Equal(t, models.FlexString("Rex"), fake.got.Context.Pet.Name)
}

func TestChatHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode string
	}{
		{
			name:     "malformed json",
			body:     `{"message":`,
			wantCode: "invalid_request",
		},
		{
			name:     "validation failure",
			body:     `{"message":"  "}`,
			err:      fmt.Errorf("%w: message is required", ai.ErrInvalidRequest),
			wantCode: "invalid_request",
		},
		{
			name:     "rate limited",
			body:     `{"message":"hi"}`,
			err:      &ai.APIError{StatusCode: 429, Message: "slow down"},
			wantCode: "upstream_rate_limited",
		},
		{
			name:     "quota",
			body:     `{"message":"hi"}`,
			err:      &ai.APIError{StatusCode: 429, Code: "insufficient_quota", IsPermanent: true},
			wantCode: "upstream_quota_exceeded",
		},
		{
			name:     "timeout",
			body:     `{"message":"hi"}`,
			err:      fmt.Errorf("completion: %w", context.DeadlineExceeded),
			wantCode: "upstream_timeout",
		},
		{
			name:     "other upstream failure",
			body:     `{"message":"hi"}`,
			err:      errors.New("connection reset by peer"),
			wantCode: "upstream_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := chatRouter(NewChatHandler(&fakeResponder{err: tt.err}, nil))
			w, body := postChat(t, r, tt.body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestChatHandler_WrongMethod(t *testing.T) {
	t.Parallel()

	r := chatRouter(NewChatHandler(&fakeResponder{}, nil))

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/api/chat", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.JSONEq(t, `{}`, w.Body.String(), method)
	}
}

func TestChatHandler_PassesSubject(t *testing.T) {
	t.Parallel()

	fake := &fakeResponder{response: "ok"}
	h := NewChatHandler(fake, nil)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req = req.WithContext(request.WithClaims(req.Context(), &models.JWTClaims{Sub: "user-7"}))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-7", fake.subject)
}

func TestChatHandler_History(t *testing.T) {
	t.Parallel()

	session := uuid.New()
	fake := &fakeResponder{history: []models.ChatExchange{
		{SessionID: session, Subject: "user-1", Message: "a", Response: "b"},
		{SessionID: session, Subject: "user-2", Message: "c", Response: "d"},
	}}
	r := chatRouter(NewChatHandler(fake, nil))

	t.Run("anonymous sees all", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/chat/sessions/"+session.String()+"/history?limit=5", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body HistoryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, session.String(), body.SessionID)
		assert.Len(t, body.Messages, 2)
	})

	t.Run("subject sees own exchanges", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/chat/sessions/"+session.String()+"/history", nil)
		req = req.WithContext(request.WithClaims(req.Context(), &models.JWTClaims{Sub: "user-2"}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body HistoryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "c", body.Messages[0].Message)
	})

	t.Run("bad session id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/chat/sessions/not-a-uuid/history", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_request")
	})

	t.Run("bad limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/chat/sessions/"+session.String()+"/history?limit=-1", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
