package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeout_ExpiredRequestGetsJSON(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	w := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest("POST", "/api/chat", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected a JSON body, got %q: %v", w.Body.String(), err)
	}
	if body.Code != "upstream_timeout" {
		t.Errorf("Expected code upstream_timeout, got %q", body.Code)
	}
}

func TestTimeout_HandlerHeadersWin(t *testing.T) {
	t.Parallel()

	yaml := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		_, _ = w.Write([]byte("openapi: 3.0.3\n"))
	})

	w := httptest.NewRecorder()
	Timeout(time.Second)(yaml).ServeHTTP(w, httptest.NewRequest("GET", "/openapi.yaml", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-yaml" {
		t.Errorf("Expected the handler's content type, got %q", ct)
	}
}
