package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout
	DefaultRequestTimeout = 35 * time.Second
)

const timeoutBody = `{"error":"request timed out","code":"upstream_timeout"}`

// Timeout bounds the total time a handler may take. Handlers see the
// deadline on their request context. The timeout must exceed the chat
// deadline so chat failures are answered by the chat handler; config.Load
// enforces that for the server.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes its body on w directly; headers the handler
			// sets replace this one when it finishes in time.
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
