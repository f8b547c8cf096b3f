package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging writes one http_request line per request. Server errors are logged
// at warn level so they surface without enabling debug.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			lvl := zapcore.InfoLevel
			if wrapped.statusCode >= http.StatusInternalServerError {
				lvl = zapcore.WarnLevel
			}
			logger.Log(lvl, "http_request",
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int("response_bytes", wrapped.bytes),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("client_ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxUserIDLength)),
				zap.String("request_id", logpkg.SanitizeString(w.Header().Get(RequestIDHeader), logpkg.MaxUserIDLength)),
			)
		})
	}
}

// responseWriter records the status and body size for logging and audit
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
