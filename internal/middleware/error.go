package middleware

import (
	"net/http"

	logpkg "github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/request"
	"go.uber.org/zap"
)

// ErrorHandler creates panic recovery middleware
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
						zap.String("request_id", request.RequestID(r.Context())),
					)
					respondError(w, http.StatusInternalServerError, "an unexpected error occurred", "internal_error", logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
