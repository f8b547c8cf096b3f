package middleware

import (
	"context"
	"net/http"
	"strings"

	logpkg "github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// Auth creates authentication middleware that validates bearer tokens and
// stores the verified claims on the request context
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests carry no credentials
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing Authorization header", "unauthorized", logger)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respondError(w, http.StatusUnauthorized, "invalid Authorization header format", "unauthorized", logger)
				return
			}

			claims, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				logger.Info("token_verification_failed",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondError(w, http.StatusUnauthorized, "invalid or expired token", "unauthorized", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithClaims(r.Context(), claims)))
		})
	}
}
