package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/pawcare/pawcare-api/internal/models"
)

type contextKey string

const (
	claimsContextKey    contextKey = "claims"
	requestIDContextKey contextKey = "request_id"
)

// ClaimsContextKey returns the context key used for verified claims. Exposed for tests that inject non-claims values.
func ClaimsContextKey() contextKey { return claimsContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithClaims returns a context carrying the caller's verified token claims.
func WithClaims(ctx context.Context, claims *models.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil when auth is disabled or the value has the wrong type.
func ClaimsFromContext(ctx context.Context) *models.JWTClaims {
	c, _ := ctx.Value(claimsContextKey).(*models.JWTClaims)
	return c
}

// Subject returns the verified subject of the caller, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Sub
	}
	return ""
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the request ID from the context, or "" if none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
