package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// DefaultFrontendOrigin is always allowed
const DefaultFrontendOrigin = "http://localhost:3000"

// ParseOrigins splits a comma-separated FRONTEND_URL into unique origins,
// always including DefaultFrontendOrigin
func ParseOrigins(frontendURL string) []string {
	origins := []string{DefaultFrontendOrigin}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed != "" && !slices.Contains(origins, trimmed) {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CORS creates CORS middleware for the configured frontend origins
func CORS(frontendURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   ParseOrigins(frontendURL),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
