package middleware

import (
	"net/http"
	"strings"
)

// ContentType requires a JSON Content-Type on requests with bodies. The router
// applies it to report routes only.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")

			if contentType == "" {
				respondError(w, http.StatusBadRequest, "Content-Type header is required", "invalid_request", nil)
				return
			}

			// Allow parameters such as charset
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "invalid_request", nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
