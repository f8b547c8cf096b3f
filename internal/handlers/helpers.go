package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/services/ai"
)

const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// isJSONRequest reports whether r declares a JSON body. Parameters such as
// charset are allowed.
func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type"))), "application/json")
}

// sanitizeErrorMessage trims a message for clients: control characters are
// dropped and the result is capped at maxErrorMessageLength runes
func sanitizeErrorMessage(message string) string {
	message = strings.ToValidUTF8(message, "")
	message = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, message)
	message = strings.TrimSpace(message)

	if utf8.RuneCountInString(message) > maxErrorMessageLength {
		runes := []rune(message)
		message = string(runes[:maxErrorMessageLength]) + "..."
	}
	return message
}

// respondError sends the standard error body with a sanitized message
func respondError(w http.ResponseWriter, status int, message string, code ai.ErrorCode) {
	respondJSON(w, status, models.ErrorResponse{
		Error: sanitizeErrorMessage(message),
		Code:  string(code),
	})
}

// methodNotAllowed answers any unsupported method with an empty object
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, struct{}{})
}

// MethodNotAllowedHandler is installed on the router for method mismatches
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(methodNotAllowed)
}

// NotFoundHandler is installed on the router for unknown paths
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})
}
