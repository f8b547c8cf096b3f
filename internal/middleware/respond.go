package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pawcare/pawcare-api/internal/models"
	"go.uber.org/zap"
)

// respondError writes the API's standard error body
func respondError(w http.ResponseWriter, status int, message, code string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: message, Code: code}); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
		)
	}
}
