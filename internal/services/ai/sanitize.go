package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pawcare/pawcare-api/internal/request"
	"go.uber.org/zap"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// MaxDebugContentLength caps full prompts logged in debug mode
	MaxDebugContentLength = 10000
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	// Show first 4 and last 4 characters, redact the middle
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a safe preview of a prompt for logging
// Even in fullLog mode, we sanitize to prevent log injection and limit size
func SanitizePrompt(prompt string, fullLog bool) string {
	if prompt == "" {
		return ""
	}
	return sanitizeStringForLogging(prompt, previewLength(fullLog))
}

// SanitizeResponse creates a safe preview of a response for logging
func SanitizeResponse(response string, fullLog bool) string {
	if response == "" {
		return ""
	}
	return sanitizeStringForLogging(response, previewLength(fullLog))
}

func previewLength(fullLog bool) int {
	if fullLog {
		return MaxDebugContentLength
	}
	return MaxPreviewLength
}

// sanitizeStringForLogging removes control characters, validates UTF-8, and truncates
func sanitizeStringForLogging(s string, maxLen int) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	// Allow printable characters, space, tab, newline, carriage return
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLen {
		// Back up to a rune boundary
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}

	return s
}

// HashSubject creates a short hash of a token subject for logging
func HashSubject(subject string) string {
	if subject == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(hash[:])[:16]
}

// requestFields returns the correlation fields attached to every provider log line
func requestFields(ctx context.Context) []zap.Field {
	return []zap.Field{
		zap.String("request_id", request.RequestID(ctx)),
		zap.String("subject_hash", HashSubject(request.Subject(ctx))),
	}
}
