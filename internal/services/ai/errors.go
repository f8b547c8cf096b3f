package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited indicates the API rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the API quota was exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// ErrorCode is the stable, client-facing classification of a failure
type ErrorCode string

const (
	CodeInvalidRequest        ErrorCode = "invalid_request"
	CodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"
	CodeUpstreamQuotaExceeded ErrorCode = "upstream_quota_exceeded"
	CodeUpstreamTimeout       ErrorCode = "upstream_timeout"
	CodeUpstreamError         ErrorCode = "upstream_error"
	CodeInternalError         ErrorCode = "internal_error"
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	IsPermanent bool // true for quota errors, false for rate limits
	Err         error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	// Check error message for rate limit indicators
	errStr := strings.ToLower(err.Error())
	return mentionsTooManyRequests(err.Error()) ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}

	// Check error message for quota indicators
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing")
}

// IsTimeoutError reports whether the call ran out of time
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Classify maps a completion failure to its client-facing code
func Classify(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case IsQuotaError(err):
		return CodeUpstreamQuotaExceeded
	case IsRateLimitError(err):
		return CodeUpstreamRateLimited
	case IsTimeoutError(err):
		return CodeUpstreamTimeout
	default:
		return CodeUpstreamError
	}
}

// ExtractAPIError extracts API error details from an error
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var existing *APIError
	if errors.As(err, &existing) {
		return existing
	}

	// Typed errors from the OpenAI SDK carry the status and error body
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		apiErr := &APIError{
			StatusCode: oaiErr.StatusCode,
			Message:    oaiErr.Message,
			Type:       oaiErr.Type,
			Code:       oaiErr.Code,
			Err:        err,
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(oaiErr.StatusCode)
		}
		apiErr.IsPermanent = apiErr.Code == "insufficient_quota"
		return apiErr
	}

	// Other SDKs only expose the status in the message text
	errStr := err.Error()
	if mentionsTooManyRequests(errStr) {
		apiErr := &APIError{
			StatusCode: http.StatusTooManyRequests,
			Message:    errStr,
			Type:       "rate_limit_error",
			Err:        err,
		}

		// Try to parse JSON error details if present
		if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
			jsonStr := errStr[jsonStart:]
			if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
				jsonStr = jsonStr[:jsonEnd+1]
				var errorData struct {
					Message string `json:"message"`
					Type    string `json:"type"`
					Code    string `json:"code"`
				}
				if json.Unmarshal([]byte(jsonStr), &errorData) == nil {
					apiErr.Message = errorData.Message
					apiErr.Type = errorData.Type
					apiErr.Code = errorData.Code

					if errorData.Code == "insufficient_quota" {
						apiErr.IsPermanent = true
					}
				}
			}
		}
		if strings.Contains(errStr, "RESOURCE_EXHAUSTED") && strings.Contains(strings.ToLower(errStr), "quota") {
			apiErr.IsPermanent = true
		}

		return apiErr
	}

	return nil
}

// mentionsTooManyRequests looks for an HTTP 429 in the forms SDKs print it.
// A bare "429" substring is not enough: it also appears in ports and IDs.
func mentionsTooManyRequests(s string) bool {
	for _, marker := range []string{"429 Too Many Requests", "Error 429", "status 429", "status code 429", "RESOURCE_EXHAUSTED"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
