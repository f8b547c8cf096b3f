package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pawcare/pawcare-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report fields by their JSON names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("notblank", validateNotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validator: %v", err))
	}
	if err := Validate.RegisterValidation("report_status", validateReportStatus); err != nil {
		panic(fmt.Sprintf("failed to register report_status validator: %v", err))
	}
}

// validateNotBlank requires at least one non-whitespace character
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateReportStatus validates that a string is a valid ReportStatus enum value
func validateReportStatus(fl validator.FieldLevel) bool {
	return ValidateReportStatus(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateReportStatus validates a ReportStatus string value
func ValidateReportStatus(value string) error {
	switch models.ReportStatus(value) {
	case models.ReportStatusPending, models.ReportStatusCompleted, models.ReportStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid report status: %s (must be 'pending', 'completed', or 'failed')", value)
	}
}

// Describe turns validator errors into a short client-facing message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "notblank", "required":
		return field + " is required"
	case "uuid":
		return field + " must be a UUID"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
