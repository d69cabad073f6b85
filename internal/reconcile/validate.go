package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/a3tai/docsigner/internal/analysis"
)

// ValidationResult reports form-level validation findings. Errors block
// submission, warnings and suggestions do not.
type ValidationResult struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[\d\s().-]{7,20}$`)
)

// ValidateForm checks filled fields against their declared types and
// validation bounds. A missing required value is an error; soft findings
// (over-length values, missing optional values) are warnings.
func ValidateForm(fields []analysis.FormField) *ValidationResult {
	result := &ValidationResult{
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	for i := range fields {
		field := &fields[i]
		label := field.Label
		if label == "" {
			label = field.ID
		}
		value := strings.TrimSpace(field.Value)

		if value == "" {
			if field.Required {
				result.Errors = append(result.Errors,
					fmt.Sprintf("required field %q is empty", label))
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("field %q is empty", label))
			}
			continue
		}

		switch field.Type {
		case analysis.FieldTypeEmail:
			if !emailPattern.MatchString(value) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("field %q has an invalid email address: %s", label, value))
			}
		case analysis.FieldTypePhone:
			if !phonePattern.MatchString(value) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("field %q has an invalid phone number: %s", label, value))
			}
		}

		if v := field.Validation; v != nil {
			if v.MinLength > 0 && len(value) < v.MinLength {
				result.Errors = append(result.Errors,
					fmt.Sprintf("field %q is shorter than %d characters", label, v.MinLength))
			}
			if v.MaxLength > 0 && len(value) > v.MaxLength {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("field %q exceeds %d characters and may be truncated", label, v.MaxLength))
			}
			if v.Pattern != "" {
				if re, err := regexp.Compile(v.Pattern); err == nil && !re.MatchString(value) {
					result.Errors = append(result.Errors,
						fmt.Sprintf("field %q does not match the expected format", label))
				}
			}
		}

		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("field %q still holds the placeholder %s", label, value))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
