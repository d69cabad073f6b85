package reconcile

import (
	"strings"
	"testing"

	"github.com/a3tai/docsigner/internal/analysis"
)

func TestValidateFormRequiredFields(t *testing.T) {
	fields := []analysis.FormField{
		{ID: "f1", Type: analysis.FieldTypeText, Label: "Name", Required: true, Value: ""},
		{ID: "f2", Type: analysis.FieldTypeText, Label: "Nickname", Required: false, Value: ""},
		{ID: "f3", Type: analysis.FieldTypeText, Label: "City", Required: true, Value: "Haifa"},
	}

	result := ValidateForm(fields)

	if result.IsValid {
		t.Error("expected invalid form with missing required field")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Name") {
		t.Errorf("error does not name the field: %q", result.Errors[0])
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning for empty optional field, got %d", len(result.Warnings))
	}
}

func TestValidateFormFormats(t *testing.T) {
	tests := []struct {
		name      string
		field     analysis.FormField
		expectErr bool
	}{
		{
			name:      "valid email",
			field:     analysis.FormField{ID: "e", Type: analysis.FieldTypeEmail, Label: "Email", Value: "dana@example.com"},
			expectErr: false,
		},
		{
			name:      "invalid email",
			field:     analysis.FormField{ID: "e", Type: analysis.FieldTypeEmail, Label: "Email", Value: "not-an-email"},
			expectErr: true,
		},
		{
			name:      "valid phone",
			field:     analysis.FormField{ID: "p", Type: analysis.FieldTypePhone, Label: "Phone", Value: "+972-50-1234567"},
			expectErr: false,
		},
		{
			name:      "invalid phone",
			field:     analysis.FormField{ID: "p", Type: analysis.FieldTypePhone, Label: "Phone", Value: "call me maybe"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateForm([]analysis.FormField{tt.field})
			if tt.expectErr && result.IsValid {
				t.Error("expected validation error")
			}
			if !tt.expectErr && !result.IsValid {
				t.Errorf("unexpected errors: %v", result.Errors)
			}
		})
	}
}

func TestValidateFormLengthBounds(t *testing.T) {
	fields := []analysis.FormField{
		{
			ID: "short", Type: analysis.FieldTypeText, Label: "Code", Value: "ab",
			Validation: &analysis.FieldValidation{MinLength: 5},
		},
		{
			ID: "long", Type: analysis.FieldTypeText, Label: "Comment", Value: strings.Repeat("x", 30),
			Validation: &analysis.FieldValidation{MaxLength: 10},
		},
	}

	result := ValidateForm(fields)

	if result.IsValid {
		t.Error("expected invalid form: below minimum length is an error")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
	// Above maximum is a soft bound.
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestValidateFormPattern(t *testing.T) {
	fields := []analysis.FormField{
		{
			ID: "zip", Type: analysis.FieldTypeText, Label: "ZIP", Value: "abcde",
			Validation: &analysis.FieldValidation{Pattern: `^\d{5}$`},
		},
	}

	result := ValidateForm(fields)
	if result.IsValid {
		t.Error("expected pattern mismatch error")
	}
}

func TestValidateFormPlaceholderSuggestion(t *testing.T) {
	fields := []analysis.FormField{
		{ID: "f", Type: analysis.FieldTypeText, Label: "Project", Value: "[Project]"},
	}

	result := ValidateForm(fields)

	if !result.IsValid {
		t.Errorf("placeholder is not an error: %v", result.Errors)
	}
	if len(result.Suggestions) != 1 {
		t.Errorf("expected placeholder suggestion, got %v", result.Suggestions)
	}
}

func TestValidateFormEmptyInput(t *testing.T) {
	result := ValidateForm(nil)

	if !result.IsValid {
		t.Error("empty form is valid")
	}
	if result.Errors == nil || result.Warnings == nil || result.Suggestions == nil {
		t.Error("result slices must be non-nil")
	}
}
