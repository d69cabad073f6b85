// Package reconcile merges user-supplied data into analyzed form fields
// and questions. Every fill and answer follows the same priority cascade:
// explicit user data first, then profile-derived defaults per field type,
// then analysis suggestions, then a generic placeholder. The cascade is
// total, so a reconciled form never has an empty required slot.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/a3tai/docsigner/internal/analysis"
)

// UserProfile carries the identity values the type-default cascade draws
// from. Custom holds any extra keyed values callers want matched against
// field labels.
type UserProfile struct {
	FullName string            `json:"fullName"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Custom   map[string]string `json:"custom,omitempty"`
}

// Reconciler fills form fields and answers questions against a user
// profile
type Reconciler struct {
	profile UserProfile
}

// NewReconciler creates a reconciler bound to the given profile
func NewReconciler(profile UserProfile) *Reconciler {
	return &Reconciler{profile: profile}
}

// Fill returns a copy of fields with every value populated. userData maps
// normalized field keys to explicit values; an explicit value always wins
// over a derived one. The input slice is never mutated.
func (r *Reconciler) Fill(fields []analysis.FormField, userData map[string]string) []analysis.FormField {
	filled := make([]analysis.FormField, len(fields))
	copy(filled, fields)

	normalized := normalizeKeys(userData)

	for i := range filled {
		field := &filled[i]

		if value, ok := lookupValue(normalized, field.ID, field.Label); ok {
			field.Value = value
			continue
		}
		if field.Value != "" {
			continue
		}
		field.Value = r.defaultValue(field)
	}

	return filled
}

// Answer returns a copy of questions with every answer populated, using
// the same cascade as Fill
func (r *Reconciler) Answer(questions []analysis.Question, userData map[string]string) []analysis.Question {
	answered := make([]analysis.Question, len(questions))
	copy(answered, questions)

	normalized := normalizeKeys(userData)

	for i := range answered {
		question := &answered[i]

		if value, ok := lookupValue(normalized, question.ID, question.Text); ok {
			question.Value = value
			continue
		}
		if question.Value != "" {
			continue
		}
		question.Value = r.defaultAnswer(question)
	}

	return answered
}

// defaultValue derives a value for a field the user supplied nothing for
func (r *Reconciler) defaultValue(field *analysis.FormField) string {
	if value, ok := r.profileValue(field.Type, field.Label); ok {
		return value
	}
	if len(field.Suggestions) > 0 {
		return field.Suggestions[0]
	}
	return placeholderFor(field.Type, field.Label)
}

// defaultAnswer derives an answer for a question the user supplied
// nothing for
func (r *Reconciler) defaultAnswer(question *analysis.Question) string {
	if question.AISuggestion != "" {
		return question.AISuggestion
	}

	switch question.Type {
	case analysis.QuestionTypeYesNo:
		return "Yes"
	case analysis.QuestionTypeMultipleChoice:
		if len(question.Options) > 0 {
			return question.Options[0]
		}
	case analysis.QuestionTypeDate:
		return time.Now().Format("2006-01-02")
	case analysis.QuestionTypeNumber, analysis.QuestionTypeRating:
		return "1"
	}

	return "N/A"
}

// profileValue maps a field type (and label hints) to a profile value
func (r *Reconciler) profileValue(fieldType analysis.FieldType, label string) (string, bool) {
	key := normalizeKey(label)
	if r.profile.Custom != nil {
		for customKey, value := range r.profile.Custom {
			if normalizeKey(customKey) == key && value != "" {
				return value, true
			}
		}
	}

	switch fieldType {
	case analysis.FieldTypeEmail:
		if r.profile.Email != "" {
			return r.profile.Email, true
		}
	case analysis.FieldTypePhone:
		if r.profile.Phone != "" {
			return r.profile.Phone, true
		}
	case analysis.FieldTypeDate:
		return time.Now().Format("2006-01-02"), true
	case analysis.FieldTypeSignature:
		if r.profile.FullName != "" {
			return r.profile.FullName, true
		}
	case analysis.FieldTypeCheckbox:
		return "X", true
	case analysis.FieldTypeText:
		// Label hints promote identity values onto untyped text fields.
		switch {
		case containsAny(key, "name", "nombre", "nom", "שם", "имя"):
			if r.profile.FullName != "" {
				return r.profile.FullName, true
			}
		case containsAny(key, "email", "mail", "correo"):
			if r.profile.Email != "" {
				return r.profile.Email, true
			}
		case containsAny(key, "phone", "tel", "טלפון"):
			if r.profile.Phone != "" {
				return r.profile.Phone, true
			}
		}
	}

	return "", false
}

// placeholderFor is the cascade's last resort
func placeholderFor(fieldType analysis.FieldType, label string) string {
	switch fieldType {
	case analysis.FieldTypeNumber:
		return "0"
	case analysis.FieldTypeSelect, analysis.FieldTypeRadio:
		return "1"
	default:
		clean := strings.TrimRight(strings.TrimSpace(label), ":")
		if clean == "" || clean == "Field" {
			return "N/A"
		}
		return fmt.Sprintf("[%s]", clean)
	}
}

// lookupValue matches a field against user data by id first, then by
// normalized label
func lookupValue(normalized map[string]string, id, label string) (string, bool) {
	if value, ok := normalized[normalizeKey(id)]; ok && value != "" {
		return value, true
	}
	if value, ok := normalized[normalizeKey(label)]; ok && value != "" {
		return value, true
	}
	return "", false
}

// normalizeKeys rebuilds userData with normalized keys
func normalizeKeys(userData map[string]string) map[string]string {
	normalized := make(map[string]string, len(userData))
	for key, value := range userData {
		normalized[normalizeKey(key)] = value
	}
	return normalized
}

// normalizeKey lowercases and strips separators so "Full Name",
// "full_name" and "fullName:" all collide
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimRight(key, ":")
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case ' ', '_', '-', '.':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
