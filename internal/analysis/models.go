// Package analysis implements the document analysis pipeline: a provider
// chain (local LLM with a deterministic heuristic fallback), a tolerant
// response-recovery parser, and the orchestrator that turns raw document
// content into a structurally valid DocumentAnalysis.
package analysis

import "time"

// FieldType represents the type of a detected form field
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeSignature FieldType = "signature"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeDate      FieldType = "date"
	FieldTypeEmail     FieldType = "email"
	FieldTypePhone     FieldType = "phone"
	FieldTypeNumber    FieldType = "number"
	FieldTypeSelect    FieldType = "select"
)

// IsValid checks if the field type is one of the supported values
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeText, FieldTypeCheckbox, FieldTypeSignature, FieldTypeRadio,
		FieldTypeDate, FieldTypeEmail, FieldTypePhone, FieldTypeNumber, FieldTypeSelect:
		return true
	default:
		return false
	}
}

// QuestionType represents the type of an embedded question
type QuestionType string

const (
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeDate           QuestionType = "date"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeRating         QuestionType = "rating"
)

// DocumentCategory is a coarse heuristic category for a document
type DocumentCategory string

const (
	CategoryGeneral    DocumentCategory = "general"
	CategoryLegal      DocumentCategory = "legal"
	CategoryEmployment DocumentCategory = "employment"
	CategoryMedical    DocumentCategory = "medical"
	CategoryFinancial  DocumentCategory = "financial"
)

// Position describes a rectangle on a page. Dimensions are non-negative.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp forces negative dimensions to zero
func (p *Position) Clamp() {
	if p.Width < 0 {
		p.Width = 0
	}
	if p.Height < 0 {
		p.Height = 0
	}
}

// FieldValidation holds optional validation bounds attached to a field
type FieldValidation struct {
	Pattern   string  `json:"pattern,omitempty"`
	MinLength int     `json:"minLength,omitempty"`
	MaxLength int     `json:"maxLength,omitempty"`
	MinValue  float64 `json:"minValue,omitempty"`
	MaxValue  float64 `json:"maxValue,omitempty"`
}

// FormField represents a fillable field detected in a document
type FormField struct {
	ID          string           `json:"id"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label"`
	Value       string           `json:"value,omitempty"`
	Required    bool             `json:"required"`
	Position    Position         `json:"position"`
	Page        int              `json:"page"`
	Confidence  float64          `json:"confidence"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

// Question represents an embedded question detected in a document
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options,omitempty"`
	Position     Position     `json:"position"`
	Page         int          `json:"page"`
	Confidence   float64      `json:"confidence"`
	Value        string       `json:"value,omitempty"`
	AISuggestion string       `json:"aiSuggestion,omitempty"`
}

// SignatureZone is a detected location expected to receive a signature.
// It is a location only, not yet bound to signer data.
type SignatureZone struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	Page     int      `json:"page"`
	Required bool     `json:"required"`
}

// DocumentInfo carries basic metadata about the analyzed document
type DocumentInfo struct {
	Name     string           `json:"name"`
	Size     int64            `json:"size"`
	Pages    int              `json:"pages"`
	Type     string           `json:"type"`
	Language string           `json:"language,omitempty"`
	Category DocumentCategory `json:"category,omitempty"`
}

// DocumentAnalysis is the result of analyzing one document. It is created
// once per upload and treated as immutable downstream; reconciliation
// produces derived copies.
type DocumentAnalysis struct {
	AnalysisID     string          `json:"analysisId,omitempty"`
	DocumentInfo   DocumentInfo    `json:"documentInfo"`
	FormFields     []FormField     `json:"formFields"`
	Questions      []Question      `json:"questions"`
	Signatures     []SignatureZone `json:"signatures"`
	ProcessingTime time.Duration   `json:"processingTime"`
	Confidence     float64         `json:"confidence"`
	Content        string          `json:"content,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	KeyInsights    []string        `json:"keyInsights,omitempty"`
	RiskAssessment string          `json:"riskAssessment,omitempty"`
}

// Normalize enforces the structural invariants of an analysis: the three
// entity slices are never nil, confidence values are within [0,1], pages
// are at least 1, and position dimensions are non-negative. Every analysis
// leaving this package has been normalized.
func (a *DocumentAnalysis) Normalize() {
	if a.FormFields == nil {
		a.FormFields = []FormField{}
	}
	if a.Questions == nil {
		a.Questions = []Question{}
	}
	if a.Signatures == nil {
		a.Signatures = []SignatureZone{}
	}

	for i := range a.FormFields {
		f := &a.FormFields[i]
		if !f.Type.IsValid() {
			f.Type = FieldTypeText
		}
		f.Confidence = clampConfidence(f.Confidence)
		if f.Page < 1 {
			f.Page = 1
		}
		f.Position.Clamp()
	}
	for i := range a.Questions {
		q := &a.Questions[i]
		q.Confidence = clampConfidence(q.Confidence)
		if q.Page < 1 {
			q.Page = 1
		}
		q.Position.Clamp()
	}
	for i := range a.Signatures {
		s := &a.Signatures[i]
		if s.Page < 1 {
			s.Page = 1
		}
		s.Position.Clamp()
	}

	a.Confidence = clampConfidence(a.Confidence)
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
