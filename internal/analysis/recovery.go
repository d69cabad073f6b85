package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/a3tai/docsigner/internal/language"
)

// RecoveryError describes why model output could not be parsed into a
// structured analysis. It is an explicit return value, never a panic:
// callers compose it with the fallback tier.
type RecoveryError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *RecoveryError) Error() string {
	return fmt.Sprintf("response recovery failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *RecoveryError) Unwrap() error {
	return e.Err
}

var (
	codeFencePattern     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// modelAnalysis is the wire shape the LLM is prompted to produce. Every
// field is optional; missing values become structural defaults.
type modelAnalysis struct {
	Language       string          `json:"language"`
	Category       string          `json:"category"`
	Summary        string          `json:"summary"`
	KeyInsights    []string        `json:"keyInsights"`
	RiskAssessment string          `json:"riskAssessment"`
	FormFields     []FormField     `json:"formFields"`
	Questions      []Question      `json:"questions"`
	Signatures     []SignatureZone `json:"signatures"`
	Confidence     float64         `json:"confidence"`
}

// ParseModelOutput normalizes, repairs and parses a model's free-form text
// into a structured analysis. The repair steps, in order: strip Markdown
// code fences, locate the first-{ to last-} span to discard surrounding
// commentary, truncate to the last balanced closing brace, and remove
// trailing commas before } or ]. Failure is an explicit *RecoveryError.
func ParseModelOutput(raw string) (*DocumentAnalysis, error) {
	candidate, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	candidate = trailingCommaPattern.ReplaceAllString(candidate, "$1")

	var wire modelAnalysis
	if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
		return nil, &RecoveryError{Stage: "unmarshal", Err: err}
	}

	analysis := &DocumentAnalysis{
		DocumentInfo: DocumentInfo{
			Language: wire.Language,
			Category: DocumentCategory(wire.Category),
		},
		FormFields:     wire.FormFields,
		Questions:      wire.Questions,
		Signatures:     wire.Signatures,
		Summary:        wire.Summary,
		KeyInsights:    wire.KeyInsights,
		RiskAssessment: wire.RiskAssessment,
		Confidence:     wire.Confidence,
	}
	analysis.Normalize()
	return analysis, nil
}

// Recover is the total variant of ParseModelOutput: when no structured
// object can be salvaged it synthesizes a best-effort partial analysis
// from keyword heuristics over the raw text, with empty-but-valid entity
// arrays. Recover never fails.
func Recover(raw, fileType string) *DocumentAnalysis {
	if analysis, err := ParseModelOutput(raw); err == nil {
		return analysis
	}

	category, insights, risk := DetectCategory(raw)
	analysis := &DocumentAnalysis{
		DocumentInfo: DocumentInfo{
			Type:     fileType,
			Language: language.Detect(raw),
			Category: category,
		},
		FormFields:     []FormField{},
		Questions:      []Question{},
		Signatures:     []SignatureZone{},
		Summary:        "Partial analysis recovered from unstructured model output",
		KeyInsights:    insights,
		RiskAssessment: risk,
		Confidence:     0.3,
	}
	analysis.Normalize()
	return analysis
}

// extractJSONObject isolates the JSON object embedded in free-form model
// text.
func extractJSONObject(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &RecoveryError{Stage: "locate", Err: fmt.Errorf("empty model output")}
	}

	// Prefer the body of a Markdown code fence when one is present.
	if m := codeFencePattern.FindStringSubmatch(text); len(m) == 2 {
		text = m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", &RecoveryError{Stage: "locate", Err: fmt.Errorf("no JSON object span in model output")}
	}
	text = text[start : end+1]

	// Truncate to the last balanced closing brace so trailing garbage
	// after a complete object is discarded.
	if balanced := balancedPrefix(text); balanced != "" {
		text = balanced
	}

	return text, nil
}

// balancedPrefix returns the prefix of text up to the brace that closes
// the opening object, skipping braces inside JSON strings. An empty
// return means the object never balances.
func balancedPrefix(text string) string {
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1]
				}
			}
		}
	}
	return ""
}
