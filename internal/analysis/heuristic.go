package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/a3tai/docsigner/internal/language"
)

const (
	// Synthesized layout for heuristic detections. Lines advance down a
	// US Letter page; positions are deterministic per line index.
	heuristicLinesPerPage = 45
	heuristicLeftMargin   = 72.0
	heuristicTopY         = 760.0
	heuristicLineAdvance  = 16.0

	heuristicFieldConfidence    = 0.6
	heuristicQuestionConfidence = 0.5
	heuristicOverallConfidence  = 0.55
)

var (
	underscoreRunPattern = regexp.MustCompile(`_{3,}`)
	checkboxPattern      = regexp.MustCompile(`\[\s?[xX]?\s?\]|☐|☑|☒`)
)

// signatureKeywords mark a line as a signature field, in any supported
// language.
var signatureKeywords = []string{
	"signature", "sign here", "signed by",
	"חתימה", "חתום",
	"توقيع",
	"подпись",
	"签名", "署名",
	"firma",
	"unterschrift",
	"signature du",
}

// interrogativePrefixes mark a line as a yes/no question even without a
// question mark.
var interrogativePrefixes = []string{
	"do you", "have you", "are you", "did you", "will you", "would you",
	"is there", "האם", "هل",
}

// HeuristicAnalyzer extracts candidate fields, questions and signature
// zones from plain text with a line-oriented scan. It is the
// guaranteed-available terminal fallback tier: it never fails and never
// touches the network.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates a new heuristic analyzer
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze scans content line by line and returns a structurally valid
// analysis. Empty content yields empty (non-nil) entity arrays.
func (h *HeuristicAnalyzer) Analyze(content, fileType string) *DocumentAnalysis {
	startTime := time.Now()

	analysis := &DocumentAnalysis{
		FormFields: []FormField{},
		Questions:  []Question{},
		Signatures: []SignatureZone{},
	}

	lines := strings.Split(content, "\n")
	for i, rawLine := range lines {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		pos := h.linePosition(i)
		page := i/heuristicLinesPerPage + 1

		// Signature lines often carry an underscore run as well, so the
		// keyword check runs first.
		switch {
		case containsSignatureKeyword(line):
			label := cleanLabel(line)
			analysis.FormFields = append(analysis.FormFields, FormField{
				ID:         fmt.Sprintf("field_%d", i),
				Type:       FieldTypeSignature,
				Label:      label,
				Required:   true,
				Position:   pos,
				Page:       page,
				Confidence: heuristicFieldConfidence,
			})
			analysis.Signatures = append(analysis.Signatures, SignatureZone{
				ID:       fmt.Sprintf("sig_%d", i),
				Label:    label,
				Position: pos,
				Page:     page,
				Required: true,
			})

		case checkboxPattern.MatchString(line):
			analysis.FormFields = append(analysis.FormFields, FormField{
				ID:         fmt.Sprintf("field_%d", i),
				Type:       FieldTypeCheckbox,
				Label:      cleanLabel(line),
				Position:   pos,
				Page:       page,
				Confidence: heuristicFieldConfidence,
			})

		case isQuestionLine(line):
			analysis.Questions = append(analysis.Questions, Question{
				ID:         fmt.Sprintf("question_%d", i),
				Text:       line,
				Type:       QuestionTypeYesNo,
				Position:   pos,
				Page:       page,
				Confidence: heuristicQuestionConfidence,
			})

		case underscoreRunPattern.MatchString(line):
			analysis.FormFields = append(analysis.FormFields, FormField{
				ID:         fmt.Sprintf("field_%d", i),
				Type:       FieldTypeText,
				Label:      cleanLabel(line),
				Position:   pos,
				Page:       page,
				Confidence: heuristicFieldConfidence,
			})
		}
	}

	pages := (len(lines)-1)/heuristicLinesPerPage + 1
	if pages < 1 {
		pages = 1
	}

	category, insights, risk := DetectCategory(content)
	analysis.DocumentInfo = DocumentInfo{
		Pages:    pages,
		Type:     fileType,
		Language: language.Detect(content),
		Category: category,
	}
	analysis.KeyInsights = insights
	analysis.RiskAssessment = risk
	analysis.Summary = fmt.Sprintf("Detected %d form fields, %d questions and %d signature zones",
		len(analysis.FormFields), len(analysis.Questions), len(analysis.Signatures))
	analysis.Confidence = heuristicOverallConfidence
	analysis.ProcessingTime = time.Since(startTime)

	analysis.Normalize()
	return analysis
}

// linePosition synthesizes a deterministic rectangle for a line index
func (h *HeuristicAnalyzer) linePosition(lineIdx int) Position {
	lineInPage := lineIdx % heuristicLinesPerPage
	return Position{
		X:      heuristicLeftMargin,
		Y:      heuristicTopY - float64(lineInPage)*heuristicLineAdvance,
		Width:  200,
		Height: 14,
	}
}

// containsSignatureKeyword reports whether the line mentions a signature
// in any supported language
func containsSignatureKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range signatureKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isQuestionLine reports whether the line is an embedded question
func isQuestionLine(line string) bool {
	if strings.Contains(line, "?") {
		return true
	}
	lower := strings.ToLower(line)
	for _, prefix := range interrogativePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// cleanLabel strips underscores, checkbox glyphs and surrounding
// whitespace from a line; an empty result defaults to "Field".
func cleanLabel(line string) string {
	label := underscoreRunPattern.ReplaceAllString(line, "")
	label = checkboxPattern.ReplaceAllString(label, "")
	label = strings.Trim(label, "_ \t")
	if label == "" {
		return "Field"
	}
	return label
}
