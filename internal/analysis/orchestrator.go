package analysis

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/docsigner/internal/language"
)

// ExtractedContent is what a content extractor hands the orchestrator
type ExtractedContent struct {
	Text  string
	Name  string
	Type  string
	Size  int64
	Pages int

	// SeedFields are fields the document itself declares (PDF AcroForm
	// widgets); they are merged with provider detections by id.
	SeedFields []FormField
}

// ContentExtractor obtains document content from a source path. A failure
// here is the only error that aborts document analysis.
type ContentExtractor interface {
	Extract(ctx context.Context, path, fileType string) (*ExtractedContent, error)
}

const defaultAnalysisConfidence = 0.75

// Orchestrator owns the end-to-end analyze contract: content extraction
// handoff, provider chain invocation, and normalization of the raw result
// into a structurally valid DocumentAnalysis.
type Orchestrator struct {
	extractor ContentExtractor
	chain     *Chain
	debug     bool
}

// NewOrchestrator creates a document analysis orchestrator
func NewOrchestrator(extractor ContentExtractor, chain *Chain, debug bool) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		chain:     chain,
		debug:     debug,
	}
}

// AnalyzeDocument extracts content from the document at path and analyzes
// it. Only a content-extraction failure escalates as an error; every
// analysis-layer failure is absorbed by the provider chain, so the result
// is always a minimally valid analysis.
func (o *Orchestrator) AnalyzeDocument(ctx context.Context, path, fileType string) (*DocumentAnalysis, error) {
	content, err := o.extractor.Extract(ctx, path, fileType)
	if err != nil {
		return nil, err
	}

	analysis := o.analyze(ctx, content)
	return analysis, nil
}

// AnalyzeContent analyzes already-extracted text. Used by callers that
// hold content directly (and by tests); it cannot fail.
func (o *Orchestrator) AnalyzeContent(ctx context.Context, text, fileType string) *DocumentAnalysis {
	return o.analyze(ctx, &ExtractedContent{Text: text, Type: fileType, Pages: 1})
}

func (o *Orchestrator) analyze(ctx context.Context, content *ExtractedContent) *DocumentAnalysis {
	startTime := time.Now()

	analysis := o.chain.AnalyzeContent(ctx, content.Text, content.Type)
	mergeSeedFields(analysis, content.SeedFields)

	// Document metadata comes from extraction, not from the model.
	analysis.DocumentInfo.Name = content.Name
	analysis.DocumentInfo.Size = content.Size
	analysis.DocumentInfo.Type = content.Type
	if content.Pages > 0 {
		analysis.DocumentInfo.Pages = content.Pages
	}
	if analysis.DocumentInfo.Language == "" {
		analysis.DocumentInfo.Language = language.Detect(content.Text)
	}
	if analysis.DocumentInfo.Category == "" {
		analysis.DocumentInfo.Category = CategoryGeneral
	}
	if analysis.Confidence == 0 {
		analysis.Confidence = defaultAnalysisConfidence
	}

	analysis.AnalysisID = uuid.NewString()
	analysis.ProcessingTime = time.Since(startTime)
	analysis.Normalize()

	if o.debug {
		log.Printf("analysis %s: %d fields, %d questions, %d signature zones in %s",
			analysis.AnalysisID, len(analysis.FormFields), len(analysis.Questions),
			len(analysis.Signatures), analysis.ProcessingTime)
	}

	return analysis
}

// mergeSeedFields merges document-declared fields into the analysis,
// keeping provider detections when ids collide
func mergeSeedFields(analysis *DocumentAnalysis, seeds []FormField) {
	if len(seeds) == 0 {
		return
	}

	existing := make(map[string]bool, len(analysis.FormFields))
	for _, f := range analysis.FormFields {
		existing[f.ID] = true
	}

	for _, seed := range seeds {
		if seed.ID == "" || existing[seed.ID] {
			continue
		}
		existing[seed.ID] = true
		analysis.FormFields = append(analysis.FormFields, seed)

		// A declared signature widget is also a signature zone.
		if seed.Type == FieldTypeSignature {
			analysis.Signatures = append(analysis.Signatures, SignatureZone{
				ID:       seed.ID,
				Label:    seed.Label,
				Position: seed.Position,
				Page:     seed.Page,
				Required: seed.Required,
			})
		}
	}
}
