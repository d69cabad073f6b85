package analysis

import (
	"context"
	"errors"
	"testing"
)

// stubExtractor returns canned content or a canned error.
type stubExtractor struct {
	content *ExtractedContent
	err     error
}

func (s *stubExtractor) Extract(_ context.Context, _, _ string) (*ExtractedContent, error) {
	return s.content, s.err
}

func TestOrchestratorAnalyzeDocument(t *testing.T) {
	extractor := &stubExtractor{
		content: &ExtractedContent{
			Text:  "Name: _____\nSignature: _____",
			Name:  "form.pdf",
			Type:  "pdf",
			Size:  1234,
			Pages: 2,
		},
	}
	chain := NewChainWithProvider(NewHeuristicProvider(), false)
	orchestrator := NewOrchestrator(extractor, chain, false)

	result, err := orchestrator.AnalyzeDocument(context.Background(), "/tmp/form.pdf", "pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AnalysisID == "" {
		t.Error("expected an analysis id")
	}
	if result.DocumentInfo.Name != "form.pdf" {
		t.Errorf("expected document name from extraction, got %q", result.DocumentInfo.Name)
	}
	if result.DocumentInfo.Size != 1234 {
		t.Errorf("expected document size from extraction, got %d", result.DocumentInfo.Size)
	}
	if result.DocumentInfo.Pages != 2 {
		t.Errorf("expected page count from extraction, got %d", result.DocumentInfo.Pages)
	}
	if len(result.FormFields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(result.FormFields))
	}
	if result.Confidence <= 0 {
		t.Error("expected a positive confidence")
	}
}

func TestOrchestratorExtractionErrorEscalates(t *testing.T) {
	wantErr := errors.New("file is corrupt")
	extractor := &stubExtractor{err: wantErr}
	chain := NewChainWithProvider(NewHeuristicProvider(), false)
	orchestrator := NewOrchestrator(extractor, chain, false)

	result, err := orchestrator.AnalyzeDocument(context.Background(), "/tmp/broken.pdf", "pdf")
	if err == nil {
		t.Fatal("expected extraction error to escalate")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped extraction error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on extraction failure, got %v", result)
	}
}

func TestOrchestratorProviderFailureNeverRejects(t *testing.T) {
	extractor := &stubExtractor{
		content: &ExtractedContent{Text: "some text", Type: "txt", Pages: 1},
	}
	chain := NewChainWithProvider(&failingProvider{}, false)
	orchestrator := NewOrchestrator(extractor, chain, false)

	result, err := orchestrator.AnalyzeDocument(context.Background(), "/tmp/doc.txt", "txt")
	if err != nil {
		t.Fatalf("provider failure must not escalate: %v", err)
	}
	if result.FormFields == nil || result.Questions == nil || result.Signatures == nil {
		t.Error("entity arrays must never be nil")
	}
}

func TestOrchestratorMergesSeedFields(t *testing.T) {
	extractor := &stubExtractor{
		content: &ExtractedContent{
			Text:  "Name: _____",
			Type:  "pdf",
			Pages: 1,
			SeedFields: []FormField{
				{ID: "acro_name", Type: FieldTypeText, Label: "Full Name", Page: 1, Confidence: 0.9},
				{ID: "acro_sig", Type: FieldTypeSignature, Label: "Sign Here", Page: 1, Required: true, Confidence: 0.9},
			},
		},
	}
	chain := NewChainWithProvider(NewHeuristicProvider(), false)
	orchestrator := NewOrchestrator(extractor, chain, false)

	result, err := orchestrator.AnalyzeDocument(context.Background(), "/tmp/form.pdf", "pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := map[string]bool{}
	for _, f := range result.FormFields {
		if ids[f.ID] {
			t.Errorf("duplicate field id after merge: %s", f.ID)
		}
		ids[f.ID] = true
	}
	if !ids["acro_name"] || !ids["acro_sig"] {
		t.Error("seed fields missing after merge")
	}

	// The seed signature widget must also appear as a signature zone.
	foundZone := false
	for _, zone := range result.Signatures {
		if zone.ID == "acro_sig" {
			foundZone = true
		}
	}
	if !foundZone {
		t.Error("seed signature widget not promoted to a signature zone")
	}
}

func TestOrchestratorAnalyzeContent(t *testing.T) {
	chain := NewChainWithProvider(NewHeuristicProvider(), false)
	orchestrator := NewOrchestrator(&stubExtractor{}, chain, false)

	result := orchestrator.AnalyzeContent(context.Background(), "Do you agree?", "txt")

	if result == nil {
		t.Fatal("AnalyzeContent returned nil")
	}
	if len(result.Questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(result.Questions))
	}
	if result.DocumentInfo.Language != "en" {
		t.Errorf("expected en language, got %q", result.DocumentInfo.Language)
	}
}
