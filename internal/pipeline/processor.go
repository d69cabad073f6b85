// Package pipeline runs the full document flow: content analysis, field
// reconciliation, validation, signature binding, and backend submission.
// One invocation is one logical thread of control; the only error that
// aborts it is a content-extraction failure.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/a3tai/docsigner/internal/analysis"
	"github.com/a3tai/docsigner/internal/reconcile"
	"github.com/a3tai/docsigner/internal/signing"
)

// Processor orchestrates the end-to-end document processing flow
type Processor struct {
	orchestrator *analysis.Orchestrator
	backend      *signing.Client
	debug        bool
}

// NewProcessor creates a document processor
func NewProcessor(orchestrator *analysis.Orchestrator, backend *signing.Client, debug bool) *Processor {
	return &Processor{
		orchestrator: orchestrator,
		backend:      backend,
		debug:        debug,
	}
}

// Request carries one document through the pipeline together with the
// signer's identity and any explicit values or signature artifacts
type Request struct {
	DocumentPath    string                           `json:"documentPath"`
	FileType        string                           `json:"fileType,omitempty"`
	Profile         reconcile.UserProfile            `json:"profile"`
	UserData        map[string]string                `json:"userData,omitempty"`
	Signatures      []signing.SignatureData          `json:"signatures,omitempty"`
	KeyedSignatures map[string]signing.SignatureData `json:"keyedSignatures,omitempty"`
	SkipSigning     bool                             `json:"skipSigning,omitempty"`
}

// Result is the outcome of one pipeline invocation. Success is false
// only when validation found blocking errors; degraded signing shows up
// in Warnings instead.
type Result struct {
	Success           bool                        `json:"success"`
	Analysis          *analysis.DocumentAnalysis  `json:"analysis"`
	FilledFields      []analysis.FormField        `json:"filledFields"`
	AnsweredQuestions []analysis.Question         `json:"answeredQuestions"`
	Validation        *reconcile.ValidationResult `json:"validation"`
	SignatureRequests []signing.SignatureRequest  `json:"signatureRequests,omitempty"`
	SignedDocumentURI string                      `json:"signedDocumentUri,omitempty"`
	SignedDataURL     string                      `json:"signedDataUrl,omitempty"`
	ProcessingTime    time.Duration               `json:"processingTime"`
	Errors            []string                    `json:"errors"`
	Warnings          []string                    `json:"warnings"`
}

// ProcessDocument runs the pipeline on one document. Analysis never
// fails once content is extracted, so the returned error is non-nil only
// for extraction and local I/O failures.
func (p *Processor) ProcessDocument(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()

	docAnalysis, err := p.orchestrator.AnalyzeDocument(ctx, req.DocumentPath, req.FileType)
	if err != nil {
		return nil, fmt.Errorf("content extraction failed: %w", err)
	}

	reconciler := reconcile.NewReconciler(req.Profile)
	filled := reconciler.Fill(docAnalysis.FormFields, req.UserData)
	answered := reconciler.Answer(docAnalysis.Questions, req.UserData)

	validation := reconcile.ValidateForm(filled)

	result := &Result{
		Success:           validation.IsValid,
		Analysis:          docAnalysis,
		FilledFields:      filled,
		AnsweredQuestions: answered,
		Validation:        validation,
		Errors:            validation.Errors,
		Warnings:          validation.Warnings,
	}

	if !req.SkipSigning {
		requests := signing.BuildRequests(filled, docAnalysis.Signatures, req.Signatures, req.KeyedSignatures)
		result.SignatureRequests = requests

		signResult, err := p.backend.Sign(ctx, req.DocumentPath, requests)
		if err != nil {
			return nil, fmt.Errorf("signing submission failed: %w", err)
		}
		result.SignedDocumentURI = signResult.URI
		result.SignedDataURL = signResult.DataURL
		if signResult.Warning != "" {
			result.Warnings = append(result.Warnings, signResult.Warning)
		}
	}

	result.ProcessingTime = time.Since(startTime)

	if p.debug {
		log.Printf("processed %s: %d fields, %d questions, %d signature requests, success=%t in %s",
			req.DocumentPath, len(result.FilledFields), len(result.AnsweredQuestions),
			len(result.SignatureRequests), result.Success, result.ProcessingTime)
	}

	return result, nil
}
