// Package extract obtains plain-text content and seed form fields from
// uploaded documents. It is the content-extraction collaborator of the
// analysis pipeline: extraction failures are the only errors that abort
// document processing.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/docsigner/internal/analysis"
)

// Service implements analysis.ContentExtractor for PDF, DOCX and
// plain-text files
type Service struct {
	maxFileSize int64
	debugMode   bool
}

// NewService creates a content extraction service with the specified
// file size limit
func NewService(maxFileSize int64, debugMode bool) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		debugMode:   debugMode,
	}
}

// Extract reads the document at path and returns its text content along
// with basic metadata. An empty fileType is inferred from the file
// extension.
func (s *Service) Extract(_ context.Context, path, fileType string) (*analysis.ExtractedContent, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if s.maxFileSize > 0 && fileInfo.Size() > s.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d)", fileInfo.Size(), s.maxFileSize)
	}

	if fileType == "" {
		fileType = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch strings.ToLower(fileType) {
	case "pdf":
		return s.extractPDF(path, fileInfo)
	case "docx":
		return s.extractDOCX(path, fileInfo)
	case "txt", "text":
		return s.extractText(path, fileInfo, fileType)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// extractText reads a plain-text document
func (s *Service) extractText(path string, fileInfo os.FileInfo, fileType string) (*analysis.ExtractedContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &analysis.ExtractedContent{
		Text:  string(data),
		Name:  fileInfo.Name(),
		Type:  fileType,
		Size:  fileInfo.Size(),
		Pages: 1,
	}, nil
}
