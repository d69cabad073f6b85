package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.txt")
	content := "Name: _____\nSignature: _____\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	service := NewService(1024*1024, false)
	result, err := service.Extract(context.Background(), path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text != content {
		t.Errorf("content mismatch: %q", result.Text)
	}
	if result.Type != "txt" {
		t.Errorf("expected inferred type txt, got %s", result.Type)
	}
	if result.Name != "form.txt" {
		t.Errorf("expected file name, got %s", result.Name)
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page, got %d", result.Pages)
	}
}

func TestExtractValidation(t *testing.T) {
	service := NewService(10, false) // 10 byte limit

	dir := t.TempDir()
	bigFile := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(bigFile, []byte("this file exceeds ten bytes"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		fileType string
	}{
		{"empty path", "", ""},
		{"missing file", filepath.Join(dir, "nope.txt"), ""},
		{"directory", dir, ""},
		{"oversized file", bigFile, ""},
		{"unsupported type", bigFile, "xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Extract(context.Background(), tt.path, tt.fileType)
			if err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestExtractDOCX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter.docx")
	// Real DOCX document parts are not pretty-printed; inter-element
	// whitespace would surface as character data.
	writeTestDOCX(t, path, `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Employment Agreement</w:t></w:r></w:p><w:p><w:r><w:t>Name:</w:t><w:tab/><w:t>_____</w:t></w:r></w:p></w:body></w:document>`)

	service := NewService(1024*1024, false)
	result, err := service.Extract(context.Background(), path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Type != "docx" {
		t.Errorf("expected type docx, got %s", result.Type)
	}
	lines := strings.Split(strings.TrimSpace(result.Text), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(lines), result.Text)
	}
	if lines[0] != "Employment Agreement" {
		t.Errorf("unexpected first paragraph: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Name:") || !strings.Contains(lines[1], "\t") {
		t.Errorf("tab and run text not preserved: %q", lines[1])
	}
}

func TestExtractDOCXWithoutDocumentPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("word/other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()
	_ = f.Close()

	service := NewService(1024*1024, false)
	if _, err := service.Extract(context.Background(), path, "docx"); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestValidatePDFRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	service := NewService(1024*1024, false)
	if _, err := service.ValidatePDF(path); err == nil {
		t.Error("expected error for non-PDF content")
	}
}

func writeTestDOCX(t *testing.T, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create DOCX: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create document part: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("failed to write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
}
