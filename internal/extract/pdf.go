package extract

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/docsigner/internal/analysis"
)

// extractPDF extracts text content and seed form fields from a PDF file
func (s *Service) extractPDF(path string, fileInfo os.FileInfo) (*analysis.ExtractedContent, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	text, err := extractPDFText(pdfReader)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	content := &analysis.ExtractedContent{
		Text:  text,
		Name:  fileInfo.Name(),
		Type:  "pdf",
		Size:  fileInfo.Size(),
		Pages: pdfReader.NumPage(),
	}

	// AcroForm extraction is best-effort; documents without interactive
	// fields are still analyzable.
	seeds, err := s.AcroFormFields(path)
	if err != nil {
		if s.debugMode {
			log.Printf("AcroForm extraction skipped for %s: %v", path, err)
		}
	} else {
		content.SeedFields = seeds
	}

	return content, nil
}

// extractPDFText walks all pages and joins their text runs, inserting
// line breaks when the vertical position changes
func extractPDFText(pdfReader *pdf.Reader) (string, error) {
	var sb strings.Builder

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		lastY := -1.0
		for _, text := range content.Text {
			if lastY >= 0 && text.Y != lastY {
				sb.WriteString("\n")
			} else if lastY >= 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(text.S)
			lastY = text.Y
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ValidatePDF checks that the file at path is a readable PDF and returns
// its page count
func (s *Service) ValidatePDF(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return ctx.PageCount, nil
}
