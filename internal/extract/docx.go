package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a3tai/docsigner/internal/analysis"
)

// extractDOCX extracts text content from a DOCX file. A DOCX is a zip
// archive whose main document part is word/document.xml; the token walk
// keeps paragraph boundaries as line breaks so the line-oriented
// heuristics downstream see the same structure a user does.
func (s *Service) extractDOCX(path string, fileInfo os.FileInfo) (*analysis.ExtractedContent, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("DOCX archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document part: %w", err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document part: %w", err)
	}

	// DOCX has no fixed pagination; estimate one page per 45 non-empty
	// lines like the heuristic layout does.
	lineCount := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lineCount++
		}
	}
	pages := lineCount/45 + 1

	return &analysis.ExtractedContent{
		Text:  text,
		Name:  fileInfo.Name(),
		Type:  "docx",
		Size:  fileInfo.Size(),
		Pages: pages,
	}, nil
}

// docxText walks the WordprocessingML token stream and emits plain text
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		}
	}

	return sb.String(), nil
}
