package signing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// winAnsiEncodeFailure is the backend failure substring emitted when the
// stamping library cannot encode non-Latin glyphs. It triggers the
// plain-text fallback document instead of a warning.
const winAnsiEncodeFailure = "WinAnsi cannot encode"

// Client talks to the signing backend over HTTP
type Client struct {
	backendURL string
	outputDir  string
	httpClient *http.Client
	debugMode  bool
}

// NewClient creates a signing backend client. Signed documents are
// persisted under outputDir.
func NewClient(backendURL, outputDir string, timeout time.Duration, debugMode bool) *Client {
	return &Client{
		backendURL: strings.TrimRight(backendURL, "/"),
		outputDir:  outputDir,
		httpClient: &http.Client{Timeout: timeout},
		debugMode:  debugMode,
	}
}

// SignResult is the outcome of one signing submission. Warning carries a
// non-fatal backend failure; URI always points at a usable document, the
// signed output on success or the original input otherwise.
type SignResult struct {
	URI      string `json:"uri"`
	DataURL  string `json:"dataUrl,omitempty"`
	Signed   bool   `json:"signed"`
	Fallback bool   `json:"fallback,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type backendError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Sign submits the document with its signature requests to the backend.
// Backend failures never abort the operation: an ordinary failure is
// reported as a warning with the original document URI, and a WinAnsi
// encoding failure produces a local plain-text fallback document. The
// returned error is non-nil only when local I/O fails.
func (c *Client) Sign(ctx context.Context, documentPath string, requests []SignatureRequest) (*SignResult, error) {
	docData, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	fileName := filepath.Base(documentPath)

	body, contentType, err := encodeMultipart(fileName, docData, requests)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signing request: %w", err)
	}

	url := c.backendURL + "/api/add-signature"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build signing request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &SignResult{
			URI:     documentPath,
			Warning: fmt.Sprintf("signing backend unreachable: %v", err),
		}, nil
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SignResult{
			URI:     documentPath,
			Warning: fmt.Sprintf("failed to read backend response: %v", err),
		}, nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return c.persistSigned(fileName, respData)
	}

	message := backendFailureMessage(resp.StatusCode, respData)
	if c.debugMode {
		log.Printf("signing backend failure: %s", message)
	}

	if strings.Contains(message, winAnsiEncodeFailure) {
		return c.writeFallbackDocument(fileName, requests, message)
	}

	return &SignResult{
		URI:     documentPath,
		Warning: message,
	}, nil
}

// persistSigned writes the signed document to the output directory and
// returns its URI plus a base64 data URL
func (c *Client) persistSigned(fileName string, data []byte) (*SignResult, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(c.outputDir, signedName(fileName))
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to persist signed document: %w", err)
	}

	return &SignResult{
		URI:     outPath,
		DataURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		Signed:  true,
	}, nil
}

// writeFallbackDocument produces a plain-text stand-in when the backend
// cannot encode the document's glyphs
func (c *Client) writeFallbackDocument(fileName string, requests []SignatureRequest, cause string) (*SignResult, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Signed document record\n")
	sb.WriteString("======================\n\n")
	sb.WriteString(fmt.Sprintf("Document: %s\n", fileName))
	sb.WriteString(fmt.Sprintf("Signed at: %s\n\n", time.Now().Format(time.RFC3339)))
	for i, r := range requests {
		sb.WriteString(fmt.Sprintf("Signature %d: page %d at (%.1f, %.1f)\n", i+1, r.Page, r.X, r.Y))
	}

	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	outPath := filepath.Join(c.outputDir, base+"_signed.txt")
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write fallback document: %w", err)
	}

	return &SignResult{
		URI:      outPath,
		Signed:   true,
		Fallback: true,
		Warning:  cause,
	}, nil
}

// backendFailureMessage extracts a readable message from a non-2xx
// backend response, which may be JSON or plain text
func backendFailureMessage(status int, body []byte) string {
	var be backendError
	if err := json.Unmarshal(body, &be); err == nil && be.Error != "" {
		if be.Details != "" {
			return fmt.Sprintf("signing backend returned %d: %s (%s)", status, be.Error, be.Details)
		}
		return fmt.Sprintf("signing backend returned %d: %s", status, be.Error)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Sprintf("signing backend returned %d: %s", status, text)
}

// encodeMultipart builds the multipart body the backend expects: the
// document under "document" and the request array under "signatures"
func encodeMultipart(fileName string, docData []byte, requests []SignatureRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("document", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(docData); err != nil {
		return nil, "", err
	}

	sigJSON, err := json.Marshal(requests)
	if err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("signatures", string(sigJSON)); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// signedName derives the output filename for a signed document
func signedName(fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	if ext == "" {
		ext = ".pdf"
	}
	return base + "_signed" + ext
}
