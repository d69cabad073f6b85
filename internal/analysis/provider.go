package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ProviderKind selects the primary analysis tier. Dispatch on the kind is
// exhaustive; there is no string duck-typing beyond this tag.
type ProviderKind string

const (
	KindLocal     ProviderKind = "local"
	KindHeuristic ProviderKind = "heuristic"
)

// ProviderConfig is the tagged configuration for the provider chain.
// Endpoint/Model/APIStyle apply only to KindLocal.
type ProviderConfig struct {
	Kind       ProviderKind
	Endpoint   string
	Model      string
	APIStyle   string // "generate" (ollama) or "chat" (openai-compatible)
	MaxTokens  int
	MaxExcerpt int
	Timeout    time.Duration
	Debug      bool
}

// Validate checks the provider configuration
func (c ProviderConfig) Validate() error {
	switch c.Kind {
	case KindLocal:
		if c.Endpoint == "" {
			return errors.New("local provider requires an endpoint")
		}
		if c.Model == "" {
			return errors.New("local provider requires a model name")
		}
		if c.APIStyle != "generate" && c.APIStyle != "chat" {
			return fmt.Errorf("unsupported API style: %s", c.APIStyle)
		}
		return nil
	case KindHeuristic:
		return nil
	default:
		return fmt.Errorf("unknown provider kind: %s", c.Kind)
	}
}

// Provider turns document text into structured field/question/signature
// candidates.
type Provider interface {
	Name() string
	AnalyzeContent(ctx context.Context, content, fileType string) (*DocumentAnalysis, error)
}

// HeuristicProvider adapts the HeuristicAnalyzer to the Provider
// interface. It never returns an error.
type HeuristicProvider struct {
	analyzer *HeuristicAnalyzer
}

// NewHeuristicProvider creates the heuristic provider tier
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{analyzer: NewHeuristicAnalyzer()}
}

// Name returns the provider name
func (p *HeuristicProvider) Name() string { return "heuristic" }

// AnalyzeContent runs the line-oriented heuristic scan
func (p *HeuristicProvider) AnalyzeContent(_ context.Context, content, fileType string) (*DocumentAnalysis, error) {
	return p.analyzer.Analyze(content, fileType), nil
}

// LocalProvider issues an HTTP request to a locally hosted LLM endpoint
// and parses its response through the recovery layer.
type LocalProvider struct {
	config ProviderConfig
	client *http.Client
}

// NewLocalProvider creates a provider for a local LLM endpoint
func NewLocalProvider(cfg ProviderConfig) *LocalProvider {
	return &LocalProvider{
		config: cfg,
		// Per-call deadlines come from the request context so a timeout
		// aborts the underlying connection.
		client: &http.Client{},
	}
}

// Name returns the provider name
func (p *LocalProvider) Name() string { return "local" }

// generateRequest is the ollama-style /api/generate body
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// chatRequest is the openai-compatible /v1/chat/completions body
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeContent submits a bounded content excerpt to the configured LLM
// endpoint and parses the response. Any transport failure, non-2xx status
// or unrecoverable response is returned as an error; the chain treats all
// of them identically.
func (p *LocalProvider) AnalyzeContent(ctx context.Context, content, fileType string) (*DocumentAnalysis, error) {
	excerpt := content
	if p.config.MaxExcerpt > 0 && len(excerpt) > p.config.MaxExcerpt {
		excerpt = excerpt[:p.config.MaxExcerpt]
	}
	prompt := buildAnalysisPrompt(excerpt, fileType)

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseModelOutput(text)
	if err != nil {
		// Keep the raw text so the chain can salvage partial metadata.
		return nil, &providerParseError{raw: text, err: err}
	}
	return analysis, nil
}

// complete performs the HTTP round trip and extracts the completion text
func (p *LocalProvider) complete(ctx context.Context, prompt string) (string, error) {
	var (
		url  string
		body any
	)
	if p.config.APIStyle == "chat" {
		url = strings.TrimSuffix(p.config.Endpoint, "/") + "/v1/chat/completions"
		body = chatRequest{
			Model:       p.config.Model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Stream:      false,
			Temperature: 0.0,
			TopP:        0.9,
			MaxTokens:   p.config.MaxTokens,
		}
	} else {
		url = strings.TrimSuffix(p.config.Endpoint, "/") + "/api/generate"
		body = generateRequest{
			Model:  p.config.Model,
			Prompt: prompt,
			Stream: false,
			Options: generateOptions{
				Temperature: 0.0,
				TopP:        0.9,
				NumPredict:  p.config.MaxTokens,
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode LLM request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build LLM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("LLM endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read LLM response: %w", err)
	}

	if p.config.APIStyle == "chat" {
		var cr chatResponse
		if err := json.Unmarshal(data, &cr); err != nil {
			return "", fmt.Errorf("failed to decode chat response: %w", err)
		}
		if len(cr.Choices) == 0 {
			return "", errors.New("chat response contained no choices")
		}
		return cr.Choices[0].Message.Content, nil
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if gr.Response == "" {
		return "", errors.New("generate response contained no text")
	}
	return gr.Response, nil
}

// buildAnalysisPrompt embeds the fixed JSON schema the provider chain
// expects back from the model
func buildAnalysisPrompt(excerpt, fileType string) string {
	return fmt.Sprintf(`You are a document analysis engine. Analyze the following %s document and respond with a single JSON object only, no commentary, matching exactly this schema:
{
  "language": "ISO language tag",
  "category": "legal|employment|medical|financial|general",
  "summary": "one paragraph summary",
  "keyInsights": ["..."],
  "riskAssessment": "...",
  "formFields": [{"id":"...","type":"text|checkbox|signature|radio|date|email|phone|number|select","label":"...","required":false,"position":{"x":0,"y":0,"width":0,"height":0},"page":1,"confidence":0.0}],
  "questions": [{"id":"...","text":"...","type":"yes_no|multiple_choice|text|date|number|rating","position":{"x":0,"y":0,"width":0,"height":0},"page":1,"confidence":0.0}],
  "signatures": [{"id":"...","label":"...","position":{"x":0,"y":0,"width":0,"height":0},"page":1,"required":true}]
}

Document content:
%s`, fileType, excerpt)
}

// providerParseError carries the raw model text past a recovery failure
type providerParseError struct {
	raw string
	err error
}

func (e *providerParseError) Error() string { return e.err.Error() }
func (e *providerParseError) Unwrap() error { return e.err }

// Chain composes a primary provider with the guaranteed heuristic tier.
// Any primary failure at any stage is absorbed here; the chain never
// returns an error to its caller.
type Chain struct {
	primary  Provider
	fallback *HeuristicProvider
	debug    bool
}

// NewChain builds the provider chain from a tagged configuration. An
// invalid local configuration degrades to the heuristic tier.
func NewChain(cfg ProviderConfig) *Chain {
	fallback := NewHeuristicProvider()

	var primary Provider
	switch cfg.Kind {
	case KindLocal:
		if err := cfg.Validate(); err != nil {
			log.Printf("provider config invalid, using heuristic tier: %v", err)
			primary = fallback
		} else {
			primary = NewLocalProvider(cfg)
		}
	case KindHeuristic:
		primary = fallback
	default:
		log.Printf("unknown provider kind %q, using heuristic tier", cfg.Kind)
		primary = fallback
	}

	return &Chain{primary: primary, fallback: fallback, debug: cfg.Debug}
}

// NewChainWithProvider builds a chain around an explicit primary provider
func NewChainWithProvider(primary Provider, debug bool) *Chain {
	return &Chain{primary: primary, fallback: NewHeuristicProvider(), debug: debug}
}

// PrimaryName returns the name of the configured primary tier
func (c *Chain) PrimaryName() string { return c.primary.Name() }

// AnalyzeContent runs the primary provider and steps down to the
// heuristic tier on any failure. When the primary produced text that
// could not be fully parsed, metadata salvaged from that text enriches
// the heuristic result.
func (c *Chain) AnalyzeContent(ctx context.Context, content, fileType string) *DocumentAnalysis {
	analysis, err := c.primary.AnalyzeContent(ctx, content, fileType)
	if err == nil && analysis != nil {
		analysis.Normalize()
		return analysis
	}

	if c.debug {
		log.Printf("primary provider %s failed, falling back to heuristic tier: %v", c.primary.Name(), err)
	}

	// The heuristic tier never fails.
	fallbackAnalysis, _ := c.fallback.AnalyzeContent(ctx, content, fileType)

	var parseErr *providerParseError
	if errors.As(err, &parseErr) {
		mergeSalvagedMetadata(fallbackAnalysis, Recover(parseErr.raw, fileType))
	}

	fallbackAnalysis.Normalize()
	return fallbackAnalysis
}

// mergeSalvagedMetadata copies metadata recovered from unparseable model
// output into a heuristic analysis when the heuristic found nothing
// better. Entity arrays are never taken from the salvaged partial.
func mergeSalvagedMetadata(dst, salvaged *DocumentAnalysis) {
	if salvaged == nil {
		return
	}
	if dst.DocumentInfo.Category == CategoryGeneral && salvaged.DocumentInfo.Category != "" {
		dst.DocumentInfo.Category = salvaged.DocumentInfo.Category
	}
	if len(dst.KeyInsights) == 0 {
		dst.KeyInsights = salvaged.KeyInsights
	}
	if dst.RiskAssessment == "" {
		dst.RiskAssessment = salvaged.RiskAssessment
	}
	if dst.Summary == "" {
		dst.Summary = salvaged.Summary
	}
}
