package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/docsigner/internal/analysis"
	"github.com/a3tai/docsigner/internal/config"
	"github.com/a3tai/docsigner/internal/extract"
	"github.com/a3tai/docsigner/internal/pipeline"
	"github.com/a3tai/docsigner/internal/reconcile"
	"github.com/a3tai/docsigner/internal/signing"
)

// Server represents the MCP server instance
type Server struct {
	config       *config.Config
	orchestrator *analysis.Orchestrator
	processor    *pipeline.Processor
	extractor    *extract.Service
	mcpServer    *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, orchestrator *analysis.Orchestrator, processor *pipeline.Processor, extractor *extract.Service) (*Server, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:       cfg,
		orchestrator: orchestrator,
		processor:    processor,
		extractor:    extractor,
		mcpServer:    mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	analyzeTool := mcp.NewTool(
		"document_analyze_file",
		mcp.WithDescription("Analyze a document and detect form fields, questions and signature zones"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document (pdf, docx or txt)"),
		),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeFile)

	processTool := mcp.NewTool(
		"document_process_file",
		mcp.WithDescription("Run the full pipeline on a document: analyze, fill fields, validate and submit for signing"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document (pdf, docx or txt)"),
		),
		mcp.WithString("name",
			mcp.Description("Signer full name"),
		),
		mcp.WithString("email",
			mcp.Description("Signer email address"),
		),
		mcp.WithString("phone",
			mcp.Description("Signer phone number"),
		),
		mcp.WithString("userdata",
			mcp.Description("JSON object mapping field labels to explicit values"),
		),
		mcp.WithString("signature",
			mcp.Description("Signature artifact data (JSON point array for drawings, text for typed signatures)"),
		),
	)
	s.mcpServer.AddTool(processTool, s.handleProcessFile)

	validateTool := mcp.NewTool(
		"document_validate_file",
		mcp.WithDescription("Validate that a file is a readable PDF document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateFile)

	serverInfoTool := mcp.NewTool(
		"docsigner_server_info",
		mcp.WithDescription("Get server information, available tools and usage guidance"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.orchestrator.AnalyzeDocument(ctx, path, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatAnalysisResult(path, result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleProcessFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	profile := reconcile.UserProfile{
		FullName: s.config.SignerName,
		Email:    s.config.SignerEmail,
		Phone:    s.config.SignerPhone,
	}
	if name, ok := args["name"].(string); ok && name != "" {
		profile.FullName = name
	}
	if email, ok := args["email"].(string); ok && email != "" {
		profile.Email = email
	}
	if phone, ok := args["phone"].(string); ok && phone != "" {
		profile.Phone = phone
	}

	userData := map[string]string{}
	if raw, ok := args["userdata"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &userData); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid userdata: %v", err)), nil
		}
	}

	var signatures []signing.SignatureData
	if data, ok := args["signature"].(string); ok && data != "" {
		signatures = append(signatures, signing.SignatureData{
			ID:        "default",
			Name:      profile.FullName,
			Type:      signing.SignatureDrawing,
			Data:      data,
			IsDefault: true,
		})
	}

	req := &pipeline.Request{
		DocumentPath: path,
		Profile:      profile,
		UserData:     userData,
		Signatures:   signatures,
	}

	result, err := s.processor.ProcessDocument(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatProcessResult(path, result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pages, err := s.extractor.ValidatePDF(path)

	var responseText string
	if err != nil {
		responseText = fmt.Sprintf("PDF validation failed for %s: %v", path, err)
	} else {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", path, pages)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseText := s.formatServerInfo()
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatAnalysisResult(path string, result *analysis.DocumentAnalysis) string {
	text := fmt.Sprintf("Successfully analyzed document: %s\n", path)
	text += fmt.Sprintf("Analysis ID: %s\n", result.AnalysisID)
	text += fmt.Sprintf("Pages: %d\n", result.DocumentInfo.Pages)
	text += fmt.Sprintf("Language: %s\n", result.DocumentInfo.Language)
	text += fmt.Sprintf("Category: %s\n", result.DocumentInfo.Category)
	text += fmt.Sprintf("Confidence: %.2f\n", result.Confidence)
	text += fmt.Sprintf("Processing time: %s\n", result.ProcessingTime)

	text += fmt.Sprintf("\nForm fields (%d):\n", len(result.FormFields))
	for i, field := range result.FormFields {
		text += fmt.Sprintf("%d. %s [%s] page %d", i+1, field.Label, field.Type, field.Page)
		if field.Required {
			text += " (required)"
		}
		text += "\n"
	}

	text += fmt.Sprintf("\nQuestions (%d):\n", len(result.Questions))
	for i, question := range result.Questions {
		text += fmt.Sprintf("%d. %s [%s] page %d\n", i+1, question.Text, question.Type, question.Page)
	}

	text += fmt.Sprintf("\nSignature zones (%d):\n", len(result.Signatures))
	for i, zone := range result.Signatures {
		text += fmt.Sprintf("%d. %s page %d at (%.1f, %.1f)\n", i+1, zone.Label, zone.Page, zone.Position.X, zone.Position.Y)
	}

	if result.Summary != "" {
		text += fmt.Sprintf("\nSummary: %s\n", result.Summary)
	}
	if len(result.KeyInsights) > 0 {
		text += "\nKey insights:\n"
		for _, insight := range result.KeyInsights {
			text += fmt.Sprintf("  • %s\n", insight)
		}
	}
	if result.RiskAssessment != "" {
		text += fmt.Sprintf("\nRisk assessment: %s\n", result.RiskAssessment)
	}

	return text
}

func (s *Server) formatProcessResult(path string, result *pipeline.Result) string {
	text := fmt.Sprintf("Processed document: %s\n", path)
	text += fmt.Sprintf("Success: %t\n", result.Success)
	text += fmt.Sprintf("Processing time: %s\n", result.ProcessingTime)

	text += fmt.Sprintf("\nFilled fields (%d):\n", len(result.FilledFields))
	for i, field := range result.FilledFields {
		text += fmt.Sprintf("%d. %s = %s\n", i+1, field.Label, field.Value)
	}

	if len(result.AnsweredQuestions) > 0 {
		text += fmt.Sprintf("\nAnswered questions (%d):\n", len(result.AnsweredQuestions))
		for i, question := range result.AnsweredQuestions {
			text += fmt.Sprintf("%d. %s → %s\n", i+1, question.Text, question.Value)
		}
	}

	if len(result.Errors) > 0 {
		text += "\nValidation errors:\n"
		for _, e := range result.Errors {
			text += fmt.Sprintf("  ✗ %s\n", e)
		}
	}
	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range result.Warnings {
			text += fmt.Sprintf("  ⚠ %s\n", w)
		}
	}

	if result.SignedDocumentURI != "" {
		text += fmt.Sprintf("\nSigned document: %s\n", result.SignedDocumentURI)
	}

	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Output Directory: %s\n", s.config.OutputDir)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	if s.config.HasLLM() {
		text += fmt.Sprintf("🧠 Analysis provider: local LLM at %s (model %s, %s API)\n",
			s.config.LLMURL, s.config.LLMModel, s.config.LLMAPI)
	} else {
		text += "🧠 Analysis provider: heuristic (no LLM configured)\n"
	}
	text += fmt.Sprintf("✍️  Signing backend: %s\n\n", s.config.BackendURL)

	text += "🛠️  Available Tools:\n"
	text += "\n• document_analyze_file\n"
	text += "  Description: Analyze a document and detect form fields, questions and signature zones\n"
	text += "  Parameters: path (required)\n"
	text += "\n• document_process_file\n"
	text += "  Description: Run the full pipeline: analyze, fill, validate and submit for signing\n"
	text += "  Parameters: path (required), name, email, phone, userdata, signature\n"
	text += "\n• document_validate_file\n"
	text += "  Description: Validate that a file is a readable PDF document\n"
	text += "  Parameters: path (required)\n"
	text += "\n• docsigner_server_info\n"
	text += "  Description: Get server information, available tools and usage guidance\n"

	text += "\nSupported document types: pdf, docx, txt\n"
	text += "\nStart with document_analyze_file to inspect a document, then document_process_file to fill and sign it.\n"

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting document signing MCP server in stdio mode")
		log.Printf("Output directory: %s", s.config.OutputDir)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs library handles transports differently; only stdio
	// is wired for now.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
