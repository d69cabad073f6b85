package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/docsigner/internal/analysis"
	"github.com/a3tai/docsigner/internal/config"
	"github.com/a3tai/docsigner/internal/extract"
	"github.com/a3tai/docsigner/internal/mcp"
	"github.com/a3tai/docsigner/internal/pipeline"
	"github.com/a3tai/docsigner/internal/reconcile"
	"github.com/a3tai/docsigner/internal/signing"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// buildPipeline wires the processing components from configuration
func buildPipeline(cfg *config.Config) (*analysis.Orchestrator, *pipeline.Processor, *extract.Service) {
	extractor := extract.NewService(cfg.MaxFileSize, cfg.IsDebug())

	providerCfg := analysis.ProviderConfig{
		Kind:       analysis.KindHeuristic,
		MaxTokens:  cfg.MaxTokens,
		MaxExcerpt: cfg.MaxExcerpt,
		Timeout:    cfg.LLMTimeout,
		Debug:      cfg.IsDebug(),
	}
	if cfg.HasLLM() {
		providerCfg.Kind = analysis.KindLocal
		providerCfg.Endpoint = cfg.LLMURL
		providerCfg.Model = cfg.LLMModel
		providerCfg.APIStyle = cfg.LLMAPI
	}
	chain := analysis.NewChain(providerCfg)

	orchestrator := analysis.NewOrchestrator(extractor, chain, cfg.IsDebug())
	backend := signing.NewClient(cfg.BackendURL, cfg.OutputDir, cfg.BackendTimeout, cfg.IsDebug())
	processor := pipeline.NewProcessor(orchestrator, backend, cfg.IsDebug())

	return orchestrator, processor, extractor
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) {
	// In stdio mode, the parent process controls our lifecycle
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

// runProcessMode runs the pipeline once on the configured document and
// prints the result as JSON
func runProcessMode(ctx context.Context, cfg *config.Config, processor *pipeline.Processor) {
	req := &pipeline.Request{
		DocumentPath: cfg.Document,
		Profile: reconcile.UserProfile{
			FullName: cfg.SignerName,
			Email:    cfg.SignerEmail,
			Phone:    cfg.SignerPhone,
		},
	}

	result, err := processor.ProcessDocument(ctx, req)
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && !cfg.IsStdioMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	orchestrator, processor, extractor := buildPipeline(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsProcessMode() {
		runProcessMode(ctx, cfg, processor)
		return
	}

	server, err := mcp.NewServer(cfg, orchestrator, processor, extractor)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, cancel, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("DocSigner\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
