package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio   = "stdio"
	ModeServer  = "server"
	ModeProcess = "process"

	// LLM API style constants
	APIStyleGenerate = "generate"
	APIStyleChat     = "chat"

	// Default values
	DefaultLLMModel       = "llama3.2"
	DefaultMaxTokens      = 2048
	DefaultMaxExcerpt     = 8000
	DefaultLLMTimeout     = 15 * time.Second
	DefaultBackendTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the document signing pipeline
type Config struct {
	// Run mode: "stdio" for MCP standard I/O, "server" (reserved),
	// or "process" for a one-shot pipeline run
	Mode string

	// LLM provider configuration. An empty LLMURL permanently selects
	// the heuristic analysis tier.
	LLMURL     string
	LLMModel   string
	LLMAPI     string // "generate" (ollama-style) or "chat" (openai-style)
	MaxTokens  int
	MaxExcerpt int
	LLMTimeout time.Duration

	// Signing backend configuration
	BackendURL     string
	BackendTimeout time.Duration

	// Output directory for signed and fallback documents
	OutputDir string

	// Process-mode inputs: the document to run through the pipeline and
	// the signer identity used for field reconciliation
	Document    string
	SignerName  string
	SignerEmail string
	SignerPhone string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio,
		LLMURL:         "",
		LLMModel:       DefaultLLMModel,
		LLMAPI:         APIStyleGenerate,
		MaxTokens:      DefaultMaxTokens,
		MaxExcerpt:     DefaultMaxExcerpt,
		LLMTimeout:     DefaultLLMTimeout,
		BackendURL:     "http://127.0.0.1:3000",
		BackendTimeout: DefaultBackendTimeout,
		OutputDir:      currentDir,
		Version:        "1.0.0",
		ServerName:     "docsigner",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.OutputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("DOCSIGNER")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("llmurl", cfg.LLMURL)
	viper.SetDefault("llmmodel", cfg.LLMModel)
	viper.SetDefault("llmapi", cfg.LLMAPI)
	viper.SetDefault("maxtokens", cfg.MaxTokens)
	viper.SetDefault("maxexcerpt", cfg.MaxExcerpt)
	viper.SetDefault("llmtimeout", cfg.LLMTimeout)
	viper.SetDefault("backendurl", cfg.BackendURL)
	viper.SetDefault("backendtimeout", cfg.BackendTimeout)
	viper.SetDefault("outputdir", cfg.OutputDir)
	viper.SetDefault("document", cfg.Document)
	viper.SetDefault("signername", cfg.SignerName)
	viper.SetDefault("signeremail", cfg.SignerEmail)
	viper.SetDefault("signerphone", cfg.SignerPhone)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'process' for a one-shot pipeline run")
	pflag.String("llmurl", cfg.LLMURL, "Base URL of the local LLM endpoint (empty selects the heuristic analyzer)")
	pflag.String("llmmodel", cfg.LLMModel, "Model name sent to the LLM endpoint")
	pflag.String("llmapi", cfg.LLMAPI, "LLM API style: 'generate' (ollama) or 'chat' (openai-compatible)")
	pflag.Int("maxtokens", cfg.MaxTokens, "Maximum tokens requested from the LLM")
	pflag.Int("maxexcerpt", cfg.MaxExcerpt, "Maximum document characters submitted to the LLM")
	pflag.Duration("llmtimeout", cfg.LLMTimeout, "Timeout for a single LLM call")
	pflag.String("backendurl", cfg.BackendURL, "Base URL of the signing backend")
	pflag.Duration("backendtimeout", cfg.BackendTimeout, "Timeout for signing backend calls")
	pflag.String("outputdir", cfg.OutputDir, "Directory for signed and fallback documents")
	pflag.String("document", cfg.Document, "Document to process (process mode)")
	pflag.String("signername", cfg.SignerName, "Signer full name used for reconciliation")
	pflag.String("signeremail", cfg.SignerEmail, "Signer email address used for reconciliation")
	pflag.String("signerphone", cfg.SignerPhone, "Signer phone number used for reconciliation")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("llmurl", pflag.Lookup("llmurl"))
	_ = viper.BindPFlag("llmmodel", pflag.Lookup("llmmodel"))
	_ = viper.BindPFlag("llmapi", pflag.Lookup("llmapi"))
	_ = viper.BindPFlag("maxtokens", pflag.Lookup("maxtokens"))
	_ = viper.BindPFlag("maxexcerpt", pflag.Lookup("maxexcerpt"))
	_ = viper.BindPFlag("llmtimeout", pflag.Lookup("llmtimeout"))
	_ = viper.BindPFlag("backendurl", pflag.Lookup("backendurl"))
	_ = viper.BindPFlag("backendtimeout", pflag.Lookup("backendtimeout"))
	_ = viper.BindPFlag("outputdir", pflag.Lookup("outputdir"))
	_ = viper.BindPFlag("document", pflag.Lookup("document"))
	_ = viper.BindPFlag("signername", pflag.Lookup("signername"))
	_ = viper.BindPFlag("signeremail", pflag.Lookup("signeremail"))
	_ = viper.BindPFlag("signerphone", pflag.Lookup("signerphone"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDocSigner - document analysis and signing pipeline\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio MCP mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --llmurl=http://127.0.0.1:11434          # stdio mode with a local LLM\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=process --document=form.pdf       # one-shot pipeline run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_MODE           Run mode\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_LLMURL         LLM base URL\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_LLMMODEL       LLM model name\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_LLMAPI         LLM API style (generate|chat)\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_MAXTOKENS      LLM token budget\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_BACKENDURL     Signing backend base URL\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_OUTPUTDIR      Output directory\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  DOCSIGNER_MAXFILESIZE    Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.LLMURL = viper.GetString("llmurl")
	cfg.LLMModel = viper.GetString("llmmodel")
	cfg.LLMAPI = viper.GetString("llmapi")
	cfg.MaxTokens = viper.GetInt("maxtokens")
	cfg.MaxExcerpt = viper.GetInt("maxexcerpt")
	cfg.LLMTimeout = viper.GetDuration("llmtimeout")
	cfg.BackendURL = viper.GetString("backendurl")
	cfg.BackendTimeout = viper.GetDuration("backendtimeout")
	cfg.OutputDir = viper.GetString("outputdir")
	cfg.Document = viper.GetString("document")
	cfg.SignerName = viper.GetString("signername")
	cfg.SignerEmail = viper.GetString("signeremail")
	cfg.SignerPhone = viper.GetString("signerphone")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer && c.Mode != ModeProcess {
		return errors.New("mode must be one of 'stdio', 'server', 'process'")
	}

	if c.LLMAPI != APIStyleGenerate && c.LLMAPI != APIStyleChat {
		return errors.New("llmapi must be either 'generate' or 'chat'")
	}

	if c.MaxTokens <= 0 {
		return errors.New("maxtokens must be positive")
	}

	if c.MaxExcerpt <= 0 {
		return errors.New("maxexcerpt must be positive")
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Create the output directory if it doesn't exist
	if _, err := os.Stat(c.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDir, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Mode == ModeProcess && c.Document == "" {
		return errors.New("process mode requires --document")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// HasLLM returns true if a local LLM endpoint is configured
func (c *Config) HasLLM() bool {
	return c.LLMURL != ""
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, LLMURL: %s, LLMModel: %s, LLMAPI: %s, BackendURL: %s, OutputDir: %s, LogLevel: %s}",
		c.Mode, c.LLMURL, c.LLMModel, c.LLMAPI, c.BackendURL, c.OutputDir, c.LogLevel)
}

// IsServerMode returns true if running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsProcessMode returns true if running a one-shot pipeline invocation
func (c *Config) IsProcessMode() bool {
	return c.Mode == ModeProcess
}
