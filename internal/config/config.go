package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants for the MCP binary
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultWorkers      = 4
	DefaultWorkbookName = "ODI交易信息汇总.xlsx"

	// LLM defaults target a GLM-4 style OpenAI-compatible endpoint
	DefaultLLMBaseURL     = "https://open.bigmodel.cn/api/paas/v4"
	DefaultLLMModel       = "glm-4"
	DefaultLLMTemperature = 0.1
	DefaultLLMMaxTokens   = 4000
	DefaultLLMTimeout     = 60 * time.Second
	DefaultLLMRetries     = 3
	DefaultLLMRetryDelay  = 2 * time.Second
	DefaultLLMRateLimit   = 0.5 // requests per second

	// Directory permissions
	DefaultDirPerm = 0o750
)

// LLMConfig holds the settings for the optional LLM-assisted extraction.
type LLMConfig struct {
	Enabled      bool
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	Retries      int
	RetryDelay   time.Duration
	RateLimit    float64 // requests per second
	CacheDir     string
	CacheEnabled bool
	RuleFallback bool
}

// Config holds all configuration for the ODI screening binaries
type Config struct {
	// Server configuration (MCP binary only)
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Screening configuration
	PDFDirectory    string
	OutputDirectory string
	WorkbookName    string
	RulesFile       string
	Workers         int

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// LLM-assisted extraction
	LLM LLMConfig
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		PDFDirectory:    currentDir,
		OutputDirectory: filepath.Join(currentDir, "output"),
		WorkbookName:    DefaultWorkbookName,
		RulesFile:       "",
		Workers:         DefaultWorkers,
		Version:         "1.0.0",
		ServerName:      "odiscan",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
		LLM: LLMConfig{
			Enabled:      false,
			BaseURL:      DefaultLLMBaseURL,
			APIKey:       "",
			Model:        DefaultLLMModel,
			Temperature:  DefaultLLMTemperature,
			MaxTokens:    DefaultLLMMaxTokens,
			Timeout:      DefaultLLMTimeout,
			Retries:      DefaultLLMRetries,
			RetryDelay:   DefaultLLMRetryDelay,
			RateLimit:    DefaultLLMRateLimit,
			CacheDir:     filepath.Join(currentDir, "cache", "llm"),
			CacheEnabled: true,
			RuleFallback: true,
		},
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("ODISCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("pdf-dir", cfg.PDFDirectory)
	viper.SetDefault("output-dir", cfg.OutputDirectory)
	viper.SetDefault("workbook", cfg.WorkbookName)
	viper.SetDefault("rules-file", cfg.RulesFile)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)

	viper.SetDefault("llm", cfg.LLM.Enabled)
	viper.SetDefault("llm-base-url", cfg.LLM.BaseURL)
	viper.SetDefault("llm-api-key", cfg.LLM.APIKey)
	viper.SetDefault("llm-model", cfg.LLM.Model)
	viper.SetDefault("llm-temperature", cfg.LLM.Temperature)
	viper.SetDefault("llm-max-tokens", cfg.LLM.MaxTokens)
	viper.SetDefault("llm-timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm-retries", cfg.LLM.Retries)
	viper.SetDefault("llm-retry-delay", cfg.LLM.RetryDelay)
	viper.SetDefault("llm-rate-limit", cfg.LLM.RateLimit)
	viper.SetDefault("llm-cache-dir", cfg.LLM.CacheDir)
	viper.SetDefault("llm-cache", cfg.LLM.CacheEnabled)
	viper.SetDefault("llm-rule-fallback", cfg.LLM.RuleFallback)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.StringP("pdf-dir", "d", cfg.PDFDirectory, "Directory containing disclosure PDF files")
	pflag.StringP("output-dir", "o", cfg.OutputDirectory, "Directory for the generated workbook")
	pflag.String("workbook", cfg.WorkbookName, "File name of the generated Excel workbook")
	pflag.String("rules-file", cfg.RulesFile, "JSON rule file overlaying the built-in screening rules")
	pflag.Int("workers", cfg.Workers, "Number of concurrent document workers in batch runs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")

	pflag.Bool("llm", cfg.LLM.Enabled, "Enable LLM-assisted extraction with rule fallback")
	pflag.String("llm-base-url", cfg.LLM.BaseURL, "OpenAI-compatible chat completions base URL")
	pflag.String("llm-api-key", cfg.LLM.APIKey, "API key for the LLM endpoint")
	pflag.String("llm-model", cfg.LLM.Model, "Model name for the LLM endpoint")
	pflag.Float64("llm-temperature", cfg.LLM.Temperature, "Sampling temperature for extraction calls")
	pflag.Int("llm-max-tokens", cfg.LLM.MaxTokens, "Maximum completion tokens per extraction call")
	pflag.Duration("llm-timeout", cfg.LLM.Timeout, "HTTP timeout per LLM request")
	pflag.Int("llm-retries", cfg.LLM.Retries, "Retry attempts per LLM request")
	pflag.Duration("llm-retry-delay", cfg.LLM.RetryDelay, "Initial backoff between LLM retries")
	pflag.Float64("llm-rate-limit", cfg.LLM.RateLimit, "Maximum LLM requests per second")
	pflag.String("llm-cache-dir", cfg.LLM.CacheDir, "Directory for cached LLM responses")
	pflag.Bool("llm-cache", cfg.LLM.CacheEnabled, "Cache LLM responses on disk")
	pflag.Bool("llm-rule-fallback", cfg.LLM.RuleFallback, "Backfill empty LLM fields from the rule extractor")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{
		"mode", "host", "port", "pdf-dir", "output-dir", "workbook",
		"rules-file", "workers", "loglevel", "maxfilesize",
		"llm", "llm-base-url", "llm-api-key", "llm-model", "llm-temperature",
		"llm-max-tokens", "llm-timeout", "llm-retries", "llm-retry-delay",
		"llm-rate-limit", "llm-cache-dir", "llm-cache", "llm-rule-fallback",
	} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nodiscan - rule-based screening of overseas direct investment disclosures\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --pdf-dir=/data/disclosures                 # screen a directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d /data/disclosures -o /data/reports       # custom output directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --rules-file=rules.json --workers=8         # tuned rules, more workers\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --llm --llm-api-key=...                     # LLM-first extraction\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_PDF_DIR      PDF directory\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_OUTPUT_DIR   Output directory\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_RULES_FILE   Rule file path\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_WORKERS      Worker count\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  ODISCAN_LLM_API_KEY  LLM API key\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("pdf-dir")
	cfg.OutputDirectory = viper.GetString("output-dir")
	cfg.WorkbookName = viper.GetString("workbook")
	cfg.RulesFile = viper.GetString("rules-file")
	cfg.Workers = viper.GetInt("workers")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")

	cfg.LLM.Enabled = viper.GetBool("llm")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.Model = viper.GetString("llm-model")
	cfg.LLM.Temperature = viper.GetFloat64("llm-temperature")
	cfg.LLM.MaxTokens = viper.GetInt("llm-max-tokens")
	cfg.LLM.Timeout = viper.GetDuration("llm-timeout")
	cfg.LLM.Retries = viper.GetInt("llm-retries")
	cfg.LLM.RetryDelay = viper.GetDuration("llm-retry-delay")
	cfg.LLM.RateLimit = viper.GetFloat64("llm-rate-limit")
	cfg.LLM.CacheDir = viper.GetString("llm-cache-dir")
	cfg.LLM.CacheEnabled = viper.GetBool("llm-cache")
	cfg.LLM.RuleFallback = viper.GetBool("llm-rule-fallback")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate output directory
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.WorkbookName == "" {
		return errors.New("workbook name cannot be empty")
	}

	// Validate worker count
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return c.validateLLM()
}

// validateLLM checks the LLM settings when the assisted path is enabled.
func (c *Config) validateLLM() error {
	if !c.LLM.Enabled {
		return nil
	}

	if c.LLM.APIKey == "" {
		return errors.New("LLM extraction requires an API key")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("LLM base URL cannot be empty")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("LLM temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("LLM max tokens must be positive")
	}
	if c.LLM.Retries < 1 {
		return errors.New("LLM retries must be at least 1")
	}
	if c.LLM.RateLimit <= 0 {
		return errors.New("LLM rate limit must be positive")
	}
	if c.LLM.CacheEnabled && c.LLM.CacheDir == "" {
		return errors.New("LLM cache directory cannot be empty when caching is enabled")
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkbookPath returns the full path of the generated workbook
func (c *Config) WorkbookPath() string {
	return filepath.Join(c.OutputDirectory, c.WorkbookName)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, OutputDirectory: %s, RulesFile: %s, Workers: %d, LogLevel: %s, MaxFileSize: %d, LLM: %t}",
		c.Mode, c.PDFDirectory, c.OutputDirectory, c.RulesFile, c.Workers, c.LogLevel, c.MaxFileSize, c.LLM.Enabled)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
