// odiscan screens a directory of disclosure PDFs for overseas direct
// investment transactions and writes the results into an Excel workbook.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/panshi-lab/odiscan/internal/batch"
	"github.com/panshi-lab/odiscan/internal/config"
	"github.com/panshi-lab/odiscan/internal/llm"
	"github.com/panshi-lab/odiscan/internal/pdf"
	"github.com/panshi-lab/odiscan/internal/report"
	"github.com/panshi-lab/odiscan/internal/screening"
)

// summaryRounding keeps the printed duration readable.
const summaryRounding = 10 * time.Millisecond

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// parseLogLevel maps the configured level name to a slog level, defaulting
// to info for unknown names.
func parseLogLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

// loadRegistry builds the rule registry, overlaying a rules file when one is
// configured.
func loadRegistry(cfg *config.Config) (*screening.Registry, error) {
	if cfg.RulesFile == "" {
		return screening.DefaultRegistry(), nil
	}
	return screening.LoadRegistryFile(cfg.RulesFile)
}

// buildExtractor selects the pipeline extractor: the rule extractor alone, or
// the LLM hybrid in front of it when LLM extraction is enabled.
func buildExtractor(cfg *config.Config, registry *screening.Registry, logger *slog.Logger) (batch.Extractor, error) {
	rules := screening.NewExtractor(registry)
	if !cfg.LLM.Enabled {
		return batch.NewRuleExtractor(rules), nil
	}

	client, err := llm.NewClient(llm.Config{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		Timeout:      cfg.LLM.Timeout,
		Retries:      cfg.LLM.Retries,
		RetryDelay:   cfg.LLM.RetryDelay,
		RateLimit:    cfg.LLM.RateLimit,
		CacheDir:     cfg.LLM.CacheDir,
		CacheEnabled: cfg.LLM.CacheEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	return llm.NewHybridExtractor(client, rules, nil, cfg.LLM.RuleFallback, logger), nil
}

func run() error {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load screening rules: %w", err)
	}
	logger.Info("rules.loaded",
		"version", registry.Version(),
		"exclusions", len(registry.ExclusionCategories()),
		"countries", len(registry.Countries()),
	)

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory)
	if err != nil {
		return fmt.Errorf("create PDF service: %w", err)
	}

	extractor, err := buildExtractor(cfg, registry, logger)
	if err != nil {
		return err
	}

	exporter := report.NewExporter(cfg.OutputDirectory, cfg.WorkbookName, logger)
	runner := batch.NewRunner(
		pdfService,
		pdfService,
		screening.NewClassifier(registry),
		extractor,
		exporter,
		cfg.Workers,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, cfg.PDFDirectory)
	if err != nil {
		return err
	}

	fmt.Printf("Screened %d PDF file(s) in %s\n", summary.TotalFiles, summary.Duration.Round(summaryRounding))
	fmt.Printf("  ODI transactions: %d\n", summary.ODICount)
	fmt.Printf("  Excluded:         %d (%d unreadable)\n", summary.ExcludedCount, summary.ParseFailures)
	fmt.Printf("  Workbook:         %s\n", summary.WorkbookPath)
	if hybrid, ok := extractor.(*llm.HybridExtractor); ok {
		stats := hybrid.Stats()
		fmt.Printf("  LLM extraction:   %d succeeded, %d fell back to rules, %d fields backfilled\n",
			stats.LLMSuccess, stats.RuleUsed, stats.LLMFallback)
	}
	return nil
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "odiscan: %v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("odiscan - ODI disclosure screening\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
