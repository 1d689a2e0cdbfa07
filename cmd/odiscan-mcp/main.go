// odiscan-mcp serves the ODI screening tools over the Model Context Protocol,
// in stdio mode for editor/assistant integration or as an HTTP server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/panshi-lab/odiscan/internal/config"
	"github.com/panshi-lab/odiscan/internal/mcp"
	"github.com/panshi-lab/odiscan/internal/pdf"
	"github.com/panshi-lab/odiscan/internal/screening"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

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

// setupLogging configures logging based on the server mode. In stdio mode
// everything goes to stderr so the protocol stream stays clean, and is
// silenced entirely unless debug is enabled.
func setupLogging(cfg *config.Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		w = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *slog.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("server.shutdown.signal", "signal", sig.String())
		cancel()

		if err := <-serverErrCh; err != nil {
			logger.Error("server.shutdown.error", "error", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server.error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server.stopped")
}

// runStdioMode handles stdio mode execution. The parent process controls the
// lifecycle; exit cleanly when stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server, logger *slog.Logger) {
	if err := server.Run(ctx); err != nil {
		logger.Error("server.error", "error", err)
		os.Exit(1)
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
		fmt.Fprintf(os.Stderr, "odiscan-mcp: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		logger.Debug("config.loaded", "config", cfg.String())
	}

	registry := screening.DefaultRegistry()
	if cfg.RulesFile != "" {
		registry, err = screening.LoadRegistryFile(cfg.RulesFile)
		if err != nil {
			logger.Error("rules.load.failed", "file", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory)
	if err != nil {
		logger.Error("pdf.service.failed", "error", err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(cfg, pdfService, registry, logger)
	if err != nil {
		logger.Error("mcp.server.failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("odiscan-mcp - ODI screening MCP server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
