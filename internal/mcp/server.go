// Package mcp exposes the screening pipeline over the Model Context Protocol
// so assistants can screen disclosure PDFs interactively.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/panshi-lab/odiscan/internal/config"
	"github.com/panshi-lab/odiscan/internal/descriptions"
	"github.com/panshi-lab/odiscan/internal/pdf"
	"github.com/panshi-lab/odiscan/internal/screening"
)

// shutdownTimeout bounds how long in-flight HTTP requests may run after a
// shutdown is requested.
const shutdownTimeout = 10 * time.Second

// Server wires the screening core and PDF service into an MCP server.
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	registry   *screening.Registry
	classifier *screening.Classifier
	extractor  *screening.Extractor
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, registry *screening.Registry, logger *slog.Logger) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool set is static
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		registry:   registry,
		classifier: screening.NewClassifier(registry),
		extractor:  screening.NewExtractor(registry),
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	screenFileTool := mcp.NewTool(
		"screen_file",
		mcp.WithDescription(descriptions.ScreenFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the disclosure PDF, absolute or relative to the corpus directory"),
		),
	)
	s.mcpServer.AddTool(screenFileTool, s.handleScreenFile)

	screenDirectoryTool := mcp.NewTool(
		"screen_directory",
		mcp.WithDescription(descriptions.ScreenDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory to screen (uses the corpus directory if empty)"),
		),
	)
	s.mcpServer.AddTool(screenDirectoryTool, s.handleScreenDirectory)

	classifyTextTool := mcp.NewTool(
		"classify_text",
		mcp.WithDescription(descriptions.ClassifyTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Announcement text to classify"),
		),
		mcp.WithString("file_name",
			mcp.Description("Original filename, used for metadata extraction"),
		),
	)
	s.mcpServer.AddTool(classifyTextTool, s.handleClassifyText)

	extractTextTool := mcp.NewTool(
		"extract_text",
		mcp.WithDescription(descriptions.ExtractTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Announcement text to extract from"),
		),
		mcp.WithString("file_name",
			mcp.Description("Original filename, used for metadata extraction"),
		),
		mcp.WithString("target_country",
			mcp.Description("Target country/region from a prior classification"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleExtractText)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.PDFValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithBoolean("deep",
			mcp.Description("Run a full structural validation instead of the quick check"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfStatsFileTool := mcp.NewTool(
		"pdf_stats_file",
		mcp.WithDescription(descriptions.PDFStatsFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfStatsFileTool, s.handlePDFStatsFile)

	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription(descriptions.PDFSearchDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses the corpus directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional fuzzy filename query"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)

	serverInfoTool := mcp.NewTool(
		"screening_server_info",
		mcp.WithDescription(descriptions.ScreeningServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleScreenFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.pdfService.NormalizePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	parsed, err := s.pdfService.PDFReadFile(pdf.ReadFileRequest{Path: resolved})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if parsed.Content == "" {
		text := fmt.Sprintf("Cannot screen %s: no extractable text (content type: %s).\n", parsed.Path, parsed.ContentType)
		text += "Scanned documents need OCR before rule screening; classify_text accepts OCR output directly."
		return mcp.NewToolResultText(text), nil
	}

	doc := screening.NewDocument(parsed.Content, parsed.Path)
	doc.Pages = parsed.Pages

	result := s.classifier.Classify(doc)
	responseText := s.formatClassification(parsed.Path, result)
	if result.IsODI {
		extraction := s.extractor.Extract(doc, result.TargetCountry)
		responseText += "\n" + s.formatExtraction(extraction)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleScreenDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	directory := s.config.PDFDirectory // default
	if dir := request.GetString("directory", ""); dir != "" {
		directory = dir
	}

	files, err := s.pdfService.FindPDFsInDirectory(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", directory)), nil
	}

	type verdict struct {
		name   string
		result screening.Result
		failed string
	}
	verdicts := make([]verdict, 0, len(files))
	odiCount := 0
	for _, file := range files {
		parsed, err := s.pdfService.PDFReadFile(pdf.ReadFileRequest{Path: file.Path})
		if err != nil {
			verdicts = append(verdicts, verdict{name: file.Name, failed: err.Error()})
			continue
		}
		if parsed.Content == "" {
			verdicts = append(verdicts, verdict{name: file.Name, failed: "no extractable text (" + parsed.ContentType + ")"})
			continue
		}
		result := s.classifier.Classify(screening.NewDocument(parsed.Content, file.Name))
		if result.IsODI {
			odiCount++
		}
		verdicts = append(verdicts, verdict{name: file.Name, result: result})
	}

	text := fmt.Sprintf("Screened %d PDF file(s) in %s: %d ODI, %d excluded\n\n", len(files), directory, odiCount, len(files)-odiCount)
	for _, v := range verdicts {
		switch {
		case v.failed != "":
			text += fmt.Sprintf("✗ %s - unreadable: %s\n", v.name, v.failed)
		case v.result.IsODI:
			text += fmt.Sprintf("✓ %s - ODI", v.name)
			if v.result.TargetCountry != "" {
				text += fmt.Sprintf(" (%s)", v.result.TargetCountry)
			}
			text += "\n"
		default:
			text += fmt.Sprintf("✗ %s - %s\n", v.name, exclusionSummary(v.result))
		}
	}
	text += "\nUse screen_file on any entry for the full decision trace and transaction record."

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleClassifyText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName := request.GetString("file_name", "")

	result := s.classifier.Classify(screening.NewDocument(text, fileName))
	label := fileName
	if label == "" {
		label = "(text)"
	}
	return mcp.NewToolResultText(s.formatClassification(label, result)), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName := request.GetString("file_name", "")
	targetCountry := request.GetString("target_country", "")

	extraction := s.extractor.Extract(screening.NewDocument(text, fileName), targetCountry)
	return mcp.NewToolResultText(s.formatExtraction(extraction)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := s.pdfService.NormalizePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.ValidateFileRequest{
		Path: resolved,
		Deep: request.GetBool("deep", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
		if result.Deep {
			responseText += fmt.Sprintf("\nPages: %d\nVersion: %s\nEncrypted: %t", result.Pages, result.Version, result.Encrypted)
		}
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := s.pdfService.NormalizePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFStatsFile(pdf.StatsFileRequest{Path: resolved})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatStatsFileResult(result)), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	directory := s.config.PDFDirectory // default
	if dir := request.GetString("directory", ""); dir != "" {
		directory = dir
	}

	result, err := s.pdfService.PDFSearchDirectory(pdf.SearchDirectoryRequest{
		Directory: directory,
		Query:     request.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("📋 %s v%s - ODI Screening Server\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Corpus Directory: %s\n", s.config.PDFDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	text += "📚 Rule Registry:\n"
	text += fmt.Sprintf("   Version: %s\n", s.registry.Version())
	text += fmt.Sprintf("   Exclusion categories: %d\n", len(s.registry.ExclusionCategories()))
	text += fmt.Sprintf("   Countries/regions: %d\n", len(s.registry.Countries()))
	if s.config.RulesFile != "" {
		text += fmt.Sprintf("   Rules file: %s\n", s.config.RulesFile)
	} else {
		text += "   Rules file: (built-in defaults)\n"
	}
	text += "\n"

	if files, err := s.pdfService.FindPDFsInDirectory(""); err == nil && len(files) > 0 {
		text += fmt.Sprintf("📂 Corpus Contents (%d PDF files found):\n", len(files))
		if stats, err := s.pdfService.PDFStatsDirectory(pdf.StatsDirectoryRequest{}); err == nil {
			text += fmt.Sprintf("   Total size: %d bytes (largest: %s)\n", stats.TotalSize, stats.LargestFileName)
		}
		for i, file := range files {
			if i >= 10 { // keep the listing readable
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Corpus Contents: No PDF files found in corpus directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range [][2]string{
		{"screen_file", "Screen one disclosure PDF and extract its transaction record"},
		{"screen_directory", "Screen every PDF under a directory and summarize verdicts"},
		{"classify_text", "Classify already-extracted announcement text"},
		{"extract_text", "Extract the transaction record from announcement text"},
		{"pdf_validate_file", "Check a PDF is structurally sound"},
		{"pdf_stats_file", "File size, pages and document metadata"},
		{"pdf_search_directory", "List PDFs, optionally filtered by filename query"},
		{"screening_server_info", "This summary"},
	} {
		text += fmt.Sprintf("• %s - %s\n", tool[0], tool[1])
	}

	text += "\nStart with screen_directory for an overview, then screen_file for the filings that matter."

	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatClassification(name string, result screening.Result) string {
	var text string
	if result.IsODI {
		text = fmt.Sprintf("Screening verdict for %s: ODI transaction\n", name)
		if result.TargetCountry != "" {
			text += fmt.Sprintf("Target country/region: %s\n", result.TargetCountry)
		}
	} else {
		text = fmt.Sprintf("Screening verdict for %s: not an ODI transaction\n", name)
		text += "Reason: " + exclusionSummary(result) + "\n"
		if result.TargetCountry != "" {
			text += fmt.Sprintf("Country/region mentioned: %s\n", result.TargetCountry)
		}
	}

	if len(result.Trace) > 0 {
		text += "\nDecision trace:\n"
		for _, step := range result.Trace {
			marker := "·"
			if step.Matched {
				marker = "✓"
			}
			text += fmt.Sprintf("  %s [%s]", marker, step.Stage)
			if step.Rule != "" {
				text += " " + step.Rule
			}
			if step.Evidence != "" {
				text += fmt.Sprintf(" (evidence: %s)", step.Evidence)
			}
			text += "\n"
		}
	}

	return text
}

func exclusionSummary(result screening.Result) string {
	switch {
	case result.ExclusionLabel != "":
		return fmt.Sprintf("%s [%s]", result.ExclusionLabel, result.ExclusionReason)
	case result.ExclusionReason != "":
		return result.ExclusionReason
	default:
		return result.Reason
	}
}

func (s *Server) formatExtraction(extraction screening.Extraction) string {
	text := "Transaction record:\n"
	for _, category := range screening.Categories() {
		text += fmt.Sprintf("\n【%s】\n", category)
		empty := 0
		for _, field := range screening.Fields(category) {
			value := extraction.Get(category, field)
			if value == "" {
				empty++
				continue
			}
			text += fmt.Sprintf("  %s: %s\n", field, value)
		}
		if empty > 0 {
			text += fmt.Sprintf("  (%d field(s) without matches)\n", empty)
		}
	}
	return text
}

func (s *Server) formatSearchDirectoryResult(result *pdf.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatStatsFileResult(result *pdf.StatsFileResult) string {
	text := "PDF File Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}
	if result.Subject != "" {
		text += fmt.Sprintf("Subject: %s\n", result.Subject)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		text += fmt.Sprintf("Created: %s\n", result.CreatedDate)
	}

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
		s.logger.Debug("mcp.stdio.start",
			"corpus", s.config.PDFDirectory,
			"rules_version", s.registry.Version(),
		)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over streamable HTTP until the context is
// canceled or the listener fails.
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	s.logger.Info("mcp.http.start", "addr", addr)

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		<-errCh // Start returns once the listener closes
		s.logger.Info("mcp.http.stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	}
}
