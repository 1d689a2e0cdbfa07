// Package batch runs the end-to-end screening pipeline: scan a directory for
// disclosure PDFs, parse them, classify each one, extract transaction records
// from the ODI hits and export everything into a single workbook.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/panshi-lab/odiscan/internal/pdf"
	"github.com/panshi-lab/odiscan/internal/report"
	"github.com/panshi-lab/odiscan/internal/screening"
)

// Report-facing exclusion labels for documents that never reach the
// classifier's own exclusion vocabulary.
const (
	labelParseFailure    = "PDF解析失败"
	labelNoText          = "无可提取文本（疑似扫描件）"
	labelNoOverseasHints = "未发现境外标识或目标国家"
)

// Scanner lists the PDF files under a directory.
// *pdf.Service satisfies it.
type Scanner interface {
	FindPDFsInDirectory(directory string) ([]pdf.FileInfo, error)
}

// Parser extracts text from one PDF file.
// *pdf.Service satisfies it.
type Parser interface {
	PDFReadFile(req pdf.ReadFileRequest) (*pdf.ReadFileResult, error)
}

// Classifier decides whether a document is an overseas direct investment.
// *screening.Classifier satisfies it.
type Classifier interface {
	Classify(doc screening.Document) screening.Result
}

// Extractor produces a transaction record for a classified document. Both the
// rule extractor (via NewRuleExtractor) and the LLM hybrid extractor plug in
// here.
type Extractor interface {
	Extract(ctx context.Context, doc screening.Document, result screening.Result) screening.Extraction
}

// Exporter writes the final workbook.
// *report.Exporter satisfies it.
type Exporter interface {
	Export(odi []screening.Extraction, excluded []report.ExcludedFile) (string, error)
}

type ruleExtractor struct {
	rules *screening.Extractor
}

func (r ruleExtractor) Extract(_ context.Context, doc screening.Document, result screening.Result) screening.Extraction {
	return r.rules.Extract(doc, result.TargetCountry)
}

// NewRuleExtractor adapts the rule-based extractor to the pipeline interface.
func NewRuleExtractor(rules *screening.Extractor) Extractor {
	return ruleExtractor{rules: rules}
}

// Summary reports what one pipeline run did.
type Summary struct {
	RunID         string        `json:"run_id"`
	TotalFiles    int           `json:"total_files"`
	ODICount      int           `json:"odi_count"`
	ExcludedCount int           `json:"excluded_count"`
	ParseFailures int           `json:"parse_failures"`
	WorkbookPath  string        `json:"workbook_path"`
	Duration      time.Duration `json:"duration"`
}

// Runner executes the screening pipeline with a bounded worker pool.
type Runner struct {
	scanner    Scanner
	parser     Parser
	classifier Classifier
	extractor  Extractor
	exporter   Exporter
	workers    int
	logger     *slog.Logger
}

// NewRunner assembles a pipeline. workers <= 0 selects a single worker.
func NewRunner(scanner Scanner, parser Parser, classifier Classifier, extractor Extractor, exporter Exporter, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		scanner:    scanner,
		parser:     parser,
		classifier: classifier,
		extractor:  extractor,
		exporter:   exporter,
		workers:    workers,
		logger:     logger,
	}
}

// outcome is the per-file result. Exactly one of extraction / excluded is set.
type outcome struct {
	fileName   string
	extraction screening.Extraction
	excluded   *report.ExcludedFile
	parseFail  bool
}

// Run screens every PDF under directory and writes the workbook. Results are
// ordered by filename so repeated runs over the same corpus produce identical
// workbooks.
func (r *Runner) Run(ctx context.Context, directory string) (*Summary, error) {
	runID := uuid.NewString()
	start := time.Now()
	logger := r.logger.With("run_id", runID)

	files, err := r.scanner.FindPDFsInDirectory(directory)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	logger.Info("batch.scan.ok", "directory", directory, "files", len(files))

	outcomes := make([]outcome, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.screenFile(ctx, logger, files[i])
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].fileName < outcomes[j].fileName
	})

	summary := &Summary{RunID: runID, TotalFiles: len(files)}
	var odi []screening.Extraction
	var excluded []report.ExcludedFile
	for _, out := range outcomes {
		switch {
		case out.extraction != nil:
			odi = append(odi, out.extraction)
			summary.ODICount++
		case out.excluded != nil:
			excluded = append(excluded, *out.excluded)
			summary.ExcludedCount++
			if out.parseFail {
				summary.ParseFailures++
			}
		}
	}

	path, err := r.exporter.Export(odi, excluded)
	if err != nil {
		return nil, fmt.Errorf("export workbook: %w", err)
	}
	summary.WorkbookPath = path
	summary.Duration = time.Since(start)

	logger.Info("batch.run.ok",
		"total", summary.TotalFiles,
		"odi", summary.ODICount,
		"excluded", summary.ExcludedCount,
		"parse_failures", summary.ParseFailures,
		"workbook", summary.WorkbookPath,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (r *Runner) screenFile(ctx context.Context, logger *slog.Logger, file pdf.FileInfo) outcome {
	parsed, err := r.parser.PDFReadFile(pdf.ReadFileRequest{Path: file.Path})
	if err != nil {
		logger.Warn("batch.parse.failed", "file", file.Name, "error", err)
		return outcome{
			fileName:  file.Name,
			excluded:  &report.ExcludedFile{FileName: file.Name, Reason: labelParseFailure, Note: err.Error()},
			parseFail: true,
		}
	}
	if parsed.Content == "" {
		logger.Warn("batch.parse.empty", "file", file.Name, "content_type", parsed.ContentType)
		return outcome{
			fileName:  file.Name,
			excluded:  &report.ExcludedFile{FileName: file.Name, Reason: labelNoText, Note: parsed.ContentType},
			parseFail: true,
		}
	}

	doc := screening.NewDocument(parsed.Content, file.Name)
	doc.Pages = parsed.Pages

	result := r.classifier.Classify(doc)
	if !result.IsODI {
		logger.Debug("batch.classify.excluded",
			"file", file.Name,
			"reason", result.Reason,
			"exclusion", result.ExclusionReason,
		)
		return outcome{fileName: file.Name, excluded: excludedRow(file.Name, result)}
	}

	logger.Debug("batch.classify.odi", "file", file.Name, "country", result.TargetCountry)
	return outcome{fileName: file.Name, extraction: r.extractor.Extract(ctx, doc, result)}
}

// excludedRow renders a classifier rejection as a report row. The Chinese
// label carries the reviewer-facing reason; the note keeps the stable tag and
// any country that was still found.
func excludedRow(fileName string, result screening.Result) *report.ExcludedFile {
	row := &report.ExcludedFile{FileName: fileName}
	switch {
	case result.ExclusionLabel != "":
		row.Reason = result.ExclusionLabel
		row.Note = result.ExclusionReason
	case result.Reason == screening.ReasonNoOverseasMarker:
		row.Reason = labelNoOverseasHints
	default:
		row.Reason = result.Reason
	}
	if result.TargetCountry != "" {
		if row.Note != "" {
			row.Note += "；"
		}
		row.Note += "涉及国家/地区：" + result.TargetCountry
	}
	return row
}
