package batch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panshi-lab/odiscan/internal/pdf"
	"github.com/panshi-lab/odiscan/internal/report"
	"github.com/panshi-lab/odiscan/internal/screening"
)

type fakeScanner struct {
	files []pdf.FileInfo
	err   error
}

func (f fakeScanner) FindPDFsInDirectory(string) ([]pdf.FileInfo, error) {
	return f.files, f.err
}

// fakeParser maps file path to content. A "fail" content triggers a parse
// error, "scanned" an empty extraction.
type fakeParser struct {
	content map[string]string
	calls   atomic.Int32
}

func (f *fakeParser) PDFReadFile(req pdf.ReadFileRequest) (*pdf.ReadFileResult, error) {
	f.calls.Add(1)
	content := f.content[req.Path]
	switch content {
	case "fail":
		return nil, errors.New("corrupt xref table")
	case "scanned":
		return &pdf.ReadFileResult{Path: req.Path, Pages: 3, ContentType: pdf.ContentTypeScanned}, nil
	default:
		return &pdf.ReadFileResult{Path: req.Path, Content: content, Pages: 1, ContentType: pdf.ContentTypeText}, nil
	}
}

// fakeClassifier marks documents mentioning 越南 as ODI hits and everything
// else as lacking overseas markers.
type fakeClassifier struct{}

func (fakeClassifier) Classify(doc screening.Document) screening.Result {
	if strings.Contains(doc.Text, "越南") {
		return screening.Result{IsODI: true, TargetCountry: "越南"}
	}
	if strings.Contains(doc.Text, "药品") {
		return screening.Result{
			ExclusionReason: "drug-registration",
			ExclusionLabel:  "药品注册类公告",
		}
	}
	return screening.Result{Reason: screening.ReasonNoOverseasMarker}
}

type fakeExtractor struct {
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, doc screening.Document, result screening.Result) screening.Extraction {
	f.calls.Add(1)
	ex := screening.NewExtraction()
	ex.Set(screening.CategoryBasicInfo, screening.FieldFileName, doc.FileName)
	ex.Set(screening.CategoryBasicInfo, screening.FieldTargetCountry, result.TargetCountry)
	return ex
}

type capturingExporter struct {
	odi      []screening.Extraction
	excluded []report.ExcludedFile
	err      error
}

func (c *capturingExporter) Export(odi []screening.Extraction, excluded []report.ExcludedFile) (string, error) {
	c.odi = odi
	c.excluded = excluded
	if c.err != nil {
		return "", c.err
	}
	return "/tmp/out/report.xlsx", nil
}

func corpusFiles() []pdf.FileInfo {
	return []pdf.FileInfo{
		{Path: "/corpus/c.pdf", Name: "c.pdf"},
		{Path: "/corpus/a.pdf", Name: "a.pdf"},
		{Path: "/corpus/b.pdf", Name: "b.pdf"},
		{Path: "/corpus/d.pdf", Name: "d.pdf"},
		{Path: "/corpus/e.pdf", Name: "e.pdf"},
	}
}

func corpusParser() *fakeParser {
	return &fakeParser{content: map[string]string{
		"/corpus/c.pdf": "公司拟在越南设立子公司",
		"/corpus/a.pdf": "公司发布药品注册进展公告",
		"/corpus/b.pdf": "fail",
		"/corpus/d.pdf": "scanned",
		"/corpus/e.pdf": "关于收购越南工厂的公告",
	}}
}

func TestRunnerRun(t *testing.T) {
	extractor := &fakeExtractor{}
	exporter := &capturingExporter{}
	r := NewRunner(fakeScanner{files: corpusFiles()}, corpusParser(), fakeClassifier{}, extractor, exporter, 3, nil)

	summary, err := r.Run(context.Background(), "/corpus")
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 5, summary.TotalFiles)
	assert.Equal(t, 2, summary.ODICount)
	assert.Equal(t, 3, summary.ExcludedCount)
	// b.pdf errors out and d.pdf yields no text; both count as parse failures.
	assert.Equal(t, 2, summary.ParseFailures)
	assert.Equal(t, "/tmp/out/report.xlsx", summary.WorkbookPath)
	assert.Equal(t, int32(2), extractor.calls.Load())

	// Ordered by filename regardless of worker scheduling.
	require.Len(t, exporter.odi, 2)
	assert.Equal(t, "c.pdf", exporter.odi[0].Get(screening.CategoryBasicInfo, screening.FieldFileName))
	assert.Equal(t, "e.pdf", exporter.odi[1].Get(screening.CategoryBasicInfo, screening.FieldFileName))

	require.Len(t, exporter.excluded, 3)
	assert.Equal(t, "a.pdf", exporter.excluded[0].FileName)
	assert.Equal(t, "药品注册类公告", exporter.excluded[0].Reason)
	assert.Equal(t, "drug-registration", exporter.excluded[0].Note)
	assert.Equal(t, "b.pdf", exporter.excluded[1].FileName)
	assert.Equal(t, labelParseFailure, exporter.excluded[1].Reason)
	assert.Contains(t, exporter.excluded[1].Note, "corrupt xref")
	assert.Equal(t, "d.pdf", exporter.excluded[2].FileName)
	assert.Equal(t, labelNoText, exporter.excluded[2].Reason)
}

func TestRunnerScanError(t *testing.T) {
	r := NewRunner(fakeScanner{err: errors.New("no such directory")}, &fakeParser{}, fakeClassifier{}, &fakeExtractor{}, &capturingExporter{}, 1, nil)

	_, err := r.Run(context.Background(), "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan directory")
}

func TestRunnerExportError(t *testing.T) {
	exporter := &capturingExporter{err: errors.New("disk full")}
	r := NewRunner(fakeScanner{files: corpusFiles()}, corpusParser(), fakeClassifier{}, &fakeExtractor{}, exporter, 2, nil)

	_, err := r.Run(context.Background(), "/corpus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export workbook")
}

func TestRunnerEmptyDirectory(t *testing.T) {
	exporter := &capturingExporter{}
	r := NewRunner(fakeScanner{}, &fakeParser{}, fakeClassifier{}, &fakeExtractor{}, exporter, 2, nil)

	summary, err := r.Run(context.Background(), "/corpus")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalFiles)
	assert.Empty(t, exporter.odi)
	assert.Empty(t, exporter.excluded)
}

func TestRunnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(fakeScanner{files: corpusFiles()}, corpusParser(), fakeClassifier{}, &fakeExtractor{}, &capturingExporter{}, 1, nil)
	_, err := r.Run(ctx, "/corpus")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunnerExcludedRowCarriesCountry(t *testing.T) {
	row := excludedRow("x.pdf", screening.Result{
		ExclusionReason: "drug-registration",
		ExclusionLabel:  "药品注册类公告",
		TargetCountry:   "德国",
	})
	assert.Equal(t, "药品注册类公告", row.Reason)
	assert.Contains(t, row.Note, "drug-registration")
	assert.Contains(t, row.Note, "德国")
}

func TestRuleExtractorAdapter(t *testing.T) {
	rules := screening.NewExtractor(screening.DefaultRegistry())
	adapter := NewRuleExtractor(rules)

	doc := screening.NewDocument("公司拟收购境外子公司", "600000_浦发银行_2024-03-01_公告.pdf")
	ex := adapter.Extract(context.Background(), doc, screening.Result{IsODI: true})
	assert.Equal(t, "600000", ex.Get(screening.CategoryBasicInfo, screening.FieldStockCode))
}
