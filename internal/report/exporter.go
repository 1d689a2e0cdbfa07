package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/panshi-lab/odiscan/internal/screening"
)

// Sheet names of the audit workbook, in tab order.
const (
	SheetAllTransactions = "全部交易"
	SheetBasicInfo       = "基本信息"
	SheetStructure       = "交易结构"
	SheetApprovals       = "合规审批"
	SheetRisks           = "风险点"
	SheetExcluded        = "排除文件"
	SheetSummary         = "统计摘要"
)

// riskPlaceholder prefills the risk sheet for later manual or LLM analysis.
const riskPlaceholder = "待分析"

const (
	minColWidth = 10
	maxColWidth = 50
)

// ExcludedFile is one row of the excluded-files sheet.
type ExcludedFile struct {
	FileName string
	Reason   string // display label of the exclusion category
	Note     string // classifier reason or parse error detail
}

// Exporter writes the screening outcome as a reviewable multi-sheet XLSX
// workbook.
type Exporter struct {
	outputDir string
	fileName  string
	logger    *slog.Logger
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(outputDir, fileName string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{outputDir: outputDir, fileName: fileName, logger: logger}
}

// Export builds the workbook and writes it under the output directory,
// returning the written path.
func (e *Exporter) Export(odi []screening.Extraction, excluded []ExcludedFile) (string, error) {
	start := time.Now()

	f, err := e.build(odi, excluded)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(e.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, e.fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("report.xlsx.ok",
		"path", path,
		"odi_rows", len(odi),
		"excluded_rows", len(excluded),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

func (e *Exporter) build(odi []screening.Extraction, excluded []ExcludedFile) (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes the first tab.
	if err := f.SetSheetName("Sheet1", SheetAllTransactions); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	writers := []struct {
		name  string
		write func(*excelize.File) error
	}{
		{SheetAllTransactions, func(f *excelize.File) error { return e.writeAllTransactions(f, odi) }},
		{SheetBasicInfo, func(f *excelize.File) error { return e.writeBasicInfo(f, odi) }},
		{SheetStructure, func(f *excelize.File) error { return e.writeStructure(f, odi) }},
		{SheetApprovals, func(f *excelize.File) error { return e.writeApprovals(f, odi) }},
		{SheetRisks, func(f *excelize.File) error { return e.writeRisks(f, odi) }},
		{SheetExcluded, func(f *excelize.File) error { return e.writeExcluded(f, excluded) }},
		{SheetSummary, func(f *excelize.File) error { return e.writeSummary(f, odi, excluded) }},
	}

	for _, w := range writers {
		if w.name != SheetAllTransactions {
			if _, err := f.NewSheet(w.name); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", w.name, err)
			}
		}
		if err := w.write(f); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", w.name, err)
		}
	}

	if index, err := f.GetSheetIndex(SheetAllTransactions); err == nil {
		f.SetActiveSheet(index)
	}

	return f, nil
}

// issuer renders the announcing entity as "stock code + company name".
func issuer(ex screening.Extraction) string {
	code := ex.Get(screening.CategoryBasicInfo, screening.FieldStockCode)
	name := ex.Get(screening.CategoryBasicInfo, screening.FieldCompanyName)
	return strings.TrimSpace(code + " " + name)
}

func (e *Exporter) writeAllTransactions(f *excelize.File, odi []screening.Extraction) error {
	headers := []string{
		screening.FieldFileName, screening.FieldAnnounceDate, "境内公告主体",
		screening.FieldTargetCompany, screening.FieldTargetCountry,
		screening.FieldBusinessScope, screening.FieldDealAmount,
		screening.FieldDealType, screening.FieldEquityRatio,
		screening.FieldCounterparty, screening.FieldProgress,
		screening.FieldInvestor, screening.FieldFunding, screening.FieldPayment,
		screening.FieldDomesticApprovals, screening.FieldForeignApprovals,
		screening.FieldApprovalProgress, screening.FieldLicenses,
	}

	rows := make([][]string, 0, len(odi))
	for _, ex := range odi {
		basic := screening.CategoryBasicInfo
		structure := screening.CategoryStructure
		approvals := screening.CategoryApprovals
		rows = append(rows, []string{
			ex.Get(basic, screening.FieldFileName),
			ex.Get(basic, screening.FieldAnnounceDate),
			issuer(ex),
			ex.Get(basic, screening.FieldTargetCompany),
			ex.Get(basic, screening.FieldTargetCountry),
			ex.Get(basic, screening.FieldBusinessScope),
			ex.Get(basic, screening.FieldDealAmount),
			ex.Get(basic, screening.FieldDealType),
			ex.Get(basic, screening.FieldEquityRatio),
			ex.Get(basic, screening.FieldCounterparty),
			ex.Get(basic, screening.FieldProgress),
			ex.Get(structure, screening.FieldInvestor),
			ex.Get(structure, screening.FieldFunding),
			ex.Get(structure, screening.FieldPayment),
			ex.Get(approvals, screening.FieldDomesticApprovals),
			ex.Get(approvals, screening.FieldForeignApprovals),
			ex.Get(approvals, screening.FieldApprovalProgress),
			ex.Get(approvals, screening.FieldLicenses),
		})
	}

	return writeSheet(f, SheetAllTransactions, headers, rows)
}

func (e *Exporter) writeBasicInfo(f *excelize.File, odi []screening.Extraction) error {
	fields := screening.Fields(screening.CategoryBasicInfo)

	rows := make([][]string, 0, len(odi))
	for _, ex := range odi {
		row := make([]string, 0, len(fields))
		for _, field := range fields {
			row = append(row, ex.Get(screening.CategoryBasicInfo, field))
		}
		rows = append(rows, row)
	}

	return writeSheet(f, SheetBasicInfo, fields, rows)
}

func (e *Exporter) writeStructure(f *excelize.File, odi []screening.Extraction) error {
	headers := append([]string{
		screening.FieldFileName, "境内公告主体", screening.FieldTargetCompany,
	}, screening.Fields(screening.CategoryStructure)...)

	rows := make([][]string, 0, len(odi))
	for _, ex := range odi {
		row := []string{
			ex.Get(screening.CategoryBasicInfo, screening.FieldFileName),
			issuer(ex),
			ex.Get(screening.CategoryBasicInfo, screening.FieldTargetCompany),
		}
		for _, field := range screening.Fields(screening.CategoryStructure) {
			row = append(row, ex.Get(screening.CategoryStructure, field))
		}
		rows = append(rows, row)
	}

	return writeSheet(f, SheetStructure, headers, rows)
}

func (e *Exporter) writeApprovals(f *excelize.File, odi []screening.Extraction) error {
	headers := append([]string{
		screening.FieldFileName, "境内公告主体", screening.FieldTargetCompany,
	}, screening.Fields(screening.CategoryApprovals)...)

	rows := make([][]string, 0, len(odi))
	for _, ex := range odi {
		row := []string{
			ex.Get(screening.CategoryBasicInfo, screening.FieldFileName),
			issuer(ex),
			ex.Get(screening.CategoryBasicInfo, screening.FieldTargetCompany),
		}
		for _, field := range screening.Fields(screening.CategoryApprovals) {
			row = append(row, ex.Get(screening.CategoryApprovals, field))
		}
		rows = append(rows, row)
	}

	return writeSheet(f, SheetApprovals, headers, rows)
}

func (e *Exporter) writeRisks(f *excelize.File, odi []screening.Extraction) error {
	headers := []string{
		screening.FieldFileName, "境内公告主体", screening.FieldTargetCompany,
		"法律风险", "政策风险", "财务风险", "经营风险", "尽调问题", "其他风险",
	}

	rows := make([][]string, 0, len(odi))
	for _, ex := range odi {
		rows = append(rows, []string{
			ex.Get(screening.CategoryBasicInfo, screening.FieldFileName),
			issuer(ex),
			ex.Get(screening.CategoryBasicInfo, screening.FieldTargetCompany),
			riskPlaceholder, riskPlaceholder, riskPlaceholder,
			riskPlaceholder, riskPlaceholder, riskPlaceholder,
		})
	}

	return writeSheet(f, SheetRisks, headers, rows)
}

func (e *Exporter) writeExcluded(f *excelize.File, excluded []ExcludedFile) error {
	headers := []string{"文件名称", "排除原因", "备注"}

	rows := make([][]string, 0, len(excluded))
	for _, x := range excluded {
		rows = append(rows, []string{x.FileName, x.Reason, x.Note})
	}

	return writeSheet(f, SheetExcluded, headers, rows)
}

func (e *Exporter) writeSummary(f *excelize.File, odi []screening.Extraction, excluded []ExcludedFile) error {
	headers := []string{"项目", "数量/说明"}

	domesticCount := 0
	for _, x := range excluded {
		if strings.Contains(x.Reason, "境内") || strings.Contains(x.Note, "境内") {
			domesticCount++
		}
	}

	rows := [][]string{
		{"生成时间", time.Now().Format("2006-01-02 15:04:05")},
		{"", ""},
		{"总体统计", ""},
		{"处理文件总数", fmt.Sprintf("%d", len(odi)+len(excluded))},
		{"境外投资交易数", fmt.Sprintf("%d", len(odi))},
		{"排除文件数", fmt.Sprintf("%d", len(excluded))},
		{"其中：境内交易", fmt.Sprintf("%d", domesticCount)},
		{"", ""},
		{"交易类型统计", ""},
	}

	for _, tc := range countByField(odi, screening.FieldDealType, "其他") {
		rows = append(rows, []string{tc.name, fmt.Sprintf("%d", tc.count)})
	}

	rows = append(rows, []string{"", ""}, []string{"国家/地区统计", ""})
	for _, cc := range countByField(odi, screening.FieldTargetCountry, "未明确") {
		rows = append(rows, []string{cc.name, fmt.Sprintf("%d", cc.count)})
	}

	return writeSheet(f, SheetSummary, headers, rows)
}

type nameCount struct {
	name  string
	count int
}

// countByField tallies a basic-info field across the positive results,
// sorted by count descending (name ascending on ties) for stable output.
func countByField(odi []screening.Extraction, field, emptyLabel string) []nameCount {
	counts := make(map[string]int)
	for _, ex := range odi {
		value := ex.Get(screening.CategoryBasicInfo, field)
		if value == "" {
			value = emptyLabel
		}
		counts[value]++
	}

	out := make([]nameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, nameCount{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// writeSheet fills one sheet with a header row plus data rows and sizes the
// columns from their content.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return sizeColumns(f, sheet, headers, rows)
}

// sizeColumns widens each column to its longest value, clamped to
// [minColWidth, maxColWidth].
func sizeColumns(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for col := range headers {
		longest := utf8.RuneCountInString(headers[col])
		for _, row := range rows {
			if col < len(row) {
				if n := utf8.RuneCountInString(row[col]); n > longest {
					longest = n
				}
			}
		}

		width := longest + 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}
