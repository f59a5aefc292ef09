package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/linkparity/linkparity/internal/crawler"
	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"
	"github.com/linkparity/linkparity/internal/urlnorm"
)

// Sheet names per mode.
const (
	sheetLinks        = "Links"
	sheetCrawlSummary = "Crawl Summary"
	sheetDiff         = "Diff"
	sheetDiffSummary  = "Summary"
)

// ExcelSink writes the run to an .xlsx workbook. Single-site mode fills
// a Links sheet (one row per captured link) and a Crawl Summary sheet
// (one row per page). Compare mode fills a Diff sheet (one row per
// difference) and a per-page Summary sheet. The workbook is saved on
// Close.
type ExcelSink struct {
	f       *excelize.File
	path    string
	compare bool

	// internal/external classification context, single-site mode
	baseHost          string
	includeSubdomains bool

	linkRow int
	sumRow  int
	pageIdx int
}

// NewCrawlExcelSink creates the single-site workbook. baseHost and
// includeSubdomains drive the Internal/External column.
func NewCrawlExcelSink(path, baseHost string, includeSubdomains bool) (*ExcelSink, error) {
	s := &ExcelSink{
		f:                 excelize.NewFile(),
		path:              path,
		baseHost:          baseHost,
		includeSubdomains: includeSubdomains,
	}
	if err := s.initSheets(
		sheetLinks,
		[]any{"Source Page", "Source Title", "Link Text", "Raw Href (absolute)", "Resolved URL", "HTTP Status", "Target", "Rel", "Internal/External"},
		[]float64{50, 40, 45, 80, 80, 12, 12, 18, 16},
		sheetCrawlSummary,
		[]any{"#", "Page URL", "Page Title", "HTTP Status (fetch)", "Links Captured"},
		[]float64{6, 90, 45, 20, 20},
	); err != nil {
		return nil, err
	}
	return s, nil
}

// NewCompareExcelSink creates the diff workbook.
func NewCompareExcelSink(path string) (*ExcelSink, error) {
	s := &ExcelSink{
		f:       excelize.NewFile(),
		path:    path,
		compare: true,
	}
	if err := s.initSheets(
		sheetDiff,
		[]any{"Page URL (baseline)", "Page URL (upgraded)", "Type", "Link Text", "Baseline URL", "Upgraded URL", "Baseline Status", "Upgraded Status", "Note"},
		[]float64{50, 50, 12, 40, 80, 80, 14, 14, 40},
		sheetDiffSummary,
		[]any{"#", "Page URL (baseline)", "Page URL (upgraded)", "Baseline Title", "Upgraded Title", "Missing", "Extra", "Wrong"},
		[]float64{6, 60, 60, 40, 40, 10, 10, 10},
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ExcelSink) initSheets(mainName string, mainHeader []any, mainWidths []float64, sumName string, sumHeader []any, sumWidths []float64) error {
	if err := s.f.SetSheetName("Sheet1", mainName); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}
	if _, err := s.f.NewSheet(sumName); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}
	if err := s.writeRow(mainName, 1, mainHeader); err != nil {
		return err
	}
	if err := s.writeRow(sumName, 1, sumHeader); err != nil {
		return err
	}
	if err := s.setColWidths(mainName, mainWidths); err != nil {
		return err
	}
	if err := s.setColWidths(sumName, sumWidths); err != nil {
		return err
	}
	s.linkRow = 2
	s.sumRow = 2
	return nil
}

// WriteSnapshot appends one page's links and its summary row.
func (s *ExcelSink) WriteSnapshot(snap *page.Snapshot) error {
	if s.compare {
		return nil
	}
	s.pageIdx++

	for _, rec := range snap.Links {
		scope := "External"
		classifyURL := rec.FinalURL
		if classifyURL == "" {
			classifyURL = rec.AbsoluteURL
		}
		if urlnorm.IsInternal(classifyURL, s.baseHost, s.includeSubdomains) {
			scope = "Internal"
		}
		row := []any{
			snap.PageURL, snap.PageTitle, rec.Text, rec.AbsoluteURL, rec.FinalURL,
			statusCell(rec.Status), rec.Target, rec.Rel, scope,
		}
		if err := s.writeRow(sheetLinks, s.linkRow, row); err != nil {
			return err
		}
		s.linkRow++
	}

	err := s.writeRow(sheetCrawlSummary, s.sumRow, []any{
		s.pageIdx, snap.PageURL, snap.PageTitle, statusCell(snap.FetchStatus), len(snap.Links),
	})
	s.sumRow++
	return err
}

// WritePageDiff appends one page pair's diff rows and its summary row.
func (s *ExcelSink) WritePageDiff(base, upg *page.Snapshot, rows []diff.Row, counts diff.Counts) error {
	if !s.compare {
		return nil
	}
	s.pageIdx++

	for _, r := range rows {
		row := []any{
			r.BasePageURL, r.UpgPageURL, string(r.Kind), r.LinkText,
			r.BaseURL, r.UpgURL, statusCell(r.BaseStatus), statusCell(r.UpgStatus), r.Note,
		}
		if err := s.writeRow(sheetDiff, s.linkRow, row); err != nil {
			return err
		}
		s.linkRow++
	}

	err := s.writeRow(sheetDiffSummary, s.sumRow, []any{
		s.pageIdx, base.PageURL, upg.PageURL, base.PageTitle, upg.PageTitle,
		counts.Missing, counts.Extra, counts.Wrong,
	})
	s.sumRow++
	return err
}

// WriteSummary appends a totals row after a separating blank line.
func (s *ExcelSink) WriteSummary(sum crawler.Summary) error {
	sheet := sheetCrawlSummary
	row := []any{"", "Totals", "", "", sum.LinksCaptured}
	if s.compare {
		sheet = sheetDiffSummary
		row = []any{"", "Totals", "", "", "", sum.Diff.Missing, sum.Diff.Extra, sum.Diff.Wrong}
	}
	s.sumRow++
	err := s.writeRow(sheet, s.sumRow, row)
	s.sumRow++
	return err
}

// Close saves the workbook to disk.
func (s *ExcelSink) Close() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return s.f.Close()
}

func (s *ExcelSink) writeRow(sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func (s *ExcelSink) setColWidths(sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// statusCell renders an HTTP status, leaving the cell empty when the
// status is absent.
func statusCell(status int) any {
	if status == 0 {
		return ""
	}
	return status
}
