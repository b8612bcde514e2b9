package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Sheet names of the workbook.
const (
	SummarySheet   = "Summary"
	LineItemsSheet = "LineItems"
)

// XLSXSink writes both relations into one workbook, one sheet each.
type XLSXSink struct {
	path   string
	logger *slog.Logger
}

func NewXLSXSink(path string, logger *slog.Logger) *XLSXSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSink{path: path, logger: logger}
}

func (s *XLSXSink) Name() string { return "xlsx" }

func (s *XLSXSink) Write(_ context.Context, result *entity.BatchResult) error {
	start := time.Now()

	f, err := Workbook(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeAtomic(s.path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"path", s.path,
		"summary_rows", len(result.Summaries),
		"line_item_rows", len(result.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Workbook builds the workbook in memory.
func Workbook(result *entity.BatchResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(LineItemsSheet); err != nil {
		return nil, err
	}

	summaries := make([][]any, 0, len(result.Summaries))
	for _, r := range result.Summaries {
		summaries = append(summaries, toAny(r.Values()))
	}
	if err := writeSheet(f, SummarySheet, constants.SummaryColumns, summaries); err != nil {
		return nil, err
	}

	items := make([][]any, 0, len(result.LineItems))
	for _, r := range result.LineItems {
		row := toAny(r.Values())
		row[1] = r.LineIndex // keep line_index numeric
		items = append(items, row)
	}
	if err := writeSheet(f, LineItemsSheet, constants.LineItemColumns, items); err != nil {
		return nil, err
	}

	// Widen a few columns
	_ = f.SetColWidth(SummarySheet, "A", "A", 32) // pdf_filename
	_ = f.SetColWidth(SummarySheet, "B", "C", 24) // order / invoice
	_ = f.SetColWidth(SummarySheet, "D", "G", 14) // dates, amounts
	_ = f.SetColWidth(SummarySheet, "H", "H", 36) // supplier
	_ = f.SetColWidth(SummarySheet, "I", "J", 18) // abn, po
	_ = f.SetColWidth(LineItemsSheet, "A", "A", 32)
	_ = f.SetColWidth(LineItemsSheet, "C", "E", 20)
	_ = f.SetColWidth(LineItemsSheet, "F", "F", 40) // description

	idx, _ := f.GetSheetIndex(SummarySheet)
	f.SetActiveSheet(idx)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func toAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
