// Package export renders aggregated reports into downloadable bytes: an XLSX
// workbook with summary, document and validation sheets, or a flat CSV of the
// per-type summary.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

const (
	sheetSummary   = "Summary"
	sheetDocuments = "Documents"
	sheetFindings  = "Findings"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderSummaryXLSX(report *domain.SummaryReport, details *domain.DetailedReport) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}
	if details != nil {
		if err := writeDocumentsSheet(f, details); err != nil {
			return nil, err
		}
		if err := writeFindingsSheet(f, details); err != nil {
			return nil, err
		}
	}

	// The default sheet excelize creates is replaced by Summary.
	if index, err := f.GetSheetIndex(sheetSummary); err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) RenderSummaryCSV(report *domain.SummaryReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"doc_type", "count", "total_amount", "vat_amount", "invalid"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for _, stat := range report.ByType {
		row := []string{
			stat.DocType,
			strconv.Itoa(stat.Count),
			formatAmount(stat.TotalAmount),
			formatAmount(stat.VATAmount),
			strconv.Itoa(stat.Invalid),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}
	}
	total := []string{
		"total",
		strconv.Itoa(report.TotalDocuments),
		formatAmount(report.TotalAmount),
		formatAmount(report.TotalVAT),
		strconv.Itoa(report.InvalidDocuments),
	}
	if err := w.Write(total); err != nil {
		return nil, fmt.Errorf("csv total row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, report *domain.SummaryReport) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	write := cellWriter(f, sheetSummary)
	write(1, 1, "Generated")
	write(2, 1, report.GeneratedAt.Format("2006-01-02 15:04"))
	if report.From != nil {
		write(1, 2, "From")
		write(2, 2, report.From.Format("2006-01-02"))
	}
	if report.To != nil {
		write(1, 3, "To")
		write(2, 3, report.To.Format("2006-01-02"))
	}

	headers := []string{"Document Type", "Count", "Total Amount", "VAT Amount", "Invalid"}
	for i, h := range headers {
		write(i+1, 5, h)
	}
	row := 6
	for _, stat := range report.ByType {
		write(1, row, stat.DocType)
		write(2, row, stat.Count)
		write(3, row, stat.TotalAmount)
		write(4, row, stat.VATAmount)
		write(5, row, stat.Invalid)
		row++
	}
	write(1, row, "total")
	write(2, row, report.TotalDocuments)
	write(3, row, report.TotalAmount)
	write(4, row, report.TotalVAT)
	write(5, row, report.InvalidDocuments)

	_ = f.SetColWidth(sheetSummary, "A", "A", 22)
	_ = f.SetColWidth(sheetSummary, "B", "E", 14)
	return nil
}

func writeDocumentsSheet(f *excelize.File, details *domain.DetailedReport) error {
	if _, err := f.NewSheet(sheetDocuments); err != nil {
		return fmt.Errorf("create documents sheet: %w", err)
	}

	write := cellWriter(f, sheetDocuments)
	headers := []string{"ID", "Filename", "Type", "Status", "Date", "Total", "VAT", "Errors", "Warnings", "Uploaded"}
	for i, h := range headers {
		write(i+1, 1, h)
	}

	row := 2
	for i := range details.Documents {
		doc := &details.Documents[i]
		write(1, row, doc.ID)
		write(2, row, doc.Filename)
		if doc.Record != nil {
			write(3, row, doc.Record.DocType)
		}
		write(4, row, string(doc.Status))
		write(5, row, fieldValue(doc, "date"))
		write(6, row, fieldValue(doc, "total_amount"))
		write(7, row, fieldValue(doc, "vat_amount"))
		if doc.Validation != nil {
			write(8, row, len(doc.Validation.Errors))
			write(9, row, len(doc.Validation.Warnings))
		}
		write(10, row, doc.CreatedAt.Format("2006-01-02 15:04"))
		row++
	}

	_ = f.SetColWidth(sheetDocuments, "A", "A", 38)
	_ = f.SetColWidth(sheetDocuments, "B", "B", 32)
	_ = f.SetColWidth(sheetDocuments, "C", "D", 16)
	_ = f.SetColWidth(sheetDocuments, "E", "G", 14)
	_ = f.SetColWidth(sheetDocuments, "J", "J", 18)
	return nil
}

func writeFindingsSheet(f *excelize.File, details *domain.DetailedReport) error {
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return fmt.Errorf("create findings sheet: %w", err)
	}

	write := cellWriter(f, sheetFindings)
	headers := []string{"Document ID", "Filename", "Severity", "Message"}
	for i, h := range headers {
		write(i+1, 1, h)
	}

	row := 2
	for i := range details.Documents {
		doc := &details.Documents[i]
		if doc.Validation == nil {
			continue
		}
		for _, msg := range doc.Validation.Errors {
			write(1, row, doc.ID)
			write(2, row, doc.Filename)
			write(3, row, "error")
			write(4, row, msg)
			row++
		}
		for _, msg := range doc.Validation.Warnings {
			write(1, row, doc.ID)
			write(2, row, doc.Filename)
			write(3, row, "warning")
			write(4, row, msg)
			row++
		}
	}

	_ = f.SetColWidth(sheetFindings, "A", "A", 38)
	_ = f.SetColWidth(sheetFindings, "B", "B", 32)
	_ = f.SetColWidth(sheetFindings, "C", "C", 10)
	_ = f.SetColWidth(sheetFindings, "D", "D", 60)
	return nil
}

func cellWriter(f *excelize.File, sheet string) func(col, row int, value any) {
	return func(col, row int, value any) {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return
		}
		_ = f.SetCellValue(sheet, cell, value)
	}
}

func fieldValue(doc *domain.Document, name string) string {
	field := doc.Field(name)
	if field == nil {
		return ""
	}
	return strings.TrimSpace(field.Value)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
