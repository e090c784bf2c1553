package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

const (
	FieldTotalAmount = "total_amount"
	FieldVATAmount   = "vat_amount"

	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"

	// fiscalFilingDay is the day of the following month by which the monthly
	// VAT declaration must be filed.
	fiscalFilingDay = 25
)

// vatBearingTypes contribute to the fiscal report's collected VAT.
var vatBearingTypes = map[string]bool{
	"factura_fiscala": true,
	"declaratie_tva":  true,
}

// ReportUseCase aggregates stored documents into summary, fiscal and
// detailed reports, and renders them for export.
type ReportUseCase struct {
	repo     ports.DocumentRepository
	renderer ports.ReportRenderer
	now      func() time.Time
}

func NewReportUseCase(repo ports.DocumentRepository, renderer ports.ReportRenderer) *ReportUseCase {
	return &ReportUseCase{
		repo:     repo,
		renderer: renderer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ReportUseCase) Summary(ctx context.Context, filter ports.ListFilter) (*domain.SummaryReport, error) {
	docs, err := uc.listAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.SummaryReport{
		GeneratedAt: uc.now(),
		From:        filter.From,
		To:          filter.To,
	}

	stats := map[string]*domain.TypeStat{}
	for i := range docs {
		doc := &docs[i]
		if doc.Record == nil {
			continue
		}
		stat := stats[doc.Record.DocType]
		if stat == nil {
			stat = &domain.TypeStat{DocType: doc.Record.DocType}
			stats[doc.Record.DocType] = stat
		}

		stat.Count++
		stat.TotalAmount += fieldAmount(doc, FieldTotalAmount)
		stat.VATAmount += fieldAmount(doc, FieldVATAmount)
		if !doc.IsValid() {
			stat.Invalid++
		}

		report.TotalDocuments++
		report.TotalAmount += fieldAmount(doc, FieldTotalAmount)
		report.TotalVAT += fieldAmount(doc, FieldVATAmount)
		if !doc.IsValid() {
			report.InvalidDocuments++
		}
	}

	report.ByType = sortedStats(stats)
	return report, nil
}

func (uc *ReportUseCase) Fiscal(ctx context.Context, month, year int) (*domain.FiscalReport, error) {
	if month < 1 || month > 12 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fiscal report",
			fmt.Errorf("month out of range: %d", month))
	}
	if year < 2000 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fiscal report",
			fmt.Errorf("year out of range: %d", year))
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	docs, err := uc.listAll(ctx, ports.ListFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	report := &domain.FiscalReport{
		GeneratedAt:    uc.now(),
		Month:          month,
		Year:           year,
		FilingDeadline: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, fiscalFilingDay-1),
	}

	stats := map[string]*domain.TypeStat{}
	for i := range docs {
		doc := &docs[i]
		if doc.Record == nil {
			continue
		}
		stat := stats[doc.Record.DocType]
		if stat == nil {
			stat = &domain.TypeStat{DocType: doc.Record.DocType}
			stats[doc.Record.DocType] = stat
		}

		total := fieldAmount(doc, FieldTotalAmount)
		vat := fieldAmount(doc, FieldVATAmount)

		stat.Count++
		stat.TotalAmount += total
		stat.VATAmount += vat
		if !doc.IsValid() {
			stat.Invalid++
		}

		report.DocumentCount++
		if vatBearingTypes[doc.Record.DocType] {
			report.TaxableTotal += total
			report.VATCollected += vat
		}
	}

	report.ByType = sortedStats(stats)
	return report, nil
}

func (uc *ReportUseCase) Detailed(ctx context.Context, filter ports.ListFilter) (*domain.DetailedReport, error) {
	docs, err := uc.listAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.DetailedReport{
		GeneratedAt: uc.now(),
		From:        filter.From,
		To:          filter.To,
		Documents:   docs,
	}, nil
}

func (uc *ReportUseCase) Export(ctx context.Context, format string, filter ports.ListFilter) ([]byte, string, error) {
	summary, err := uc.Summary(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(format) {
	case ExportFormatXLSX:
		detailed, err := uc.Detailed(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		data, err := uc.renderer.RenderSummaryXLSX(summary, detailed)
		if err != nil {
			return nil, "", fmt.Errorf("render xlsx: %w", err)
		}
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case ExportFormatCSV:
		data, err := uc.renderer.RenderSummaryCSV(summary)
		if err != nil {
			return nil, "", fmt.Errorf("render csv: %w", err)
		}
		return data, "text/csv; charset=utf-8", nil
	case ExportFormatJSON:
		detailed, err := uc.Detailed(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		data, err := json.MarshalIndent(struct {
			Summary   *domain.SummaryReport  `json:"summary"`
			Documents *domain.DetailedReport `json:"detailed"`
		}{summary, detailed}, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("render json: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "export report",
			fmt.Errorf("unsupported format: %q", format))
	}
}

// listAll pages through the repository so report totals cover the whole
// filtered set, not just the first page.
func (uc *ReportUseCase) listAll(ctx context.Context, filter ports.ListFilter) ([]domain.Document, error) {
	const pageSize = 500

	filter.Limit = pageSize
	filter.Offset = 0

	var all []domain.Document
	for {
		page, err := uc.repo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		filter.Offset += pageSize
	}
}

func fieldAmount(doc *domain.Document, name string) float64 {
	field := doc.Field(name)
	if field == nil {
		return 0
	}
	value := strings.ReplaceAll(strings.TrimSpace(field.Value), ",", "")
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return amount
}

func sortedStats(stats map[string]*domain.TypeStat) []domain.TypeStat {
	out := make([]domain.TypeStat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocType < out[j].DocType })
	return out
}
