package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

type rendererFake struct {
	xlsx []byte
	csv  []byte
}

func (f *rendererFake) RenderSummaryXLSX(*domain.SummaryReport, *domain.DetailedReport) ([]byte, error) {
	return f.xlsx, nil
}

func (f *rendererFake) RenderSummaryCSV(*domain.SummaryReport) ([]byte, error) {
	return f.csv, nil
}

func reportDocs() []domain.Document {
	invalid := domain.ValidationOutcome{Errors: []string{"Invalid amount: -5"}}
	return []domain.Document{
		{
			ID: "d1",
			Record: &domain.DocumentRecord{
				DocType: "factura_fiscala",
				Fields: []domain.ExtractedField{
					{Name: "total_amount", Value: "1000.00"},
					{Name: "vat_amount", Value: "200.00"},
				},
			},
		},
		{
			ID: "d2",
			Record: &domain.DocumentRecord{
				DocType: "factura_fiscala",
				Fields: []domain.ExtractedField{
					{Name: "total_amount", Value: "1,500.50"},
					{Name: "vat_amount", Value: "300.10"},
				},
			},
			Validation: &invalid,
		},
		{
			ID: "d3",
			Record: &domain.DocumentRecord{
				DocType: "bon_fiscal",
				Fields: []domain.ExtractedField{
					{Name: "total_amount", Value: "80.00"},
				},
			},
		},
		{
			// Still processing, no record yet: excluded from aggregates.
			ID:     "d4",
			Status: domain.StatusProcessing,
		},
	}
}

func TestSummaryAggregatesByType(t *testing.T) {
	repo := &repoFake{docs: reportDocs()}
	uc := NewReportUseCase(repo, &rendererFake{})

	report, err := uc.Summary(context.Background(), ports.ListFilter{})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if report.TotalDocuments != 3 {
		t.Fatalf("expected 3 aggregated documents, got %d", report.TotalDocuments)
	}
	if report.InvalidDocuments != 1 {
		t.Fatalf("expected 1 invalid document, got %d", report.InvalidDocuments)
	}
	if got, want := report.TotalAmount, 2580.50; !closeTo(got, want) {
		t.Fatalf("TotalAmount = %v, want %v", got, want)
	}
	if got, want := report.TotalVAT, 500.10; !closeTo(got, want) {
		t.Fatalf("TotalVAT = %v, want %v", got, want)
	}
	if len(report.ByType) != 2 {
		t.Fatalf("expected 2 type buckets, got %+v", report.ByType)
	}
	// Sorted by type id: bon_fiscal before factura_fiscala.
	if report.ByType[0].DocType != "bon_fiscal" || report.ByType[1].Count != 2 {
		t.Fatalf("unexpected buckets: %+v", report.ByType)
	}
}

func TestFiscalReportDeadlineAndVAT(t *testing.T) {
	repo := &repoFake{docs: reportDocs()}
	uc := NewReportUseCase(repo, &rendererFake{})

	report, err := uc.Fiscal(context.Background(), 8, 2023)
	if err != nil {
		t.Fatalf("Fiscal() error = %v", err)
	}
	want := time.Date(2023, time.September, 25, 0, 0, 0, 0, time.UTC)
	if !report.FilingDeadline.Equal(want) {
		t.Fatalf("FilingDeadline = %v, want %v", report.FilingDeadline, want)
	}
	// Only VAT-bearing types contribute; bon_fiscal does not.
	if got, want := report.TaxableTotal, 2500.50; !closeTo(got, want) {
		t.Fatalf("TaxableTotal = %v, want %v", got, want)
	}
	if got, want := report.VATCollected, 500.10; !closeTo(got, want) {
		t.Fatalf("VATCollected = %v, want %v", got, want)
	}
	if report.DocumentCount != 3 {
		t.Fatalf("DocumentCount = %d, want 3", report.DocumentCount)
	}
}

func TestFiscalReportDecemberRollsOver(t *testing.T) {
	uc := NewReportUseCase(&repoFake{}, &rendererFake{})

	report, err := uc.Fiscal(context.Background(), 12, 2023)
	if err != nil {
		t.Fatalf("Fiscal() error = %v", err)
	}
	want := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	if !report.FilingDeadline.Equal(want) {
		t.Fatalf("FilingDeadline = %v, want %v", report.FilingDeadline, want)
	}
}

func TestFiscalReportRejectsBadPeriod(t *testing.T) {
	uc := NewReportUseCase(&repoFake{}, &rendererFake{})

	if _, err := uc.Fiscal(context.Background(), 13, 2023); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
	if _, err := uc.Fiscal(context.Background(), 1, 1999); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func TestExportFormats(t *testing.T) {
	repo := &repoFake{docs: reportDocs()}
	uc := NewReportUseCase(repo, &rendererFake{xlsx: []byte("PK"), csv: []byte("doc_type,count")})

	data, contentType, err := uc.Export(context.Background(), "XLSX", ports.ListFilter{})
	if err != nil {
		t.Fatalf("Export(xlsx) error = %v", err)
	}
	if string(data) != "PK" || contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected xlsx export: %q %q", data, contentType)
	}

	data, contentType, err = uc.Export(context.Background(), "csv", ports.ListFilter{})
	if err != nil {
		t.Fatalf("Export(csv) error = %v", err)
	}
	if string(data) != "doc_type,count" || contentType != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected csv export: %q %q", data, contentType)
	}

	if _, _, err := uc.Export(context.Background(), "pdf", ports.ListFilter{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func TestExportJSONCarriesSummaryAndDocuments(t *testing.T) {
	repo := &repoFake{docs: reportDocs()}
	uc := NewReportUseCase(repo, &rendererFake{})

	data, contentType, err := uc.Export(context.Background(), "json", ports.ListFilter{})
	if err != nil {
		t.Fatalf("Export(json) error = %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("content type = %q", contentType)
	}

	var payload struct {
		Summary struct {
			TotalDocuments int     `json:"total_documents"`
			TotalAmount    float64 `json:"total_amount"`
		} `json:"summary"`
		Documents struct {
			Documents []domain.Document `json:"documents"`
		} `json:"detailed"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if payload.Summary.TotalDocuments != 3 {
		t.Fatalf("total_documents = %d, want 3", payload.Summary.TotalDocuments)
	}
	if !closeTo(payload.Summary.TotalAmount, 2580.50) {
		t.Fatalf("total_amount = %v", payload.Summary.TotalAmount)
	}
	if len(payload.Documents.Documents) != 4 {
		t.Fatalf("expected all 4 listed documents, got %d", len(payload.Documents.Documents))
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
