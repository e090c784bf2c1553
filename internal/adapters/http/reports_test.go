package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

func TestReportSummaryEndpoint(t *testing.T) {
	reports := &reportsFake{summary: &domain.SummaryReport{
		GeneratedAt:    time.Now().UTC(),
		TotalDocuments: 3,
		TotalAmount:    2580.50,
		ByType:         []domain.TypeStat{{DocType: "factura_fiscala", Count: 2}},
	}}
	handler := newTestRouter(nil, nil, nil, reports)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/summary", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["total_documents"] != float64(3) {
		t.Fatalf("total_documents = %v", resp["total_documents"])
	}
}

func TestReportFiscalEndpoint(t *testing.T) {
	reports := &reportsFake{fiscal: &domain.FiscalReport{
		Month:          8,
		Year:           2023,
		VATCollected:   500.10,
		FilingDeadline: time.Date(2023, 9, 25, 0, 0, 0, 0, time.UTC),
	}}
	handler := newTestRouter(nil, nil, nil, reports)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/fiscal?month=8&year=2023", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["month"] != float64(8) || resp["year"] != float64(2023) {
		t.Fatalf("unexpected period: %+v", resp)
	}
}

func TestReportFiscalRequiresIntegerPeriod(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/fiscal?month=august&year=2023", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestReportExportSetsDownloadHeaders(t *testing.T) {
	reports := &reportsFake{
		exportData: []byte("doc_type,count\n"),
		exportType: "text/csv; charset=utf-8",
	}
	handler := newTestRouter(nil, nil, nil, reports)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/export?format=csv", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if reports.lastFormat != "csv" {
		t.Fatalf("format = %q", reports.lastFormat)
	}
	if got := res.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := res.Header().Get("Content-Disposition"); got == "" {
		t.Fatalf("expected Content-Disposition header")
	}
	if res.Body.String() != "doc_type,count\n" {
		t.Fatalf("body = %q", res.Body.String())
	}
}

func TestReportExportUnknownFormatReturns400(t *testing.T) {
	reports := &reportsFake{err: domain.WrapError(domain.ErrInvalidInput, "export", errors.New("unknown format"))}
	handler := newTestRouter(nil, nil, nil, reports)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/export?format=pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
