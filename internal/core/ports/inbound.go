package ports

import (
	"context"
	"io"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType, language string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor runs the classify/extract/validate pipeline for a stored
// document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Document, error)
}

// DocumentEditor covers the post-finalization operations: correcting a field
// value and re-queueing the retained raw text through the pipeline.
type DocumentEditor interface {
	UpdateFieldValue(ctx context.Context, id, fieldName, value string) (*domain.Document, error)
	Reprocess(ctx context.Context, id string) error
}

// ReportService aggregates stored documents into exportable reports.
type ReportService interface {
	Summary(ctx context.Context, filter ListFilter) (*domain.SummaryReport, error)
	Fiscal(ctx context.Context, month, year int) (*domain.FiscalReport, error)
	Detailed(ctx context.Context, filter ListFilter) (*domain.DetailedReport, error)
	Export(ctx context.Context, format string, filter ListFilter) (data []byte, contentType string, err error)
}
