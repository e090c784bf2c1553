package ports

import (
	"context"
	"io"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

// ListFilter narrows repository listings.
type ListFilter struct {
	DocType     string
	From        *time.Time
	To          *time.Time
	OnlyInvalid bool
	Limit       int
	Offset      int
}

// DocumentRepository persists and reads document state. UpdateFieldValue is
// the single mutation permitted on a finalized record: it overwrites the
// value of an existing field and nothing else.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, record domain.DocumentRecord, outcome domain.ValidationOutcome) error
	UpdateFieldValue(ctx context.Context, id, fieldName, value string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes processing events.
type MessageQueue interface {
	PublishDocumentQueued(ctx context.Context, documentID string) error
	SubscribeDocumentQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor pulls plain text out of a stored document, returning the
// extraction confidence alongside the text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, float64, error)
}

// TypeClassifier scores raw text against the configured document types.
// Pure: absence of a match is a valid result, never an error.
type TypeClassifier interface {
	Classify(text, language string) domain.TypeMatch
}

// FieldExtractor applies the per-type pattern grammar to raw text.
type FieldExtractor interface {
	Extract(text, typeID, language string) []domain.ExtractedField
}

// DocumentValidator applies the business rules to extracted fields.
// CheckRequired is the stricter path gated behind configuration.
type DocumentValidator interface {
	Validate(typeID string, fields []domain.ExtractedField) domain.ValidationOutcome
	CheckRequired(typeID string, fields []domain.ExtractedField, language string) []string
}

// AssistProvider is the external AI collaborator: classification fallback,
// vision text extraction for images, and optional OCR cleanup. Every method
// may fail; callers treat failures as "fallback unavailable".
type AssistProvider interface {
	ClassifyDocument(ctx context.Context, text, language string) (*domain.AssistAnswer, error)
	ExtractImageText(ctx context.Context, image []byte, mimeType, language string) (string, error)
	EnhanceText(ctx context.Context, text, language string) (string, error)
}

// ReportRenderer turns an aggregated report into exportable bytes.
type ReportRenderer interface {
	RenderSummaryXLSX(report *domain.SummaryReport, details *domain.DetailedReport) ([]byte, error)
	RenderSummaryCSV(report *domain.SummaryReport) ([]byte, error)
}
