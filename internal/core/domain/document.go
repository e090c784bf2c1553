package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// TypeUnknown is the sentinel classification for documents that matched no
// configured type. DocType is never empty: it is a registry id or this value.
const TypeUnknown = "unknown"

const (
	LanguageRO = "ro"
	LanguageRU = "ru"
)

// Document is the persisted envelope around one uploaded fiscal document.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Language    string         `json:"language"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`

	Record     *DocumentRecord    `json:"record,omitempty"`
	Validation *ValidationOutcome `json:"validation,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValid reports whether the last processing run produced no hard errors.
func (d *Document) IsValid() bool {
	return d.Validation == nil || len(d.Validation.Errors) == 0
}

// Field returns the extracted field with the given name, or nil.
func (d *Document) Field(name string) *ExtractedField {
	if d.Record == nil {
		return nil
	}
	for i := range d.Record.Fields {
		if d.Record.Fields[i].Name == name {
			return &d.Record.Fields[i]
		}
	}
	return nil
}
