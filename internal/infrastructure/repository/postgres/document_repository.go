package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT 'ru',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	doc_type TEXT,
	fields JSONB NOT NULL DEFAULT '[]'::jsonb,
	raw_text TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	validation_errors JSONB NOT NULL DEFAULT '[]'::jsonb,
	validation_warnings JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, storage_path, language, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, doc.Language,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

const documentColumns = `id, filename, mime_type, storage_path, language, status, error_message,
	doc_type, fields, raw_text, confidence, validation_errors, validation_warnings, created_at, updated_at`

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document",
				fmt.Errorf("no row for id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Document, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.DocType != "" {
		conds = append(conds, "doc_type = "+arg(filter.DocType))
	}
	if filter.From != nil {
		conds = append(conds, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "created_at < "+arg(*filter.To))
	}
	if filter.OnlyInvalid {
		conds = append(conds, "jsonb_array_length(validation_errors) > 0")
	}

	query := "SELECT " + documentColumns + "\nFROM documents"
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += "\nLIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += "\nOFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(result, "update status", id)
}

func (r *DocumentRepository) SaveResult(ctx context.Context, id string, record domain.DocumentRecord, outcome domain.ValidationOutcome) error {
	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	errorsJSON, err := json.Marshal(jsonStrings(outcome.Errors))
	if err != nil {
		return fmt.Errorf("marshal validation errors: %w", err)
	}
	warningsJSON, err := json.Marshal(jsonStrings(outcome.Warnings))
	if err != nil {
		return fmt.Errorf("marshal validation warnings: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET doc_type = $2, fields = $3, raw_text = $4, confidence = $5,
	validation_errors = $6, validation_warnings = $7, updated_at = $8
WHERE id = $1
`, id, record.DocType, fieldsJSON, record.RawText, record.Confidence,
		errorsJSON, warningsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save processing result: %w", err)
	}
	return requireRowAffected(result, "save result", id)
}

// UpdateFieldValue reads, patches and rewrites the fields array inside one
// transaction so concurrent edits cannot clobber each other.
func (r *DocumentRepository) UpdateFieldValue(ctx context.Context, id, fieldName, value string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin field edit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var fieldsRaw []byte
	err = tx.QueryRowContext(ctx, `SELECT fields FROM documents WHERE id = $1 FOR UPDATE`, id).Scan(&fieldsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrDocumentNotFound, "update field",
			fmt.Errorf("no row for id %s", id))
	}
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}

	var fields []domain.ExtractedField
	if err := json.Unmarshal(fieldsRaw, &fields); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}

	found := false
	for i := range fields {
		if fields[i].Name == fieldName {
			fields[i].Value = value
			found = true
			break
		}
	}
	if !found {
		return domain.WrapError(domain.ErrFieldNotFound, "update field",
			fmt.Errorf("field %q not present on document %s", fieldName, id))
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE documents
SET fields = $2, updated_at = $3
WHERE id = $1
`, id, fieldsJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("write fields: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit field edit tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc         domain.Document
		status      string
		docType     sql.NullString
		fieldsRaw   []byte
		rawText     string
		confidence  float64
		errorsRaw   []byte
		warningsRaw []byte
	)

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Language,
		&status, &doc.Error, &docType, &fieldsRaw, &rawText, &confidence,
		&errorsRaw, &warningsRaw, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)

	if docType.Valid && docType.String != "" {
		record := domain.DocumentRecord{
			DocType:    docType.String,
			RawText:    rawText,
			Confidence: confidence,
		}
		if err := json.Unmarshal(fieldsRaw, &record.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}

		outcome := domain.ValidationOutcome{}
		if err := json.Unmarshal(errorsRaw, &outcome.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal validation errors: %w", err)
		}
		if err := json.Unmarshal(warningsRaw, &outcome.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal validation warnings: %w", err)
		}

		doc.Record = &record
		doc.Validation = &outcome
	}
	return &doc, nil
}

func requireRowAffected(result sql.Result, operation, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation,
			fmt.Errorf("no row for id %s", id))
	}
	return nil
}

// jsonStrings keeps empty slices serialized as [] rather than null.
func jsonStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
