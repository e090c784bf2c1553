package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

// DocumentQueryUseCase is the read side: single lookup and filtered listing.
type DocumentQueryUseCase struct {
	repo ports.DocumentRepository
}

func NewDocumentQueryUseCase(repo ports.DocumentRepository) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{repo: repo}
}

func (uc *DocumentQueryUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *DocumentQueryUseCase) List(ctx context.Context, filter ports.ListFilter) ([]domain.Document, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	docs, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DocumentEditUseCase covers post-processing corrections. Field edits touch
// only the named field's value; validation state from the last run stays as
// is until the document is reprocessed.
type DocumentEditUseCase struct {
	repo      ports.DocumentRepository
	queue     ports.MessageQueue
	validator ports.DocumentValidator
}

func NewDocumentEditUseCase(
	repo ports.DocumentRepository,
	queue ports.MessageQueue,
	validator ports.DocumentValidator,
) *DocumentEditUseCase {
	return &DocumentEditUseCase{repo: repo, queue: queue, validator: validator}
}

func (uc *DocumentEditUseCase) UpdateFieldValue(ctx context.Context, id, fieldName, value string) (*domain.Document, error) {
	if fieldName == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update field", errors.New("field name is empty"))
	}

	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Record == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update field",
			fmt.Errorf("document %s has no processing result", id))
	}
	if doc.Field(fieldName) == nil {
		return nil, domain.WrapError(domain.ErrFieldNotFound, "update field",
			fmt.Errorf("field %q not present on document %s", fieldName, id))
	}

	if err := uc.repo.UpdateFieldValue(ctx, id, fieldName, value); err != nil {
		return nil, fmt.Errorf("update field value: %w", err)
	}

	updated, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload document: %w", err)
	}

	// Re-run validation so corrections are reflected immediately instead of
	// waiting for a full reprocess.
	outcome := uc.validator.Validate(updated.Record.DocType, updated.Record.Fields)
	if err := uc.repo.SaveResult(ctx, id, *updated.Record, outcome); err != nil {
		return nil, fmt.Errorf("persist revalidation: %w", err)
	}
	updated.Validation = &outcome

	return updated, nil
}

func (uc *DocumentEditUseCase) Reprocess(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Status == domain.StatusProcessing {
		return domain.WrapError(domain.ErrInvalidInput, "reprocess",
			fmt.Errorf("document %s is already processing", id))
	}

	if err := uc.repo.UpdateStatus(ctx, id, domain.StatusUploaded, ""); err != nil {
		return fmt.Errorf("reset status: %w", err)
	}
	if err := uc.queue.PublishDocumentQueued(ctx, id); err != nil {
		return fmt.Errorf("publish processing event: %w", err)
	}
	return nil
}
