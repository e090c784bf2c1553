package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

// ProcessOptions tune the pipeline run without touching the wiring.
type ProcessOptions struct {
	// ClassificationThreshold gates the assist-provider fallback: keyword
	// confidence below it triggers the provider when one is configured.
	ClassificationThreshold float64
	// StrictRequiredFields enables the required-field validation path.
	StrictRequiredFields bool
	// UseTextEnhancement runs the provider OCR-cleanup pass before
	// classification. Failures fall back to the raw text.
	UseTextEnhancement bool
}

// ProcessDocumentUseCase drives one document through the fixed state
// sequence: text extraction, classification, field extraction, validation,
// finalization. Assist-provider failures never abort a run; the keyword
// result stands.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	classify  ports.TypeClassifier
	fields    ports.FieldExtractor
	validator ports.DocumentValidator
	assist    ports.AssistProvider
	registry  *domain.Registry
	logger    *slog.Logger
	opts      ProcessOptions
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	classify ports.TypeClassifier,
	fields ports.FieldExtractor,
	validator ports.DocumentValidator,
	assist ports.AssistProvider,
	registry *domain.Registry,
	logger *slog.Logger,
	opts ProcessOptions,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		classify:  classify,
		fields:    fields,
		validator: validator,
		assist:    assist,
		registry:  registry,
		logger:    logger,
		opts:      opts,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	record, outcome, err := uc.runPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, documentID, record, outcome); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save result: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, documentID string) (domain.DocumentRecord, domain.ValidationOutcome, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.DocumentRecord{}, domain.ValidationOutcome{}, fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return domain.DocumentRecord{}, domain.ValidationOutcome{}, err
	}

	match, providerFields := uc.classifyText(ctx, text, doc.Language)

	extracted := uc.fields.Extract(text, match.TypeID, doc.Language)
	merged := domain.MergeFields(extracted, providerFields)

	outcome := uc.validator.Validate(match.TypeID, merged)
	if uc.opts.StrictRequiredFields {
		outcome.Errors = append(outcome.Errors, uc.validator.CheckRequired(match.TypeID, merged, doc.Language)...)
	}

	record := domain.DocumentRecord{
		DocType:    match.TypeID,
		Fields:     merged,
		RawText:    text,
		Confidence: clamp01(match.Confidence),
	}
	return record, outcome, nil
}

// extractText is the only transition allowed to fail the whole document:
// without text there is nothing to classify.
func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, _, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyText, "extract text", errors.New("document produced no text"))
	}

	if uc.opts.UseTextEnhancement && uc.assist != nil {
		enhanced, err := uc.assist.EnhanceText(ctx, text, doc.Language)
		if err != nil {
			uc.logger.Warn("text enhancement failed, using raw text", "document_id", doc.ID, "error", err)
		} else if enhanced != "" {
			text = enhanced
		}
	}
	return text, nil
}

// classifyText runs the keyword classifier and, when the result is weak,
// consults the assist provider. A well-formed provider answer replaces the
// type and confidence and contributes fields that take precedence over regex
// extraction on name collision. Any provider failure is logged and swallowed.
//
// A result is weak when confidence falls below the configured threshold or
// when no type matched at all. The unknown check is load-bearing for the
// ratio strategy, which reports full confidence on zero matches; that
// reported value must not mask a no-match from the fallback.
func (uc *ProcessDocumentUseCase) classifyText(ctx context.Context, text, language string) (domain.TypeMatch, []domain.ExtractedField) {
	match := uc.classify.Classify(text, language)
	weak := match.TypeID == domain.TypeUnknown || match.Confidence < uc.opts.ClassificationThreshold
	if uc.assist == nil || !weak {
		return match, nil
	}

	answer, err := uc.assist.ClassifyDocument(ctx, text, language)
	if err != nil {
		uc.logger.Warn("assist classification failed, keeping keyword result",
			"doc_type", match.TypeID, "confidence", match.Confidence, "error", err)
		return match, nil
	}
	if answer == nil || answer.Type == "" {
		return match, nil
	}

	match = domain.TypeMatch{
		TypeID:     answer.Type,
		Confidence: clamp01(answer.Confidence),
		Definition: uc.registry.Lookup(answer.Type),
	}

	providerFields := make([]domain.ExtractedField, 0, len(answer.Data))
	for _, name := range sortedKeys(answer.Data) {
		value := answer.Data[name]
		if value == "" {
			continue
		}
		providerFields = append(providerFields, domain.ExtractedField{
			Name:       name,
			Value:      value,
			Confidence: clamp01(answer.Confidence),
		})
	}
	return match, providerFields
}

// sortedKeys keeps provider field ordering deterministic across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
