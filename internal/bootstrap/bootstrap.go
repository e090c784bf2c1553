package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/config"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
	"github.com/vmoraru/fiscaldoc/internal/core/usecase"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/ai/openai"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/classify"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/export"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/fields"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/queue/nats"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/repository/postgres"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/resilience"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/rules"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/storage/localfs"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/textextract"
)

// App holds the wired components shared by the API and worker binaries.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.DocumentReader
	EditUC    ports.DocumentEditor
	ReportUC  ports.ReportService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := config.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load type registry: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	// Without an API key the pipeline runs keyword-only and image uploads
	// are rejected at text extraction.
	var assist ports.AssistProvider
	if cfg.OpenAIAPIKey != "" {
		assist = openai.New(openai.Options{
			APIKey:            cfg.OpenAIAPIKey,
			Model:             cfg.OpenAIModel,
			Timeout:           time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.OpenAIRequestsPerSecond,
		}, executor)
	}

	extractor := textextract.NewExtractor(storage, assist)
	classifier := classify.New(registry, classify.Strategy(cfg.ClassifierStrategy))
	fieldExtractor := fields.NewExtractor(registry)
	validator := rules.NewValidator(registry)
	renderer := export.NewRenderer()

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, cfg.DefaultLanguage)
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		extractor,
		classifier,
		fieldExtractor,
		validator,
		assist,
		registry,
		logger,
		usecase.ProcessOptions{
			ClassificationThreshold: cfg.ClassificationThreshold,
			StrictRequiredFields:    cfg.StrictRequiredFields,
			UseTextEnhancement:      cfg.UseTextEnhancement,
		},
	)
	queryUC := usecase.NewDocumentQueryUseCase(repo)
	editUC := usecase.NewDocumentEditUseCase(repo, queue, validator)
	reportUC := usecase.NewReportUseCase(repo, renderer)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		EditUC:    editUC,
		ReportUC:  reportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
