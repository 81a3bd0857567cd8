package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/medreview/slide-compliance/internal/config"
	"github.com/medreview/slide-compliance/internal/core/ports"
	"github.com/medreview/slide-compliance/internal/core/usecase"
	"github.com/medreview/slide-compliance/internal/infrastructure/export/xlsx"
	"github.com/medreview/slide-compliance/internal/infrastructure/extractor/pptx"
	"github.com/medreview/slide-compliance/internal/infrastructure/llm/gemini"
	"github.com/medreview/slide-compliance/internal/infrastructure/queue/nats"
	"github.com/medreview/slide-compliance/internal/infrastructure/repository/postgres"
	"github.com/medreview/slide-compliance/internal/infrastructure/resilience"
	"github.com/medreview/slide-compliance/internal/infrastructure/rules"
	"github.com/medreview/slide-compliance/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Decks    ports.DeckRepository
	Analyses ports.AnalysisRepository
	Storage  ports.ObjectStorage
	Exporter ports.FindingExporter

	IngestUC  ports.DeckIngestor
	AnalyzeUC ports.DeckAnalyzer
	ReviewUC  *usecase.ReviewUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	decks := postgres.NewDeckRepository(db)
	if err := decks.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	analyses := postgres.NewAnalysisRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rulesProvider, err := rules.NewFileProvider(cfg.InternalRulesPath, cfg.LegalSummaryPath)
	if err != nil {
		return nil, fmt.Errorf("load rules documents: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	geminiClient := gemini.New(cfg.GeminiURL, cfg.GeminiModel, cfg.GeminiAPIKey, executor)
	classifier := gemini.NewClassifier(geminiClient)
	matcher := gemini.NewMatcher(geminiClient)

	extractor := pptx.NewExtractor()
	exporter := xlsx.NewExporter()

	ingestUC := usecase.NewIngestDeckUseCase(decks, storage, queue)
	analyzeUC := usecase.NewAnalyzeDeckUseCase(decks, analyses, storage, extractor, classifier, matcher, rulesProvider)
	reviewUC := usecase.NewReviewUseCase(analyses, time.Duration(cfg.ReviewUndoWindowSeconds)*time.Second)

	return &App{
		Config: cfg,

		Queue:    queue,
		Decks:    decks,
		Analyses: analyses,
		Storage:  storage,
		Exporter: exporter,

		IngestUC:  ingestUC,
		AnalyzeUC: analyzeUC,
		ReviewUC:  reviewUC,

		closeFn: func() {
			reviewUC.CloseAll()
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
