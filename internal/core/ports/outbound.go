package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// DeckRepository persists deck metadata and status.
type DeckRepository interface {
	Create(ctx context.Context, deck *domain.Deck) error
	GetByID(ctx context.Context, id string) (*domain.Deck, error)
	List(ctx context.Context) ([]domain.Deck, error)
	UpdateStatus(ctx context.Context, id string, status domain.DeckStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// AnalysisRepository persists analysis runs and their finding rows. The
// repository is the source of truth across review sessions.
type AnalysisRepository interface {
	ReplaceLatestRun(ctx context.Context, run *domain.AnalysisRun) error
	GetLatestRun(ctx context.Context, deckID string) (*domain.AnalysisRun, error)
	UpdateRunState(ctx context.Context, runID string, state domain.RunState) error
	ReplaceRunFindings(ctx context.Context, runID string, findings []domain.Finding) error
	InsertFinding(ctx context.Context, runID string, finding *domain.Finding) error
	UpdateFinding(ctx context.Context, finding *domain.Finding) error
	DeleteFinding(ctx context.Context, findingID string) error
}

// ObjectStorage stores uploaded deck containers.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue carries analysis triggers from the api to the worker.
type MessageQueue interface {
	PublishAnalysisRequested(ctx context.Context, deckID string) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// SlideTextExtractor unpacks a deck container into ordered per-slide text.
type SlideTextExtractor interface {
	Extract(ctx context.Context, container io.Reader) ([]domain.SlideText, error)
}

// FindingClassifier runs the first analysis pass. It returns the raw
// candidate payload; validation and defaulting happen in the core.
type FindingClassifier interface {
	Classify(ctx context.Context, slideText, rules string) (json.RawMessage, error)
}

// LegalMatcher runs the second pass, pairing issue texts with citations.
type LegalMatcher interface {
	MatchLegalBasis(ctx context.Context, issues []string, legalSummary string) ([]domain.LegalMatch, error)
}

// RulesProvider supplies the rules documents fed to the two passes.
type RulesProvider interface {
	InternalRules(ctx context.Context) (string, error)
	LegalSummary(ctx context.Context) (string, error)
}

// FindingExporter serializes findings for download.
type FindingExporter interface {
	Export(findings []domain.Finding, includeBasis bool) ([]byte, error)
}
