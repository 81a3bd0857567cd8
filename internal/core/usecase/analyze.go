package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/ports"
)

// AnalyzeDeckUseCase runs the two-pass analysis pipeline for one deck:
// extract slide text, classify it into draft findings (fatal on failure),
// commit them as the deck's latest run, then enrich eligible findings with
// legal citations (non-fatal on failure).
type AnalyzeDeckUseCase struct {
	decks      ports.DeckRepository
	analyses   ports.AnalysisRepository
	storage    ports.ObjectStorage
	extractor  ports.SlideTextExtractor
	classifier ports.FindingClassifier
	matcher    ports.LegalMatcher
	rules      ports.RulesProvider

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewAnalyzeDeckUseCase(
	decks ports.DeckRepository,
	analyses ports.AnalysisRepository,
	storage ports.ObjectStorage,
	extractor ports.SlideTextExtractor,
	classifier ports.FindingClassifier,
	matcher ports.LegalMatcher,
	rules ports.RulesProvider,
) *AnalyzeDeckUseCase {
	return &AnalyzeDeckUseCase{
		decks:      decks,
		analyses:   analyses,
		storage:    storage,
		extractor:  extractor,
		classifier: classifier,
		matcher:    matcher,
		rules:      rules,
		inFlight:   make(map[string]struct{}),
	}
}

// AnalyzeByID executes the pipeline. A second trigger for a deck whose run
// is still in flight is a no-op.
func (uc *AnalyzeDeckUseCase) AnalyzeByID(ctx context.Context, deckID string) error {
	if !uc.begin(deckID) {
		slog.Info("analysis already in flight, trigger ignored", "deck_id", deckID)
		return nil
	}
	defer uc.end(deckID)

	if err := uc.decks.UpdateStatus(ctx, deckID, domain.DeckStatusAnalyzing, ""); err != nil {
		return fmt.Errorf("set status=analyzing: %w", err)
	}

	run, err := uc.classificationPass(ctx, deckID)
	if err != nil {
		// Fatal to the run: the deck returns to a retryable failed state
		// and no partial findings are committed.
		if failErr := uc.decks.UpdateStatus(ctx, deckID, domain.DeckStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.augmentationPass(ctx, deckID); err != nil {
		// Non-fatal: the classified findings stay valid and usable.
		slog.Warn("augmentation pass failed, keeping classified findings",
			"deck_id", deckID, "run_id", run.ID, "error", err)
	}

	if err := uc.decks.UpdateStatus(ctx, deckID, domain.DeckStatusAnalyzed, ""); err != nil {
		return fmt.Errorf("set status=analyzed: %w", err)
	}
	return nil
}

// classificationPass extracts, classifies, normalizes and commits the
// findings as the deck's latest run.
func (uc *AnalyzeDeckUseCase) classificationPass(ctx context.Context, deckID string) (*domain.AnalysisRun, error) {
	deck, err := uc.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("fetch deck by id: %w", err)
	}

	slides, err := uc.extractSlides(ctx, deck)
	if err != nil {
		return nil, err
	}

	rulesText, err := uc.rules.InternalRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load internal rules: %w", err)
	}

	raw, err := uc.classifier.Classify(ctx, SlidePromptText(slides), rulesText)
	if err != nil {
		return nil, fmt.Errorf("classify slide text: %w", err)
	}

	findings, err := NormalizeCandidates(raw, len(slides))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &domain.AnalysisRun{
		ID:         uuid.NewString(),
		DeckID:     deckID,
		State:      domain.RunStateClassified,
		SlideCount: len(slides),
		Findings:   findings,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.analyses.ReplaceLatestRun(ctx, run); err != nil {
		return nil, fmt.Errorf("commit classified findings: %w", err)
	}
	return run, nil
}

// augmentationPass enriches the committed findings with legal citations.
// It reads the run back from the repository so the merge always operates
// on the current committed sequence, never a stale snapshot. On failure
// the run stays classified and its findings untouched.
func (uc *AnalyzeDeckUseCase) augmentationPass(ctx context.Context, deckID string) error {
	run, err := uc.analyses.GetLatestRun(ctx, deckID)
	if err != nil {
		return fmt.Errorf("fetch committed run: %w", err)
	}

	issues := EligibleIssues(run.Findings)
	if len(issues) > 0 {
		summary, err := uc.rules.LegalSummary(ctx)
		if err != nil {
			return fmt.Errorf("load legal summary: %w", err)
		}
		matches, err := uc.matcher.MatchLegalBasis(ctx, issues, summary)
		if err != nil {
			return fmt.Errorf("match legal basis: %w", err)
		}
		merged := MergeLegalBases(run.Findings, matches)
		if err := uc.analyses.ReplaceRunFindings(ctx, run.ID, merged); err != nil {
			return fmt.Errorf("commit augmented findings: %w", err)
		}
	}

	if err := uc.analyses.UpdateRunState(ctx, run.ID, domain.RunStateAugmented); err != nil {
		return fmt.Errorf("mark run augmented: %w", err)
	}
	return nil
}

func (uc *AnalyzeDeckUseCase) extractSlides(ctx context.Context, deck *domain.Deck) ([]domain.SlideText, error) {
	container, err := uc.storage.Open(ctx, deck.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored deck: %w", err)
	}
	defer container.Close()

	slides, err := uc.extractor.Extract(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("extract slide text: %w", err)
	}
	if len(slides) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "extract slide text",
			errors.New("container holds no slides"))
	}
	return slides, nil
}

func (uc *AnalyzeDeckUseCase) begin(deckID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[deckID]; busy {
		return false
	}
	uc.inFlight[deckID] = struct{}{}
	return true
}

func (uc *AnalyzeDeckUseCase) end(deckID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, deckID)
}
