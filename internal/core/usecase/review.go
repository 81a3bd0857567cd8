package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/ports"
	"github.com/medreview/slide-compliance/internal/core/review"
)

// ReviewUseCase manages interactive review sessions: one in-memory finding
// store per open deck, with edits written through to the persistence
// collaborator. Write-through failures do not roll back the in-memory
// edit; they are surfaced to the caller as a recoverable error.
type ReviewUseCase struct {
	analyses   ports.AnalysisRepository
	undoWindow time.Duration

	mu       sync.Mutex
	sessions map[string]*review.Session // keyed by deck id
}

func NewReviewUseCase(analyses ports.AnalysisRepository, undoWindow time.Duration) *ReviewUseCase {
	return &ReviewUseCase{
		analyses:   analyses,
		undoWindow: undoWindow,
		sessions:   make(map[string]*review.Session),
	}
}

// Open loads the deck's latest run into a fresh session. An existing
// session for the deck is closed and replaced.
func (uc *ReviewUseCase) Open(ctx context.Context, deckID string) (*review.Session, error) {
	run, err := uc.analyses.GetLatestRun(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}

	session := review.NewSession(run, uc.undoWindow)
	uc.mu.Lock()
	if prev, ok := uc.sessions[deckID]; ok {
		prev.Close()
	}
	uc.sessions[deckID] = session
	uc.mu.Unlock()
	return session, nil
}

func (uc *ReviewUseCase) Session(deckID string) (*review.Session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	session, ok := uc.sessions[deckID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "review session",
			fmt.Errorf("no open session for deck %s", deckID))
	}
	return session, nil
}

// Close tears the deck's session down, cancelling any pending undo timer.
func (uc *ReviewUseCase) Close(deckID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if session, ok := uc.sessions[deckID]; ok {
		session.Close()
		delete(uc.sessions, deckID)
	}
}

// CloseAll is called on shutdown so no dangling restore can fire.
func (uc *ReviewUseCase) CloseAll() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for id, session := range uc.sessions {
		session.Close()
		delete(uc.sessions, id)
	}
}

func (uc *ReviewUseCase) AddFinding(ctx context.Context, deckID string, draft domain.Finding) (domain.Finding, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return domain.Finding{}, err
	}
	stored, err := session.Store.Add(draft)
	if err != nil {
		return domain.Finding{}, err
	}
	if err := uc.analyses.InsertFinding(ctx, session.RunID, &stored); err != nil {
		uc.warnWriteThrough(deckID, "insert", err)
	}
	return stored, nil
}

func (uc *ReviewUseCase) UpdateFinding(ctx context.Context, deckID, findingID string, patch domain.FindingPatch) (domain.Finding, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return domain.Finding{}, err
	}
	updated, err := session.Store.Update(findingID, patch)
	if err != nil {
		return domain.Finding{}, err
	}
	if err := uc.analyses.UpdateFinding(ctx, &updated); err != nil {
		uc.warnWriteThrough(deckID, "update", err)
	}
	return updated, nil
}

// SaveFinding commits an edit-session change: update then resort by slide
// number ascending.
func (uc *ReviewUseCase) SaveFinding(ctx context.Context, deckID string, updated domain.Finding) (domain.Finding, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return domain.Finding{}, err
	}
	saved, err := session.Store.Save(updated)
	if err != nil {
		return domain.Finding{}, err
	}
	if err := uc.analyses.UpdateFinding(ctx, &saved); err != nil {
		uc.warnWriteThrough(deckID, "save", err)
	}
	return saved, nil
}

func (uc *ReviewUseCase) DeleteFinding(ctx context.Context, deckID, findingID string) error {
	session, err := uc.Session(deckID)
	if err != nil {
		return err
	}
	if err := session.Undo.Delete(findingID); err != nil {
		return err
	}
	if err := uc.analyses.DeleteFinding(ctx, findingID); err != nil {
		uc.warnWriteThrough(deckID, "delete", err)
	}
	return nil
}

// UndoDelete restores the captured pre-delete sequence, if a slot is still
// pending, and rewrites the run's persisted findings to match.
func (uc *ReviewUseCase) UndoDelete(ctx context.Context, deckID string) (bool, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return false, err
	}
	if !session.Undo.Undo() {
		return false, nil
	}
	if err := uc.analyses.ReplaceRunFindings(ctx, session.RunID, session.Store.Findings()); err != nil {
		uc.warnWriteThrough(deckID, "undo", err)
	}
	return true, nil
}

func (uc *ReviewUseCase) Navigation(deckID, findingID string) (review.Navigation, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return review.Navigation{}, err
	}
	return session.Nav.State(findingID), nil
}

func (uc *ReviewUseCase) SortedView(deckID string, key review.SortKey, order review.SortOrder) ([]domain.Finding, error) {
	session, err := uc.Session(deckID)
	if err != nil {
		return nil, err
	}
	return session.Store.SortedView(key, order), nil
}

func (uc *ReviewUseCase) warnWriteThrough(deckID, op string, err error) {
	slog.Warn("finding write-through failed, in-memory edit kept",
		"deck_id", deckID, "op", op, "error", err)
}
