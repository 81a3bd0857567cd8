package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/review"
)

func reviewFixture(t *testing.T) (*ReviewUseCase, *analyzeRunsFake) {
	t.Helper()
	runs := &analyzeRunsFake{run: &domain.AnalysisRun{
		ID:     "run-1",
		DeckID: "deck-1",
		State:  domain.RunStateAugmented,
		Findings: []domain.Finding{
			{ID: "f1", SlideNumber: 1, Category: domain.CategoryExpression, Issue: "誇大", Suggestion: "直す", CorrectionType: domain.CorrectionRequired},
			{ID: "f2", SlideNumber: 3, Category: domain.CategoryTypo, Issue: "誤字", Suggestion: "直す", CorrectionType: domain.CorrectionOptional},
		},
	}}
	uc := NewReviewUseCase(runs, time.Minute)
	t.Cleanup(uc.CloseAll)
	return uc, runs
}

func TestReviewOpenLoadsLatestRun(t *testing.T) {
	uc, _ := reviewFixture(t)

	session, err := uc.Open(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if session.RunID != "run-1" {
		t.Fatalf("run id = %s", session.RunID)
	}
	if !session.Augmented {
		t.Fatalf("expected augmented session")
	}
	if session.Store.Len() != 2 {
		t.Fatalf("expected 2 findings, got %d", session.Store.Len())
	}
}

func TestReviewOpenUnknownDeck(t *testing.T) {
	uc, _ := reviewFixture(t)

	if _, err := uc.Open(context.Background(), "other"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewSessionRequiresOpen(t *testing.T) {
	uc, _ := reviewFixture(t)

	if _, err := uc.Session("deck-1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before Open, got %v", err)
	}
	if _, err := uc.SortedView("deck-1", review.SortBySlideNumber, review.OrderAscending); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewDeleteThenUndoRestores(t *testing.T) {
	uc, runs := reviewFixture(t)
	ctx := context.Background()

	if _, err := uc.Open(ctx, "deck-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := uc.DeleteFinding(ctx, "deck-1", "f1"); err != nil {
		t.Fatalf("DeleteFinding() error = %v", err)
	}

	session, _ := uc.Session("deck-1")
	if session.Store.Len() != 1 {
		t.Fatalf("expected 1 finding after delete")
	}

	restored, err := uc.UndoDelete(ctx, "deck-1")
	if err != nil {
		t.Fatalf("UndoDelete() error = %v", err)
	}
	if !restored {
		t.Fatalf("expected restore")
	}
	if session.Store.Len() != 2 {
		t.Fatalf("expected 2 findings after undo")
	}
	// persisted sequence rewritten to match the restored store
	if len(runs.run.Findings) != 2 {
		t.Fatalf("persisted findings = %d, want 2", len(runs.run.Findings))
	}

	restored, err = uc.UndoDelete(ctx, "deck-1")
	if err != nil {
		t.Fatalf("UndoDelete() error = %v", err)
	}
	if restored {
		t.Fatalf("second undo must be a no-op")
	}
}

func TestReviewAddUpdateFlow(t *testing.T) {
	uc, _ := reviewFixture(t)
	ctx := context.Background()

	if _, err := uc.Open(ctx, "deck-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	added, err := uc.AddFinding(ctx, "deck-1", domain.Finding{
		SlideNumber: 2,
		Category:    domain.CategoryCitation,
		Issue:       "出典がない",
		Suggestion:  "出典を付ける",
	})
	if err != nil {
		t.Fatalf("AddFinding() error = %v", err)
	}
	if added.ID == "" || added.CorrectionType != domain.CorrectionOptional {
		t.Fatalf("added = %+v", added)
	}

	newIssue := "出典が古い"
	updated, err := uc.UpdateFinding(ctx, "deck-1", added.ID, domain.FindingPatch{Issue: &newIssue})
	if err != nil {
		t.Fatalf("UpdateFinding() error = %v", err)
	}
	if updated.Issue != newIssue {
		t.Fatalf("issue = %q", updated.Issue)
	}

	nav, err := uc.Navigation("deck-1", added.ID)
	if err != nil {
		t.Fatalf("Navigation() error = %v", err)
	}
	if !nav.HasPrev || nav.HasNext {
		t.Fatalf("appended finding must be last: %+v", nav)
	}
}

func TestReviewOpenReplacesExistingSession(t *testing.T) {
	uc, _ := reviewFixture(t)
	ctx := context.Background()

	first, err := uc.Open(ctx, "deck-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := uc.DeleteFinding(ctx, "deck-1", "f1"); err != nil {
		t.Fatalf("DeleteFinding() error = %v", err)
	}
	if !first.Undo.Pending() {
		t.Fatalf("expected pending undo on first session")
	}

	second, err := uc.Open(ctx, "deck-1")
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if first.Undo.Pending() {
		t.Fatalf("replaced session must be closed")
	}
	if second == first {
		t.Fatalf("expected a fresh session")
	}
}

func TestReviewCloseDiscardsSession(t *testing.T) {
	uc, _ := reviewFixture(t)
	ctx := context.Background()

	if _, err := uc.Open(ctx, "deck-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	uc.Close("deck-1")

	if _, err := uc.Session("deck-1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after close, got %v", err)
	}
}
