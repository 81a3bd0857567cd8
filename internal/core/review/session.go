package review

import (
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// Session ties a store, its undo manager and navigator to one open review
// of a deck's latest analysis run.
type Session struct {
	DeckID    string
	RunID     string
	Augmented bool

	Store *Store
	Undo  *UndoManager
	Nav   *Navigator
}

func NewSession(run *domain.AnalysisRun, undoWindow time.Duration) *Session {
	store := NewStore(run.Findings)
	return &Session{
		DeckID:    run.DeckID,
		RunID:     run.ID,
		Augmented: run.State == domain.RunStateAugmented,
		Store:     store,
		Undo:      NewUndoManager(store, undoWindow),
		Nav:       NewNavigator(store),
	}
}

// Close releases the session's scheduled resources.
func (s *Session) Close() {
	s.Undo.Close()
}
