// Package review holds the live finding collection for one open analysis
// run and the interactive editing machinery around it: deterministic
// ordering, the time-boxed delete undo and cross-edit navigation.
package review

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// Store is the mutable, ordered finding sequence of one analysis run.
// Every consumer (navigator, undo manager, exporter, subscribers) observes
// the same sequence; reads return copies so callers can never alias the
// stored slice.
type Store struct {
	mu       sync.Mutex
	findings []domain.Finding
	order    map[string]int // finding id -> insertion sequence
	nextSeq  int
	subs     []func([]domain.Finding)
}

func NewStore(initial []domain.Finding) *Store {
	s := &Store{order: make(map[string]int, len(initial))}
	s.findings = append(s.findings, initial...)
	for _, f := range s.findings {
		s.order[f.ID] = s.nextSeq
		s.nextSeq++
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn func([]domain.Finding)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) Findings() []domain.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

func (s *Store) Get(id string) (domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.findings[i], nil
	}
	return domain.Finding{}, domain.WrapError(domain.ErrNotFound, "get finding", errFindingID(id))
}

// Add assigns a fresh id to the draft, appends it and returns the stored
// finding.
func (s *Store) Add(draft domain.Finding) (domain.Finding, error) {
	if err := validateFinding(draft); err != nil {
		return domain.Finding{}, err
	}
	draft.ID = uuid.NewString()
	if draft.CorrectionType == "" {
		draft.CorrectionType = domain.CorrectionOptional
	}

	s.mu.Lock()
	s.findings = append(s.findings, draft)
	s.order[draft.ID] = s.nextSeq
	s.nextSeq++
	s.notifyLocked()
	s.mu.Unlock()
	return draft, nil
}

// Update atomically replaces the addressed finding with the patched value.
func (s *Store) Update(id string, patch domain.FindingPatch) (domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return domain.Finding{}, domain.WrapError(domain.ErrNotFound, "update finding", errFindingID(id))
	}
	patched := patch.Apply(s.findings[i])
	if err := validateFinding(patched); err != nil {
		return domain.Finding{}, err
	}
	s.findings[i] = patched
	s.notifyLocked()
	return patched, nil
}

// Remove deletes the addressed finding and returns the full pre-delete
// sequence, which the undo manager captures.
func (s *Store) Remove(id string) ([]domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "remove finding", errFindingID(id))
	}
	prior := s.snapshotLocked()
	s.findings = append(s.findings[:i], s.findings[i+1:]...)
	delete(s.order, id)
	s.notifyLocked()
	return prior, nil
}

// Save commits an edited finding and resorts the stored order by slide
// number ascending, so the list redisplays in slide order after a manual
// edit regardless of the view's active sort.
func (s *Store) Save(updated domain.Finding) (domain.Finding, error) {
	if err := validateFinding(updated); err != nil {
		return domain.Finding{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(updated.ID)
	if i < 0 {
		return domain.Finding{}, domain.WrapError(domain.ErrNotFound, "save finding", errFindingID(updated.ID))
	}
	s.findings[i] = updated
	sort.SliceStable(s.findings, func(a, b int) bool {
		return s.findings[a].SlideNumber < s.findings[b].SlideNumber
	})
	s.notifyLocked()
	return updated, nil
}

// Replace restores the store to the given sequence. Insertion order is
// rebuilt from the sequence positions.
func (s *Store) Replace(seq []domain.Finding) {
	s.mu.Lock()
	s.findings = append(s.findings[:0:0], seq...)
	s.order = make(map[string]int, len(seq))
	s.nextSeq = 0
	for _, f := range s.findings {
		s.order[f.ID] = s.nextSeq
		s.nextSeq++
	}
	s.notifyLocked()
	s.mu.Unlock()
}

// SortedView returns a re-derived ordering without mutating stored order.
func (s *Store) SortedView(key SortKey, order SortOrder) []domain.Finding {
	s.mu.Lock()
	view := s.snapshotLocked()
	seq := make([]int, len(view))
	for i, f := range view {
		seq[i] = s.order[f.ID]
	}
	s.mu.Unlock()

	sort.SliceStable(view, func(a, b int) bool {
		c := compareFindings(key, view[a], view[b], seq[a], seq[b])
		if order == OrderDescending {
			return c > 0
		}
		return c < 0
	})
	return view
}

func (s *Store) snapshotLocked() []domain.Finding {
	return append([]domain.Finding(nil), s.findings...)
}

func (s *Store) indexOfLocked(id string) int {
	for i, f := range s.findings {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(snapshot)
	}
}

func validateFinding(f domain.Finding) error {
	if f.SlideNumber < 1 {
		return domain.WrapError(domain.ErrValidation, "validate finding",
			errors.New("slide number must be >= 1"))
	}
	if !f.Category.Valid() {
		return domain.WrapError(domain.ErrValidation, "validate finding",
			errors.New("unknown category "+string(f.Category)))
	}
	if f.CorrectionType != "" && !f.CorrectionType.Valid() {
		return domain.WrapError(domain.ErrValidation, "validate finding",
			errors.New("unknown correction type "+string(f.CorrectionType)))
	}
	return nil
}

type findingIDError string

func (e findingIDError) Error() string { return "finding id " + string(e) }

func errFindingID(id string) error { return findingIDError(id) }
