package review

import (
	"sync"
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

// DefaultUndoWindow bounds how long a deleted sequence stays restorable.
const DefaultUndoWindow = 7 * time.Second

type undoSlot struct {
	captured []domain.Finding
	timer    *time.Timer
}

// UndoManager wraps store deletions in a single-level, time-boxed undo
// buffer. Only one pending slot exists at a time. A delete while a slot
// is pending chains onto it: the slot keeps the sequence captured before
// the first delete of the chain and the window restarts, so one undo
// brings back every finding deleted within the chain. The manager owns
// its timer and must be closed with the review session so no restore can
// fire against a discarded store.
type UndoManager struct {
	store  *Store
	window time.Duration

	mu   sync.Mutex
	slot *undoSlot
}

func NewUndoManager(store *Store, window time.Duration) *UndoManager {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoManager{store: store, window: window}
}

// Delete removes the finding and arms the undo slot with the full
// pre-delete sequence. When a slot is already pending the earlier
// capture wins: the new slot keeps the sequence from before the first
// delete of the chain.
func (m *UndoManager) Delete(id string) error {
	prior, err := m.store.Remove(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot != nil {
		m.slot.timer.Stop()
		prior = m.slot.captured
		m.slot = nil
	}
	slot := &undoSlot{captured: prior}
	slot.timer = time.AfterFunc(m.window, func() { m.expire(slot) })
	m.slot = slot
	return nil
}

// Undo restores the captured pre-delete sequence and clears the slot. This
// is a full-sequence restore: edits made to other findings inside the
// pending window are rolled back too. Reports whether a restore happened.
func (m *UndoManager) Undo() bool {
	m.mu.Lock()
	slot := m.slot
	if slot == nil {
		m.mu.Unlock()
		return false
	}
	slot.timer.Stop()
	m.slot = nil
	m.mu.Unlock()

	m.store.Replace(slot.captured)
	return true
}

func (m *UndoManager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot != nil
}

// Close cancels any pending timer. Called on session teardown.
func (m *UndoManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot != nil {
		m.slot.timer.Stop()
		m.slot = nil
	}
}

// expire clears the slot without touching the store. The slot identity
// check keeps a stale timer from clearing a newer delete.
func (m *UndoManager) expire(slot *undoSlot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == slot {
		m.slot = nil
	}
}
