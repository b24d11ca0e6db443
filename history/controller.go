package history

import (
	"time"

	"github.com/dshills/rewind/diff"
)

// Patcher is the optional capability a cell handle implements to
// interpret opaque deltas produced by a custom diff function. The
// forward flag is true on redo and false on undo. Returning false
// abandons the entry; the step still moves for its other entries.
type Patcher interface {
	ApplyPatch(value, payload any, forward bool) (any, bool)
}

// Undo reverts the most recent step and moves it to the future stack.
// Returns ErrNothingToUndo when the past stack is empty or every entry
// in the step named an unresolvable cell.
func (m *Manager) Undo() error {
	m.mu.Lock()
	if len(m.past) == 0 {
		m.mu.Unlock()
		return ErrNothingToUndo
	}
	s := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]

	release := m.beginApplyLocked()
	m.mu.Unlock()

	moved := m.restoreStep(s, false)

	m.mu.Lock()
	release()
	if len(moved) > 0 {
		m.future = append(m.future, moved)
	}
	m.mu.Unlock()

	if len(moved) == 0 {
		return ErrNothingToUndo
	}
	return nil
}

// Redo reapplies the most recently undone step and moves it back to the
// past stack. Returns ErrNothingToRedo when the future stack is empty
// or every entry in the step named an unresolvable cell.
func (m *Manager) Redo() error {
	m.mu.Lock()
	if len(m.future) == 0 {
		m.mu.Unlock()
		return ErrNothingToRedo
	}
	s := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]

	release := m.beginApplyLocked()
	m.mu.Unlock()

	moved := m.restoreStep(s, true)

	m.mu.Lock()
	release()
	if len(moved) > 0 {
		// Redo restores past directly; it must not clear the rest of
		// the future stack the way a fresh push would.
		m.past = append(m.past, moved)
	}
	m.mu.Unlock()

	if len(moved) == 0 {
		return ErrNothingToRedo
	}
	return nil
}

// beginApplyLocked sets the suppression flag and returns the release.
// Both the call and the release happen with the mutex held.
func (m *Manager) beginApplyLocked() func() {
	m.applying = true
	return func() {
		m.applying = false
	}
}

// restoreStep replays a step against the registry. Undo walks the
// entries last to first so later mutations unwind before earlier ones;
// redo walks them first to last. The returned step is always in
// original forward order, ready for replay in the other direction.
//
// The manager mutex is NOT held here: handle writes may reenter the
// manager (a tracked cell's Write calls Push), and the suppression flag
// already makes those pushes no-ops.
func (m *Manager) restoreStep(s step, forward bool) step {
	moved := make(step, 0, len(s))

	if forward {
		for _, e := range s {
			if r, ok := m.restoreEntry(e, forward); ok {
				moved = append(moved, r)
			}
		}
		return moved
	}

	for i := len(s) - 1; i >= 0; i-- {
		if r, ok := m.restoreEntry(s[i], forward); ok {
			moved = append(moved, r)
		}
	}
	// Reverse so the step stays in forward order on the future stack.
	for i, j := 0, len(moved)-1; i < j; i, j = i+1, j-1 {
		moved[i], moved[j] = moved[j], moved[i]
	}
	return moved
}

// restoreEntry writes one entry's target state back into its cell and
// returns the entry for the opposite stack. Returns false when the
// entry must be dropped: unresolvable cell, uninterpretable payload, or
// a delta that no longer matches the cell's shape.
func (m *Manager) restoreEntry(e *Entry, forward bool) (*Entry, bool) {
	h, ok := m.registry.Lookup(e.CellID)
	if !ok {
		m.log.Warn("dropping history entry for unregistered cell %q", e.CellID)
		return nil, false
	}

	current := h.Read()

	if e.HasFull {
		h.Write(e.FullValue)
		return &Entry{
			CellID:    e.CellID,
			Delta:     e.Delta,
			Timestamp: time.Now(),
			FullValue: current,
			HasFull:   true,
		}, true
	}

	if e.Delta == nil {
		m.log.Warn("dropping empty history entry for cell %q", e.CellID)
		return nil, false
	}

	if e.Delta.Kind == diff.KindOpaque {
		p, ok := h.(Patcher)
		if !ok {
			m.log.Warn("dropping opaque entry for cell %q: handle has no patcher", e.CellID)
			return nil, false
		}
		next, ok := p.ApplyPatch(current, e.Delta.Payload, forward)
		if !ok {
			m.log.Warn("dropping opaque entry for cell %q: patch not applicable", e.CellID)
			return nil, false
		}
		h.Write(next)
		return &Entry{CellID: e.CellID, Delta: e.Delta, Timestamp: time.Now()}, true
	}

	d := e.Delta
	if !forward {
		inv, err := diff.Reverse(d)
		if err != nil {
			m.log.Warn("dropping entry for cell %q: %v", e.CellID, err)
			return nil, false
		}
		d = inv
	}

	next, err := diff.Apply(current, d)
	if err != nil {
		m.log.Warn("dropping entry for cell %q: %v", e.CellID, err)
		return nil, false
	}

	h.Write(next)
	return &Entry{CellID: e.CellID, Delta: e.Delta, Timestamp: time.Now()}, true
}
