package history

// Group runs fn with grouping active, collapsing every push fn makes
// into one undoable step. The group is always ended, even if fn panics.
func (m *Manager) Group(fn func()) {
	m.BeginGroup()
	defer m.EndGroup()
	fn()
}

// Transaction runs fn with grouping active. On a nil return the group
// is recorded as one step; on error (or panic) the buffered mutations
// are reverted and nothing is recorded.
func (m *Manager) Transaction(fn func() error) (err error) {
	m.BeginGroup()
	defer func() {
		if r := recover(); r != nil {
			m.rollbackGroup()
			panic(r)
		}
		if err != nil {
			m.rollbackGroup()
			return
		}
		m.EndGroup()
	}()
	return fn()
}

// rollbackGroup reverts the buffered group mutations newest first and
// discards the buffer.
func (m *Manager) rollbackGroup() {
	m.mu.Lock()
	buf := m.groupBuf
	m.grouping = false
	m.groupBuf = nil
	release := m.beginApplyLocked()
	m.mu.Unlock()

	for i := len(buf) - 1; i >= 0; i-- {
		m.restoreEntry(buf[i], false)
	}

	m.mu.Lock()
	release()
	m.mu.Unlock()
}

// GroupScope is a handle over an open group for callers that cannot
// wrap their work in a closure. Exactly one of End or Cancel takes
// effect; later calls are no-ops.
type GroupScope struct {
	m    *Manager
	done bool
}

// BeginScope opens a group and returns its scope handle.
func (m *Manager) BeginScope() *GroupScope {
	m.BeginGroup()
	return &GroupScope{m: m}
}

// End records the group as one step.
func (s *GroupScope) End() {
	if s.done {
		return
	}
	s.done = true
	s.m.EndGroup()
}

// Cancel discards the group without recording.
func (s *GroupScope) Cancel() {
	if s.done {
		return
	}
	s.done = true
	s.m.CancelGroup()
}

// Checkpoint marks a position in the undo timeline.
type Checkpoint struct {
	depth int
}

// Checkpoint returns a marker for the current position. UndoToCheckpoint
// and RedoToCheckpoint walk the timeline back to it.
func (m *Manager) Checkpoint() Checkpoint {
	return Checkpoint{depth: m.UndoCount()}
}

// UndoToCheckpoint undoes steps until the timeline is back at cp.
// Steps recorded against since-unregistered cells are skipped.
func (m *Manager) UndoToCheckpoint(cp Checkpoint) error {
	for m.UndoCount() > cp.depth {
		before := m.UndoCount()
		err := m.Undo()
		if err != nil && m.UndoCount() == before {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes steps until the timeline is forward at cp.
// Unreachable checkpoints (the future was cleared by a new mutation, or
// the past was evicted below the marker) surface as ErrNothingToRedo.
func (m *Manager) RedoToCheckpoint(cp Checkpoint) error {
	for m.UndoCount() < cp.depth {
		before := m.UndoCount()
		err := m.Redo()
		if err != nil && m.UndoCount() == before {
			return err
		}
	}
	return nil
}
