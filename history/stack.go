package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/rewind/cell"
	"github.com/dshills/rewind/config"
	"github.com/dshills/rewind/diag"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Manager owns the global undo/redo timeline: the past and future
// stacks, the cell registry, group batching, and the replay suppression
// flag. All public operations are serialized behind one mutex.
type Manager struct {
	mu sync.Mutex

	past   []step
	future []step

	// Grouping state
	grouping bool
	groupBuf step

	// applying is true while a replay write is in flight; pushes are
	// suppressed so undo/redo never record themselves.
	applying bool

	// Configuration
	limit           int
	objectThreshold int
	arrayThreshold  int

	registry *cell.Registry
	log      *diag.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit sets the default past-stack bound, used for cells that do
// not configure their own.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(l *diag.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l.WithComponent("history")
		}
	}
}

// WithRegistry supplies an externally owned cell registry.
func WithRegistry(r *cell.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithThresholds sets the delta complexity thresholds above which a
// full value is attached to entries.
func WithThresholds(object, array int) Option {
	return func(m *Manager) {
		if object > 0 {
			m.objectThreshold = object
		}
		if array > 0 {
			m.arrayThreshold = array
		}
	}
}

// NewManager creates a history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		limit:           DefaultLimit,
		objectThreshold: DefaultObjectThreshold,
		arrayThreshold:  DefaultArrayThreshold,
		registry:        cell.NewRegistry(),
		log:             diag.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the manager's cell registry.
func (m *Manager) Registry() *cell.Registry {
	return m.registry
}

// ApplyConfig retunes the manager from a loaded configuration. Used by
// hosts that watch a config file for live reload.
func (m *Manager) ApplyConfig(cfg config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.HistoryLimit > 0 {
		m.limit = cfg.HistoryLimit
		m.clampPastLocked(m.limit)
	}
	if cfg.ObjectDeltaThreshold > 0 {
		m.objectThreshold = cfg.ObjectDeltaThreshold
	}
	if cfg.ArrayDeltaThreshold > 0 {
		m.arrayThreshold = cfg.ArrayDeltaThreshold
	}
	if cfg.LogLevel != "" {
		m.log.SetLevel(diag.ParseLevel(cfg.LogLevel))
	}
}

// Push records a mutation of the identified cell. The caller decides
// whether a change is worth tracking; Push only skips when the diff
// reports no observable change or a replay write is in flight.
func (m *Manager) Push(cellID string, prev, next any, opts cell.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applying {
		return
	}

	e := m.buildEntry(cellID, prev, next, opts)
	if e == nil {
		return
	}

	if m.grouping {
		m.groupBuf = append(m.groupBuf, e)
		return
	}

	m.pushLocked(step{e}, opts.HistoryLimit)
}

// pushLocked appends a step to past, evicts oldest entries beyond the
// limit, and clears future.
func (m *Manager) pushLocked(s step, limit int) {
	m.past = append(m.past, s)
	m.future = nil

	if limit <= 0 {
		limit = m.limit
	}
	m.clampPastLocked(limit)
}

// clampPastLocked evicts the oldest steps until past fits the limit.
func (m *Manager) clampPastLocked(limit int) {
	if limit > 0 && len(m.past) > limit {
		excess := len(m.past) - limit
		m.past = m.past[excess:]
		m.log.Debug("evicted %d oldest history steps", excess)
	}
}

// BeginGroup starts diverting pushes into the group buffer. Nested
// calls are ignored.
func (m *Manager) BeginGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.grouping {
		return
	}
	m.grouping = true
	m.groupBuf = nil
}

// EndGroup appends the group buffer to past as a single undoable unit,
// subject to the usual limit and future-clearing rules, and discards
// the buffer. An empty buffer records nothing.
func (m *Manager) EndGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grouping {
		return
	}
	m.grouping = false

	if len(m.groupBuf) == 0 {
		m.groupBuf = nil
		return
	}

	m.pushLocked(m.groupBuf, 0)
	m.groupBuf = nil
}

// CancelGroup discards the group buffer without recording.
// Note: mutations already made still affect the cells.
func (m *Manager) CancelGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grouping = false
	m.groupBuf = nil
}

// IsGrouping returns true while a group is being recorded.
func (m *Manager) IsGrouping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grouping
}

// Clear resets both stacks. The registry and cell values are untouched.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = nil
	m.future = nil
	m.grouping = false
	m.groupBuf = nil
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// UndoCount returns the number of undoable steps.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past)
}

// RedoCount returns the number of redoable steps.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future)
}

// Replaying reports whether a replay write is in flight. False before
// and after every public call; observable only from reentrant code.
func (m *Manager) Replaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applying
}

// SetLimit changes the default past-stack bound, evicting oldest steps
// if the stack is already larger.
func (m *Manager) SetLimit(n int) {
	if n <= 0 {
		n = DefaultLimit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.limit = n
	m.clampPastLocked(n)
}

// Limit returns the default past-stack bound.
func (m *Manager) Limit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit
}

// StepInfo provides read-only info about one undoable step.
type StepInfo struct {
	CellIDs   []string  // Cells the step touches
	Timestamp time.Time // When the step was recorded or last moved
	Entries   int       // Number of entries in the step
}

func stepInfo(s step) StepInfo {
	info := StepInfo{
		CellIDs: s.cellIDs(),
		Entries: len(s),
	}
	if len(s) > 0 {
		info.Timestamp = s[len(s)-1].Timestamp
	}
	return info
}

// UndoInfo returns info about the undoable steps, oldest first.
func (m *Manager) UndoInfo() []StepInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]StepInfo, len(m.past))
	for i, s := range m.past {
		result[i] = stepInfo(s)
	}
	return result
}

// RedoInfo returns info about the redoable steps, oldest first.
func (m *Manager) RedoInfo() []StepInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]StepInfo, len(m.future))
	for i, s := range m.future {
		result[i] = stepInfo(s)
	}
	return result
}

// PeekUndo returns info about the next undo step without removing it.
func (m *Manager) PeekUndo() (StepInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return StepInfo{}, false
	}
	return stepInfo(m.past[len(m.past)-1]), true
}

// PeekRedo returns info about the next redo step without removing it.
func (m *Manager) PeekRedo() (StepInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return StepInfo{}, false
	}
	return stepInfo(m.future[len(m.future)-1]), true
}
