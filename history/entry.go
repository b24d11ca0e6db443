package history

import (
	"time"

	"github.com/dshills/rewind/cell"
	"github.com/dshills/rewind/diff"
)

// Default bounds enforced by the stack manager.
const (
	// DefaultLimit bounds the past stack when neither the manager nor
	// the pushing cell configures a limit.
	DefaultLimit = 50

	// DefaultObjectThreshold is the object delta size above which a
	// full value is attached as a replay fallback.
	DefaultObjectThreshold = 10

	// DefaultArrayThreshold is the array delta item count above which a
	// full value is attached as a replay fallback.
	DefaultArrayThreshold = 20
)

// Entry records one tracked mutation of one cell. Entries are never
// mutated in place: moving between stacks produces a new entry with a
// fresh timestamp.
type Entry struct {
	// CellID names the mutated cell in the registry.
	CellID string

	// Delta describes the change. Nil when FullValue carries the whole
	// state (full-value tracking records no delta at all).
	Delta *diff.Delta

	// Timestamp is when the entry was recorded or last moved.
	Timestamp time.Time

	// FullValue is the value to restore verbatim, set when HasFull is
	// true. It takes precedence over Delta during replay.
	FullValue any

	// HasFull distinguishes an absent full value from a recorded nil.
	HasFull bool
}

// step is one undoable unit on a stack: a single entry for a plain
// push, several for a grouped operation.
type step []*Entry

// cellIDs returns the distinct cell ids the step touches, in entry
// order.
func (s step) cellIDs() []string {
	seen := make(map[string]bool, len(s))
	ids := make([]string, 0, len(s))
	for _, e := range s {
		if !seen[e.CellID] {
			seen[e.CellID] = true
			ids = append(ids, e.CellID)
		}
	}
	return ids
}

// buildEntry constructs an entry for a mutation per the entry policy:
// full value beats custom diff beats structural diff. Returns nil when
// there is no observable change to record.
func (m *Manager) buildEntry(id string, prev, next any, opts cell.Options) *Entry {
	if opts.UseFullValue {
		return &Entry{
			CellID:    id,
			Timestamp: time.Now(),
			FullValue: prev,
			HasFull:   true,
		}
	}

	if opts.Diff != nil {
		return &Entry{
			CellID:    id,
			Delta:     &diff.Delta{Kind: diff.KindOpaque, Payload: opts.Diff(prev, next)},
			Timestamp: time.Now(),
		}
	}

	d := diff.Create(prev, next)
	if d == nil {
		return nil
	}

	e := &Entry{
		CellID:    id,
		Delta:     d,
		Timestamp: time.Now(),
	}
	if m.needsFullValue(d) {
		e.FullValue = prev
		e.HasFull = true
	}
	return e
}

// needsFullValue reports whether the delta alone cannot be trusted to
// replay: either it is disproportionately large, or reversing it would
// lose values (object deletions, plain array replacements).
func (m *Manager) needsFullValue(d *diff.Delta) bool {
	switch d.Kind {
	case diff.KindObject:
		if d.Size() > m.objectThreshold {
			return true
		}
	case diff.KindArray:
		if len(d.Items) > m.arrayThreshold {
			return true
		}
	}
	return !diff.Reversible(d)
}
