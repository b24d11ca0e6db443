package history

import (
	"github.com/dshills/rewind/cell"
)

// Tracked wraps a cell handle so that writes through Set record history
// entries. Hosts whose state layer already intercepts writes can skip
// Tracked and call Push themselves; Tracked covers everyone else.
type Tracked struct {
	id   string
	h    cell.Handle
	opts cell.Options
	m    *Manager
}

// Track registers a handle under the options' ID (generated when empty)
// and returns the tracked wrapper. The wrapper, not the raw handle, is
// what the registry resolves during replay.
func (m *Manager) Track(h cell.Handle, opts cell.Options) *Tracked {
	if opts.ID == "" {
		opts.ID = cell.NewID()
	}
	t := &Tracked{
		id:   opts.ID,
		h:    h,
		opts: opts,
		m:    m,
	}
	m.registry.Register(opts.ID, t)
	return t
}

// Untrack removes the cell from the registry. Entries already recorded
// against it stay on the stacks and become no-ops at replay.
func (m *Manager) Untrack(id string) {
	m.registry.Unregister(id)
}

// ID returns the cell's registry identifier.
func (t *Tracked) ID() string {
	return t.id
}

// Get returns the cell's current value.
func (t *Tracked) Get() any {
	return t.h.Read()
}

// Set writes a new value and records the change, subject to the cell's
// ShouldTrack predicate and the manager's replay suppression.
func (t *Tracked) Set(v any) {
	prev := t.h.Read()
	t.h.Write(v)

	if t.opts.ShouldTrack != nil && !t.opts.ShouldTrack(prev, v) {
		return
	}
	t.m.Push(t.id, prev, v, t.opts)
}

// Read implements cell.Handle.
func (t *Tracked) Read() any {
	return t.h.Read()
}

// Write implements cell.Handle. It writes without recording; replay
// uses this path.
func (t *Tracked) Write(v any) {
	t.h.Write(v)
}

// ApplyPatch implements Patcher for cells configured with a custom
// patch function. The patch function is direction-agnostic: the payload
// produced by the custom diff is expected to encode whatever the cell
// needs for both directions.
func (t *Tracked) ApplyPatch(value, payload any, forward bool) (any, bool) {
	if t.opts.Patch == nil {
		return nil, false
	}
	return t.opts.Patch(value, payload), true
}
