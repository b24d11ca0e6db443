package cell

import "sync"

// Registry maps cell identifiers to live handles. All operations are
// O(1). The registry holds no ownership over cell lifetime: removing a
// cell does not touch history entries already recorded against it;
// those entries become unresolvable no-ops at replay.
type Registry struct {
	mu    sync.RWMutex
	cells map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cells: make(map[string]Handle),
	}
}

// Register adds or replaces the handle for id. Last write wins.
func (r *Registry) Register(id string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cells[id] = h
}

// Unregister removes id. Unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cells, id)
}

// Lookup returns the handle for id, or false when the id is not
// registered.
func (r *Registry) Lookup(id string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.cells[id]
	return h, ok
}

// Len returns the number of registered cells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cells)
}
