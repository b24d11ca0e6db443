// Package cell defines the contract between the history engine and the
// state cells it tracks: the read/write handle, per-cell tracking
// options, and the registry that resolves cell identifiers to live
// handles.
//
// The reactive cell primitive itself (creation, subscription, change
// notification) lives outside this module; the engine only ever sees a
// Handle.
package cell

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is the capability the history engine needs over one cell: read
// its current value and write a replacement. Implementations are
// provided by the host's state layer.
type Handle interface {
	// Read returns the cell's current value.
	Read() any

	// Write replaces the cell's current value.
	Write(v any)
}

// Options configures tracking for one cell.
type Options struct {
	// ID identifies the cell in history entries. Generated when empty.
	ID string

	// HistoryLimit bounds the past stack when this cell pushes an
	// entry. Zero or negative uses the manager's default.
	HistoryLimit int

	// ShouldTrack, when set, decides per change whether the change is
	// recorded at all. The engine trusts this predicate.
	ShouldTrack func(prev, next any) bool

	// Diff, when set, replaces the structural diff for this cell. Its
	// result is stored as an opaque delta; the engine never inspects it.
	Diff func(prev, next any) any

	// Patch, when set, interprets opaque deltas produced by Diff during
	// replay. Ignored for cells without a custom Diff.
	Patch func(value, delta any) any

	// UseFullValue records the previous value verbatim instead of
	// diffing. Takes precedence over Diff.
	UseFullValue bool
}

// NewID returns a generated cell identifier.
func NewID() string {
	return uuid.NewString()
}

// Value is a minimal in-memory Handle. Hosts with a real state layer
// implement Handle themselves; Value covers wiring and tests.
type Value struct {
	mu sync.RWMutex
	v  any
}

// NewValue creates a Value holding v.
func NewValue(v any) *Value {
	return &Value{v: v}
}

// Read returns the current value.
func (c *Value) Read() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Write replaces the current value.
func (c *Value) Write(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}
