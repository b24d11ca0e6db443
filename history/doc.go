// Package history provides application-wide undo/redo over named state
// cells, recording changes as compact structural deltas.
//
// The Manager owns the past and future stacks, the cell registry, and
// the reentrancy suppression that keeps replay writes from recording
// themselves. It is an explicitly constructed handle, not ambient
// global state; a host constructs one and threads it through:
//
//	m := history.NewManager(history.WithLimit(100))
//	counter := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})
//
//	counter.Set(1)
//	counter.Set(2)
//	m.Undo() // counter back to 1
//	m.Redo() // counter forward to 2
//
// # Entries
//
// Each tracked mutation becomes an Entry: a delta from the diff
// package, or a full value when the cell opted out of diffing, the
// delta grew past the complexity thresholds, or the delta is not
// losslessly reversible. Entries move between the past and future
// stacks on undo/redo; a mutation outside replay clears the future
// stack.
//
// # Grouping
//
// Multiple mutations can collapse into one undoable unit:
//
//	m.Group(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// One Undo then reverts both cells.
//
// # Degraded paths
//
// Replay never fails the host. Entries naming unregistered cells are
// dropped silently, uninterpretable deltas fall back to the value-delta
// shortcut or abandon the step, and every degraded path reports through
// the diag logger handed to the Manager.
package history
