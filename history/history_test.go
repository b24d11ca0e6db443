package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rewind/cell"
)

func TestUndoRedoScalar(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	c.Set(2)

	require.NoError(t, m.Undo())
	assert.Equal(t, 1, c.Get())

	require.NoError(t, m.Undo())
	assert.Equal(t, 0, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, 1, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, 2, c.Get())
}

func TestUndoEmptyStack(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, m.Redo(), ErrNothingToRedo)
}

func TestUndoObjectDelta(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(map[string]any{"name": "a", "count": 1}), cell.Options{ID: "obj"})

	c.Set(map[string]any{"name": "b", "count": 1})

	require.NoError(t, m.Undo())
	assert.Equal(t, map[string]any{"name": "a", "count": 1}, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, map[string]any{"name": "b", "count": 1}, c.Get())
}

func TestUndoObjectDeletionRestoresExactly(t *testing.T) {
	// Deleting a key makes the delta lossy, so the entry carries a full
	// value and undo must restore the deleted key's original value.
	m := NewManager()
	before := map[string]any{"keep": 1, "drop": "original"}
	c := m.Track(cell.NewValue(before), cell.Options{ID: "obj"})

	c.Set(map[string]any{"keep": 1})

	require.NoError(t, m.Undo())
	assert.Equal(t, before, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, map[string]any{"keep": 1}, c.Get())
}

func TestUndoArrayDelta(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue([]any{1, 2, 3}), cell.Options{ID: "arr"})

	c.Set([]any{1, 3, 4})

	require.NoError(t, m.Undo())
	assert.Equal(t, []any{1, 2, 3}, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, []any{1, 3, 4}, c.Get())
}

func TestNoopWriteRecordsNothing(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(42), cell.Options{ID: "counter"})

	c.Set(42)

	assert.False(t, m.CanUndo())
}

func TestEvictionAtLimit(t *testing.T) {
	m := NewManager(WithLimit(2))
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	c.Set(2)
	c.Set(3)

	assert.Equal(t, 2, m.UndoCount())

	require.NoError(t, m.Undo())
	require.NoError(t, m.Undo())
	assert.Equal(t, 1, c.Get())
	assert.ErrorIs(t, m.Undo(), ErrNothingToUndo)
}

func TestPerCellLimitOverridesDefault(t *testing.T) {
	m := NewManager(WithLimit(10))
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter", HistoryLimit: 1})

	c.Set(1)
	c.Set(2)

	assert.Equal(t, 1, m.UndoCount())
}

func TestSetLimitShrinksExistingStack(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	for i := 1; i <= 5; i++ {
		c.Set(i)
	}
	require.Equal(t, 5, m.UndoCount())

	m.SetLimit(2)
	assert.Equal(t, 2, m.UndoCount())
	assert.Equal(t, 2, m.Limit())
}

func TestNewMutationClearsFuture(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	c.Set(2)
	require.NoError(t, m.Undo())
	require.True(t, m.CanRedo())

	c.Set(9)

	assert.False(t, m.CanRedo())
	assert.ErrorIs(t, m.Redo(), ErrNothingToRedo)
}

func TestRedoDoesNotClearFuture(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	c.Set(2)
	require.NoError(t, m.Undo())
	require.NoError(t, m.Undo())
	require.Equal(t, 2, m.RedoCount())

	require.NoError(t, m.Redo())
	assert.Equal(t, 1, m.RedoCount())
	require.NoError(t, m.Redo())
	assert.Equal(t, 2, c.Get())
}

func TestGroupUndoneAsOneStep(t *testing.T) {
	m := NewManager()
	a := m.Track(cell.NewValue("a0"), cell.Options{ID: "a"})
	b := m.Track(cell.NewValue("b0"), cell.Options{ID: "b"})
	c := m.Track(cell.NewValue("c0"), cell.Options{ID: "c"})

	m.Group(func() {
		a.Set("a1")
		b.Set("b1")
		c.Set("c1")
	})

	require.Equal(t, 1, m.UndoCount())

	require.NoError(t, m.Undo())
	assert.Equal(t, "a0", a.Get())
	assert.Equal(t, "b0", b.Get())
	assert.Equal(t, "c0", c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, "a1", a.Get())
	assert.Equal(t, "b1", b.Get())
	assert.Equal(t, "c1", c.Get())
}

func TestGroupSameCellUnwindsInOrder(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	m.Group(func() {
		c.Set(1)
		c.Set(2)
		c.Set(3)
	})

	require.NoError(t, m.Undo())
	assert.Equal(t, 0, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, 3, c.Get())
}

func TestEmptyGroupRecordsNothing(t *testing.T) {
	m := NewManager()

	m.Group(func() {})

	assert.False(t, m.CanUndo())
}

func TestCancelGroupDiscardsBuffer(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	m.BeginGroup()
	c.Set(1)
	m.CancelGroup()

	// The mutation stands; only the recording is discarded.
	assert.Equal(t, 1, c.Get())
	assert.False(t, m.CanUndo())
}

func TestGroupScopeIdempotent(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	s := m.BeginScope()
	c.Set(1)
	s.End()
	s.Cancel() // no-op after End
	s.End()    // no-op

	assert.Equal(t, 1, m.UndoCount())
}

func TestTransactionCommit(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	err := m.Transaction(func() error {
		c.Set(1)
		c.Set(2)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Get())
	assert.Equal(t, 1, m.UndoCount())
}

func TestTransactionRollback(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	boom := errors.New("boom")
	err := m.Transaction(func() error {
		c.Set(1)
		c.Set(2)
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, c.Get())
	assert.False(t, m.CanUndo())
	assert.False(t, m.IsGrouping())
}

func TestUnregisteredCellDroppedAtReplay(t *testing.T) {
	m := NewManager()
	a := m.Track(cell.NewValue(0), cell.Options{ID: "a"})
	b := m.Track(cell.NewValue(0), cell.Options{ID: "b"})

	a.Set(1)
	b.Set(1)
	m.Untrack("b")

	// The b step is consumed but restores nothing.
	assert.ErrorIs(t, m.Undo(), ErrNothingToUndo)
	assert.Equal(t, 1, b.Get())
	assert.Equal(t, 1, m.UndoCount())

	require.NoError(t, m.Undo())
	assert.Equal(t, 0, a.Get())
}

func TestFullValueTracking(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(map[string]any{"v": 1}), cell.Options{ID: "blob", UseFullValue: true})

	c.Set(map[string]any{"v": 2})
	c.Set(map[string]any{"v": 3})

	require.NoError(t, m.Undo())
	assert.Equal(t, map[string]any{"v": 2}, c.Get())

	require.NoError(t, m.Undo())
	assert.Equal(t, map[string]any{"v": 1}, c.Get())

	require.NoError(t, m.Redo())
	require.NoError(t, m.Redo())
	assert.Equal(t, map[string]any{"v": 3}, c.Get())
}

func TestLargeObjectDeltaRestoresExactly(t *testing.T) {
	m := NewManager()
	before := make(map[string]any)
	after := make(map[string]any)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		before[k] = k + "0"
		after[k] = k + "1"
	}
	c := m.Track(cell.NewValue(before), cell.Options{ID: "wide"})

	c.Set(after)

	require.NoError(t, m.Undo())
	assert.Equal(t, before, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, after, c.Get())
}

func TestCustomDiffAndPatch(t *testing.T) {
	type swap struct{ old, new int }

	m := NewManager()
	c := m.Track(cell.NewValue(10), cell.Options{
		ID: "custom",
		Diff: func(prev, next any) any {
			return swap{old: prev.(int), new: next.(int)}
		},
		Patch: func(value, delta any) any {
			s := delta.(swap)
			if value == s.new {
				return s.old
			}
			return s.new
		},
	})

	c.Set(20)

	require.NoError(t, m.Undo())
	assert.Equal(t, 10, c.Get())

	require.NoError(t, m.Redo())
	assert.Equal(t, 20, c.Get())
}

func TestShouldTrackPredicate(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{
		ID: "filtered",
		ShouldTrack: func(prev, next any) bool {
			return next.(int)%2 == 0
		},
	})

	c.Set(1) // untracked
	c.Set(2) // tracked

	assert.Equal(t, 1, m.UndoCount())

	require.NoError(t, m.Undo())
	assert.Equal(t, 1, c.Get())
}

func TestReplaySuppressionScoped(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)

	assert.False(t, m.Replaying())
	require.NoError(t, m.Undo())
	assert.False(t, m.Replaying())

	// The undo's own write must not have recorded a new step.
	assert.Equal(t, 0, m.UndoCount())
	assert.Equal(t, 1, m.RedoCount())
}

func TestPushDuringReplayIsSuppressed(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)

	// Simulate a reactive host echoing writes back through Set.
	m.mu.Lock()
	release := m.beginApplyLocked()
	m.mu.Unlock()
	c.Set(99)
	m.mu.Lock()
	release()
	m.mu.Unlock()

	assert.Equal(t, 99, c.Get())
	assert.Equal(t, 1, m.UndoCount())
	assert.False(t, m.CanRedo())
}

func TestClearResetsStacksNotValues(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	require.NoError(t, m.Undo())

	m.Clear()

	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.Equal(t, 0, c.Get())
}

func TestStepInfo(t *testing.T) {
	m := NewManager()
	a := m.Track(cell.NewValue(0), cell.Options{ID: "a"})
	b := m.Track(cell.NewValue(0), cell.Options{ID: "b"})

	a.Set(1)
	m.Group(func() {
		a.Set(2)
		b.Set(1)
	})

	infos := m.UndoInfo()
	require.Len(t, infos, 2)
	assert.Equal(t, []string{"a"}, infos[0].CellIDs)
	assert.Equal(t, []string{"a", "b"}, infos[1].CellIDs)
	assert.Equal(t, 2, infos[1].Entries)

	top, ok := m.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, top.CellIDs)
	assert.False(t, top.Timestamp.IsZero())

	_, ok = m.PeekRedo()
	assert.False(t, ok)
}

func TestCheckpointRoundTrip(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	cp := m.Checkpoint()
	c.Set(2)
	c.Set(3)

	require.NoError(t, m.UndoToCheckpoint(cp))
	assert.Equal(t, 1, c.Get())

	require.NoError(t, m.Redo())
	require.NoError(t, m.Redo())
	assert.Equal(t, 3, c.Get())
}

func TestCheckpointUnreachableAfterNewMutation(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{ID: "counter"})

	c.Set(1)
	c.Set(2)
	cp := m.Checkpoint()

	require.NoError(t, m.Undo())
	require.NoError(t, m.Undo())
	c.Set(9) // clears the future; cp is now ahead of a dead branch

	assert.ErrorIs(t, m.RedoToCheckpoint(cp), ErrNothingToRedo)
}

func TestGeneratedCellID(t *testing.T) {
	m := NewManager()
	c := m.Track(cell.NewValue(0), cell.Options{})

	assert.NotEmpty(t, c.ID())
	_, ok := m.Registry().Lookup(c.ID())
	assert.True(t, ok)
}
