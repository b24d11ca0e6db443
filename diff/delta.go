package diff

import (
	"errors"
	"fmt"
)

// Errors returned by delta operations.
var (
	// ErrShapeMismatch indicates a delta was applied to a value whose
	// runtime shape does not match the delta's kind. Recoverable: Apply
	// returns the original value alongside it.
	ErrShapeMismatch = errors.New("delta shape does not match value")

	// ErrUnknownDeltaShape indicates a delta whose kind matches none of
	// the known shapes. Internally produced deltas never trigger this;
	// it signals a custom-diff contract violation.
	ErrUnknownDeltaShape = errors.New("unknown delta shape")
)

// Kind discriminates the shape of a Delta.
type Kind uint8

const (
	// KindValue is a full replacement of one value by another.
	KindValue Kind = iota

	// KindObject describes per-key changes to a map[string]any.
	KindObject

	// KindArray describes per-index changes to a []any.
	KindArray

	// KindOpaque carries a caller-defined payload produced by a custom
	// diff function. The engine stores and moves it without inspection.
	KindOpaque
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Delta describes the difference between two values. A nil *Delta means
// "no difference". Deltas are immutable once produced; Reverse returns a
// new Delta rather than mutating in place.
//
// Only the fields for the active Kind are populated.
type Delta struct {
	Kind Kind

	// Value delta: full replacement.
	Before any
	After  any

	// Object delta.
	Changed map[string]*Delta // keys present on both sides with differing values
	Added   map[string]any    // keys only on the new side, with their full values
	Deleted []string          // keys only on the old side

	// Array delta. An index appears at most once.
	Items []Item

	// Opaque delta payload.
	Payload any
}

// Item records a change at one array index.
type Item struct {
	// Index is the position in the array the change applies to.
	Index int

	// Value is the new element for additions and replacements, and the
	// removed element for removals (kept so a reversed removal can
	// re-insert it).
	Value any

	// Added marks a positional insertion at Index.
	Added bool

	// Removed marks a removal of the element at Index.
	Removed bool
}

// Unknown is the placeholder carried by a reversed object delta for keys
// whose deleted values the engine never observed.
var Unknown = unknownValue{}

type unknownValue struct{}

func (unknownValue) String() string { return "<unknown>" }

// IsUnknown reports whether v is the lost-value placeholder produced by
// reversing a deletion.
func IsUnknown(v any) bool {
	_, ok := v.(unknownValue)
	return ok
}

// String returns a short human-readable summary of the delta.
func (d *Delta) String() string {
	if d == nil {
		return "<no change>"
	}
	switch d.Kind {
	case KindValue:
		return fmt.Sprintf("value(%v -> %v)", d.Before, d.After)
	case KindObject:
		return fmt.Sprintf("object(%d changed, %d added, %d deleted)",
			len(d.Changed), len(d.Added), len(d.Deleted))
	case KindArray:
		return fmt.Sprintf("array(%d items)", len(d.Items))
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Size returns the number of leaf changes the delta carries. Used by the
// history layer to decide when a delta is disproportionately large.
func (d *Delta) Size() int {
	if d == nil {
		return 0
	}
	switch d.Kind {
	case KindValue, KindOpaque:
		return 1
	case KindObject:
		return len(d.Changed) + len(d.Added) + len(d.Deleted)
	case KindArray:
		return len(d.Items)
	default:
		return 1
	}
}
