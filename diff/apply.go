package diff

import (
	"slices"
	"sort"
)

// Apply transforms value according to the delta and returns the result.
// A nil delta returns the value unchanged.
//
// When the delta's shape does not match the value's runtime shape the
// operation is a no-op: the original value is returned together with
// ErrShapeMismatch. This is a defined fallback path, not a failure of
// the host; callers decide whether to degrade further.
func Apply(value any, d *Delta) (any, error) {
	if d == nil {
		return value, nil
	}

	switch d.Kind {
	case KindValue:
		return d.After, nil

	case KindArray:
		arr, ok := value.([]any)
		if !ok {
			return value, ErrShapeMismatch
		}
		return applyArray(arr, d.Items), nil

	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return value, ErrShapeMismatch
		}
		return applyObject(obj, d), nil

	default:
		// Opaque payloads are interpreted by the caller-supplied patch
		// function, never here.
		return value, ErrUnknownDeltaShape
	}
}

// applyArray applies per-index changes in three passes: removals by
// descending index, then insertions in their listed order, then plain
// replacements. Removing in ascending order would shift the indices of
// the remaining pending removals.
func applyArray(arr []any, items []Item) []any {
	out := slices.Clone(arr)

	var removed []Item
	var added []Item
	var replaced []Item
	for _, it := range items {
		switch {
		case it.Removed:
			removed = append(removed, it)
		case it.Added:
			added = append(added, it)
		default:
			replaced = append(replaced, it)
		}
	}

	sort.Slice(removed, func(i, j int) bool {
		return removed[i].Index > removed[j].Index
	})
	for _, it := range removed {
		if it.Index >= 0 && it.Index < len(out) {
			out = slices.Delete(out, it.Index, it.Index+1)
		}
	}

	for _, it := range added {
		idx := it.Index
		if idx < 0 {
			idx = 0
		}
		if idx > len(out) {
			idx = len(out)
		}
		out = slices.Insert(out, idx, it.Value)
	}

	for _, it := range replaced {
		if it.Index >= 0 && it.Index < len(out) {
			out[it.Index] = it.Value
		}
	}

	return out
}

// applyObject applies per-key changes to a shallow copy of obj. A
// changed entry whose nested apply reports a shape mismatch keeps its
// current value; the rest of the delta still applies.
func applyObject(obj map[string]any, d *Delta) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for key, sub := range d.Changed {
		next, err := Apply(out[key], sub)
		if err != nil {
			continue
		}
		out[key] = next
	}

	for key, val := range d.Added {
		out[key] = val
	}

	for _, key := range d.Deleted {
		delete(out, key)
	}

	return out
}
