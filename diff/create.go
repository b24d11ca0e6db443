package diff

import "reflect"

// Create computes the delta that transforms oldValue into newValue.
// It returns nil when the two values are equal.
//
// Composite handling requires matching shapes on both sides: two
// map[string]any values produce an object delta, two []any values
// produce an array delta. Any other pairing, including an array against
// a non-array, is treated as a full replacement and produces a value
// delta.
func Create(oldValue, newValue any) *Delta {
	if equal(oldValue, newValue) {
		return nil
	}

	if om, ok := oldValue.(map[string]any); ok {
		if nm, ok := newValue.(map[string]any); ok {
			return createObject(om, nm)
		}
	}

	if oa, ok := oldValue.([]any); ok {
		if na, ok := newValue.([]any); ok {
			return createArray(oa, na)
		}
	}

	return &Delta{Kind: KindValue, Before: oldValue, After: newValue}
}

// createObject diffs two objects key by key. Keys present on both sides
// are diffed recursively; added keys carry their full new value.
func createObject(oldObj, newObj map[string]any) *Delta {
	var changed map[string]*Delta
	var added map[string]any
	var deleted []string

	for key, oldVal := range oldObj {
		newVal, exists := newObj[key]
		if !exists {
			deleted = append(deleted, key)
			continue
		}
		if sub := Create(oldVal, newVal); sub != nil {
			if changed == nil {
				changed = make(map[string]*Delta)
			}
			changed[key] = sub
		}
	}

	for key, newVal := range newObj {
		if _, exists := oldObj[key]; !exists {
			if added == nil {
				added = make(map[string]any)
			}
			added[key] = newVal
		}
	}

	if len(changed) == 0 && len(added) == 0 && len(deleted) == 0 {
		return nil
	}

	return &Delta{
		Kind:    KindObject,
		Changed: changed,
		Added:   added,
		Deleted: deleted,
	}
}

// createArray diffs two arrays positionally up to the longer length.
// No move detection is attempted: an element shifted by an insertion is
// reported as changed at every subsequent index.
func createArray(oldArr, newArr []any) *Delta {
	var items []Item

	longest := len(oldArr)
	if len(newArr) > longest {
		longest = len(newArr)
	}

	for i := 0; i < longest; i++ {
		switch {
		case i >= len(oldArr):
			items = append(items, Item{Index: i, Value: newArr[i], Added: true})
		case i >= len(newArr):
			items = append(items, Item{Index: i, Value: oldArr[i], Removed: true})
		case !equal(oldArr[i], newArr[i]):
			items = append(items, Item{Index: i, Value: newArr[i]})
		}
	}

	if len(items) == 0 {
		return nil
	}

	return &Delta{Kind: KindArray, Items: items}
}

// equal is the identity predicate for "no observable change".
func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
