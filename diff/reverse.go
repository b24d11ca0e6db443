package diff

// Reverse returns the structural inverse of the delta: applying the
// result to the "after" value moves back toward the "before" value.
// Reversing nil is nil.
//
// The inverse is structural, not semantic. Reversing an object delta's
// deletions cannot reconstruct the values the engine never observed;
// the reversed Added mapping carries the Unknown placeholder for those
// keys. Reversing a plain array replacement keeps the recorded (new)
// value for the same reason. Callers that need exact restoration keep a
// full value alongside the delta; the history layer does exactly that.
func Reverse(d *Delta) (*Delta, error) {
	if d == nil {
		return nil, nil
	}

	switch d.Kind {
	case KindValue:
		return &Delta{Kind: KindValue, Before: d.After, After: d.Before}, nil

	case KindArray:
		items := make([]Item, len(d.Items))
		for i, it := range d.Items {
			items[i] = Item{
				Index:   it.Index,
				Value:   it.Value,
				Added:   it.Removed,
				Removed: it.Added,
			}
		}
		return &Delta{Kind: KindArray, Items: items}, nil

	case KindObject:
		var changed map[string]*Delta
		if len(d.Changed) > 0 {
			changed = make(map[string]*Delta, len(d.Changed))
			for key, sub := range d.Changed {
				inv, err := Reverse(sub)
				if err != nil {
					return nil, err
				}
				changed[key] = inv
			}
		}

		// Keys added by the delta are deleted by its inverse.
		var deleted []string
		for key := range d.Added {
			deleted = append(deleted, key)
		}

		// Keys deleted by the delta must be re-added, but their values
		// were lost at diff time.
		var added map[string]any
		if len(d.Deleted) > 0 {
			added = make(map[string]any, len(d.Deleted))
			for _, key := range d.Deleted {
				added[key] = Unknown
			}
		}

		return &Delta{
			Kind:    KindObject,
			Changed: changed,
			Added:   added,
			Deleted: deleted,
		}, nil

	default:
		return nil, ErrUnknownDeltaShape
	}
}

// Reversible reports whether applying Reverse(d) to the "after" value
// reconstructs the "before" value exactly. Object deletions and plain
// array replacements lose the prior value, so deltas containing either
// are not reversible. Array additions and removals both carry the
// element they touch and reverse exactly.
func Reversible(d *Delta) bool {
	if d == nil {
		return true
	}
	switch d.Kind {
	case KindValue:
		return true
	case KindArray:
		for _, it := range d.Items {
			if !it.Added && !it.Removed {
				return false
			}
		}
		return true
	case KindObject:
		if len(d.Deleted) > 0 {
			return false
		}
		for _, sub := range d.Changed {
			if !Reversible(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
