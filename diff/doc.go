// Package diff computes, applies, and reverses structural deltas between
// arbitrary values.
//
// Values are the JSON-like subset of Go: map[string]any for objects,
// []any for arrays, and anything else as an opaque scalar. A delta is a
// compact description of the difference between two values:
//
//	d := diff.Create(oldValue, newValue) // nil means "no difference"
//	next, err := diff.Apply(oldValue, d) // reconstructs newValue
//	inv, err := diff.Reverse(d)          // delta from new back to old
//
// # Delta shapes
//
// A Delta is one of four kinds:
//   - KindValue: full replacement, {Before, After}
//   - KindObject: per-key changes {Changed, Added, Deleted}
//   - KindArray: per-index changes, one Item per touched index
//   - KindOpaque: a caller-supplied payload the engine never inspects
//
// # Limitations
//
// Array diffs are positional, not edit-distance based: an insertion or
// removal in the middle of a list reports every subsequent index as
// changed. This keeps deltas cheap for small or sparse changes; callers
// mutating large lists should prefer full-value tracking.
//
// Reversing an object delta cannot reconstruct deleted values (the
// engine never observed them); the reversed Added mapping carries the
// Unknown placeholder for those keys. Callers needing exact reversal
// must retain the prior value separately.
package diff
