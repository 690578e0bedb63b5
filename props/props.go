// Package props holds the property-set model and the equality rules the
// composer de-duplicates with.
//
// A property set is a plain string-keyed record. Only Set and
// map[string]any count as records; every other value (slices, structs,
// pointers, other map types) is rejected where a record is required.
package props

import (
	"maps"
	"slices"
)

// Set is a property set. Sets are immutable by convention: operators build
// fresh sets instead of mutating the ones they receive.
type Set map[string]any

// Clone returns a shallow copy of s. A nil set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Keys returns the keys of s in sorted order.
func (s Set) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// IsRecord reports whether v is a plain record.
func IsRecord(v any) bool {
	_, ok := AsRecord(v)
	return ok
}

// AsRecord returns v as a Set when it is a plain record. The returned set
// shares storage with v.
func AsRecord(v any) (Set, bool) {
	switch r := v.(type) {
	case Set:
		return r, r != nil
	case map[string]any:
		return Set(r), r != nil
	default:
		return nil, false
	}
}

// Assign shallow-merges sets into a fresh Set. Later keys win.
func Assign(sets ...Set) Set {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(Set, n)
	for _, s := range sets {
		maps.Copy(out, s)
	}
	return out
}

// MapValues returns a new Set with fn applied to every value of s.
// A nil s yields an empty Set.
func MapValues(s Set, fn func(any) any) Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = fn(v)
	}
	return out
}
