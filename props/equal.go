package props

import (
	"reflect"
	"unsafe"
)

// Identical reports whether a and b are the same value: comparable values
// compare with ==, reference kinds compare by identity.
//
// Maps, channels and pointers are identical when they point at the same
// object. Slices are identical when they share a backing array start and
// length. Funcs are identical when they are the same closure. Values of
// different dynamic types are never identical. Identical never panics.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Func:
		// reflect reports the code pointer, shared by every closure of one
		// literal; the interface data word is the closure itself.
		return funcWord(&a) == funcWord(&b)
	}

	return equalComparable(a, b)
}

// funcWord returns the data word of an interface holding a func value.
func funcWord(v *any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(v))[1]
}

// equalComparable compares with ==, treating a runtime comparison panic
// (a struct or array holding an incomparable value) as not identical.
func equalComparable(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// IsSame reports whether a and b are identical or are plain records with the
// same keys holding identical values. Comparison is one level deep only:
// nested records must be the same object to match.
func IsSame(a, b any) bool {
	if Identical(a, b) {
		return true
	}

	ra, ok := AsRecord(a)
	if !ok {
		return false
	}
	rb, ok := AsRecord(b)
	if !ok {
		return false
	}

	if len(ra) != len(rb) {
		return false
	}
	for k, va := range ra {
		vb, ok := rb[k]
		if !ok || !Identical(va, vb) {
			return false
		}
	}
	return true
}
