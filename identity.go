package reagent

import "unsafe"

// uintptrOf returns a stable identity key for p, used to fix a total
// order over cells when a commit must lock more than one of them. The
// resulting value is used purely as an opaque ordering/hashing key, never
// dereferenced.
func uintptrOf(p unsafe.Pointer) uintptr {
	return uintptr(p)
}
