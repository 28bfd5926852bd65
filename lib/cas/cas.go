// Package cas defines a generic, lock-free compare-and-set cell, Ref[T],
// the canonical leaf state reagents read, write, and rendezvous over.
//
// This generalizes the teacher package's mutex-guarded, string-valued
// cas.Register into a type-parameterized cell built directly on
// sync/atomic.Pointer, so a single hardware CAS instruction — rather
// than a critical section — is what a lone CompareAndSet or Swap on the
// cell costs. (A reagent Reaction commit still validates and applies its
// CASes under the root package's stripe locks.) Of the original Store
// interface (context-aware, versioned, suited to a remote or persistent
// CAS backend) only the compare-and-set shape remains, as CompareAndSet,
// for callers migrating from that model onto an in-memory Ref.
package cas

import (
	"sync/atomic"
	"unsafe"
)

// Ref is a lock-free, generic compare-and-set cell holding a *T. The zero
// value is not ready to use; construct one with NewRef.
type Ref[T any] struct {
	v atomic.Pointer[T]
}

// NewRef constructs a Ref holding the given initial value.
func NewRef[T any](initial T) *Ref[T] {
	r := &Ref[T]{}
	r.v.Store(&initial)
	return r
}

// Get returns the cell's current value.
func (r *Ref[T]) Get() T {
	return *r.v.Load()
}

// CompareAndSet atomically replaces the cell's value with new, provided
// its current value is old (compared by ==; T must be comparable for
// this to be meaningful — Snapshot/TryCASAny below operate on box
// identity instead, for types that are not comparable). It reports
// whether the swap took effect.
func (r *Ref[T]) CompareAndSet(old, new T) bool {
	for {
		cur := r.v.Load()
		if any(*cur) != any(old) {
			return false
		}
		boxed := new
		if r.v.CompareAndSwap(cur, &boxed) {
			return true
		}
		// lost a race against a concurrent writer; the value might still
		// equal old, so retry the comparison against the fresh pointer.
	}
}

// Swap unconditionally replaces the cell's value and returns the
// previous one.
func (r *Ref[T]) Swap(new T) T {
	boxed := new
	old := r.v.Swap(&boxed)
	return *old
}

// TryCASAny, GetAny and Identity implement reagent.CASCell, letting a Ref
// participate, type-erased, in a reagent.Reaction's CAS log. They are not
// meant to be called directly by users of this package; they exist,
// exported, only because Go requires an interface's methods to be
// exported for a type in another package to implement it. old and new
// are boxed *T values (the box Snapshot returns, and a freshly
// allocated *T for the new value, as the root package's Upd and Swap
// build them), not raw T.
func (r *Ref[T]) TryCASAny(old, new any) bool {
	return r.v.CompareAndSwap(old.(*T), new.(*T))
}

func (r *Ref[T]) GetAny() any {
	return r.v.Load()
}

func (r *Ref[T]) Identity() uintptr {
	return uintptr(unsafe.Pointer(r))
}

// Snapshot returns the cell's current boxed pointer and the value it
// points to, for use by reagent constructors (see the root package's Upd
// and Swap helpers) that need to record a CAS against exactly the value
// they last observed, including its identity, not just its ==-equality.
func (r *Ref[T]) Snapshot() (boxed *T, value T) {
	p := r.v.Load()
	return p, *p
}
