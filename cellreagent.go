package reagent

import "github.com/dedis/reagent/lib/cas"

// Upd builds the canonical single-cell update reagent: on each attempt
// it reads ref's current value, computes f(old), and records a CAS of
// old -> f(old) in the reaction, returning old. Like any other leaf, Upd
// never commits on its own — only the terminal Commit node (which
// React/TryReactNow append automatically) actually applies the reaction
// — so composing Upd with further stages before committing is always
// safe. This is the `upd` combinator the distilled spec's rendezvous
// scenario implies: two callers racing Upd(cell, add1) and
// Upd(cell, double) against the same cell each observe the value they
// raced against, and the cell ends up holding whichever update commits.
func Upd[T any](ref *cas.Ref[T], f func(T) T) Reagent[Unit, T] {
	return Reagent[Unit, T]{
		tryReact: func(_ Unit, rx *Reaction, off Offer) Outcome[T] {
			old, value := ref.Snapshot()
			newBoxed := new(T)
			*newBoxed = f(value)
			rx = rx.WithCAS(ref, old, newBoxed)
			return Value(value)
		},
		alwaysCommits: true,
		maySync:       false,
		snoop:         func(Unit) bool { return true },
	}
}

// Swap builds a reagent that unconditionally replaces ref's value with
// newValue and records that replacement in the reaction, returning the
// value it will replace. Like Upd, Swap's own tryReact never backtracks —
// it only ever records a CAS for the terminal Commit node to apply — so
// it too is AlwaysCommits; whether the eventual commit itself succeeds is
// the driver's concern, not this reagent's.
func Swap[T any](ref *cas.Ref[T], newValue T) Reagent[Unit, T] {
	return Reagent[Unit, T]{
		tryReact: func(_ Unit, rx *Reaction, off Offer) Outcome[T] {
			old, value := ref.Snapshot()
			newBoxed := new(T)
			*newBoxed = newValue
			rx = rx.WithCAS(ref, old, newBoxed)
			return Value(value)
		},
		alwaysCommits: true,
		maySync:       false,
		snoop:         func(Unit) bool { return true },
	}
}
