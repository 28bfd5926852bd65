package reagent

// Compose builds sequential composition (>=>): attempt r, and if it
// yields a value, feed that value to next within the same Reaction and
// Offer. Backtrack commands from r propagate without attempting next at
// all.
//
// Composing with the terminal Commit node is not special-cased: Compose's
// general behaviour already satisfies r >=> Commit ≡ r observationally,
// because Commit's own effect — attempting rx.TryCommit against whatever
// reaction r has accumulated so far — is exactly what any top-level
// invocation eventually does to r by itself; there is nothing further
// for an explicit identity short-circuit to save.
//
// Go does not let a method introduce type parameters beyond its
// receiver's, so unlike Or (which keeps A and B fixed), the operators
// that change the output type — Compose, Map, FlatMap, WithFilter,
// MapFilter, Then — are package-level generic functions rather than
// methods, the same shape the standard slices/maps packages use.
func Compose[A, B, C any](r Reagent[A, B], next Reagent[B, C]) Reagent[A, C] {
	return Reagent[A, C]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[C] {
			o := r.TryReact(a, rx, off)
			b, ok := o.Get()
			if !ok {
				return backtrackOutcome[C](o.Backtrack())
			}
			return next.TryReact(b, rx, off)
		},
		// A composed reagent can fail to commit if either stage can,
		// and may need to rendezvous if either stage may.
		alwaysCommits: r.AlwaysCommits() && next.AlwaysCommits(),
		maySync:       r.MaySync() || next.MaySync(),
		snoop:         func(a A) bool { return r.Snoop(a) },
	}
}

// liftTotal wraps a total Go function as an always-committing reagent,
// the building block Map and Then are expressed in terms of.
func liftTotal[B, C any](f func(B) C) Reagent[B, C] {
	return Reagent[B, C]{
		tryReact: func(b B, rx *Reaction, off Offer) Outcome[C] {
			return Value(f(b))
		},
		alwaysCommits: true,
		snoop:         func(B) bool { return true },
	}
}

// Map builds a reagent that attempts r and then applies the total
// function f to its result, without touching any further cell.
func Map[A, B, C any](r Reagent[A, B], f func(B) C) Reagent[A, C] {
	return Compose(r, liftTotal(f))
}

// FlatMap builds a reagent that attempts r and then forwards its result
// to the reagent f dynamically computes, within the same attempt. This
// is how Computed is meant to be composed with an explicit continuation:
// FlatMap injects f as Computed's continuation rather than requiring
// callers to hand-roll a Compose(r, Computed(f)) chain.
func FlatMap[A, B, C any](r Reagent[A, B], f func(B) Reagent[Unit, C]) Reagent[A, C] {
	return Compose(r, Computed(f))
}

// WithFilter builds a reagent that attempts r and then Blocks unless
// pred holds of the result, in which case it passes the result through
// unchanged. Named to match Go's range-over-func and comprehension-style
// filtering convention.
func WithFilter[A, B any](r Reagent[A, B], pred func(B) bool) Reagent[A, B] {
	return Compose(r, Lift(func(b B) (B, bool) {
		if pred(b) {
			return b, true
		}
		return b, false
	}))
}

// MapFilter builds a reagent that attempts r and then applies the
// partial function f to its result, Blocking where f is undefined.
func MapFilter[A, B, C any](r Reagent[A, B], f func(B) (C, bool)) Reagent[A, C] {
	return Compose(r, Lift(f))
}

// Then builds sequential composition that discards r's own result and
// forwards Unit{} into next, useful for chaining an effectful first stage
// (typically a cell update) in front of a reagent that takes no
// meaningful input of its own.
func Then[A, B, C any](r Reagent[A, B], next Reagent[Unit, C]) Reagent[A, C] {
	toUnit := liftTotal(func(B) Unit { return Unit{} })
	return Compose(Compose(r, toUnit), next)
}
