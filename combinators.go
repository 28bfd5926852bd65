package reagent

import "github.com/dedis/reagent/reagentmetrics"

// Ret builds a constant reagent: ignores its input and always succeeds
// with v, touching no cell and always committing.
func Ret[A, B any](v B) Reagent[A, B] {
	return Reagent[A, B]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[B] {
			return Value(v)
		},
		alwaysCommits: true,
		maySync:       false,
	}
}

// Lift builds a reagent from a partial Go function: f returns (b, true)
// when defined on a, or (zero, false) otherwise. Despite the name, a
// partial Lift does not always commit — an input outside f's domain
// yields Block, not a value — so AlwaysCommits is false here; totality
// is a property the caller, not this package, would have to establish to
// claim otherwise.
func Lift[A, B any](f func(A) (B, bool)) Reagent[A, B] {
	return Reagent[A, B]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[B] {
			if b, ok := f(a); ok {
				return Value(b)
			}
			return BlockOutcome[B]()
		},
		alwaysCommits: false,
		maySync:       false,
	}
}

// Computed builds a dynamic continuation: on each attempt, c(a) computes
// a fresh reagent and the attempt is forwarded to it with Unit{} as
// input. Because the reagent c returns is opaque until the attempt is
// actually made, Computed cannot usefully be snooped — Snoop reports
// false unconditionally, the honest "don't know" answer for an opaque
// reagent, which lets a caller's back-off actually sleep instead of
// busy-spinning on a probe that can't tell it anything — and is treated
// as possibly synchronizing.
//
// Computed does not accept an explicit continuation directly; compose
// through FlatMap, which injects the continuation into the dynamically
// computed reagent before forwarding to it.
func Computed[A, B any](c func(A) Reagent[Unit, B]) Reagent[A, B] {
	return Reagent[A, B]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[B] {
			return c(a).TryReact(Unit{}, rx, off)
		},
		alwaysCommits: false,
		maySync:       true,
		snoop:         func(A) bool { return false },
	}
}

// Commit is the terminal node every composed reagent chain bottoms out
// at. Its behaviour depends on the offer in play:
//
//   - no offer: attempt rx.TryCommit; on success return a, on failure
//     Retry.
//   - a Waiter offer: first TryAbort the waiter; if a partner had already
//     answered it, return that answer instead of committing ourselves;
//     otherwise attempt rx.TryCommit and return a, or Retry on failure.
//   - a Catalyst offer: attempt rx.TryCommit and mirror the no-offer
//     case — Value on success, Retry on failure. Nothing outside this
//     package ever sees that value (a dissolved catalyst has no caller to
//     hand it to), but Dissolve's install loop reads IsValue to tell "this
//     round fired and should reinstall" apart from "this attempt found no
//     partner, published itself, and should idle" — a distinction that
//     would be lost if this branch collapsed both to the same outcome.
func Commit[A any]() Reagent[A, A] {
	return Reagent[A, A]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[A] {
			switch o := off.(type) {
			case nil:
				if rx.TryCommit() {
					reagentmetrics.IncCommit()
					return Value(a)
				}
				return RetryOutcome[A]()

			case *Waiter:
				if answer, had := o.TryAbort(); had {
					return Value(answer.(A))
				}
				if rx.TryCommit() {
					reagentmetrics.IncCommit()
					return Value(a)
				}
				return RetryOutcome[A]()

			case *Catalyst:
				if rx.TryCommit() {
					reagentmetrics.IncCommit()
					return Value(a)
				}
				return RetryOutcome[A]()

			default:
				panic("reagent: Commit saw an unrecognized Offer implementation")
			}
		},
		alwaysCommits: true,
		maySync:       false,
		snoop:         func(A) bool { return true },
	}
}

// Never is the identity of Choice: it always returns Block and is never
// worth snooping for (Snoop always reports false — nothing could ever be
// ready to react with Never).
func Never[A, B any]() Reagent[A, B] {
	return Reagent[A, B]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[B] {
			return BlockOutcome[B]()
		},
		alwaysCommits: false,
		maySync:       false,
		snoop:         func(A) bool { return false },
	}
}

// Choice builds the left-biased non-deterministic disjunction r1 <+> r2:
//
//   - r1 answers: return it.
//   - r1 Blocks: try r2 and return its result unchanged.
//   - r1 Retries: try r2; if r2 also Retries, Retry; if r2 Blocks, Retry
//     (r1's Retry was transient and r2's Block gives no reason to park —
//     we must retry r1); if r2 answers, return it.
func Choice[A, B any](r1, r2 Reagent[A, B]) Reagent[A, B] {
	return Reagent[A, B]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[B] {
			o1 := r1.TryReact(a, rx, off)
			if o1.IsValue() {
				return o1
			}
			if o1.Backtrack() == Block {
				return r2.TryReact(a, rx, off)
			}
			// r1 said Retry.
			o2 := r2.TryReact(a, rx, off)
			if o2.IsValue() {
				return o2
			}
			return RetryOutcome[B]()
		},
		alwaysCommits: r1.AlwaysCommits() && r2.AlwaysCommits(),
		maySync:       r1.MaySync() || r2.MaySync(),
		snoop:         func(a A) bool { return r2.Snoop(a) || r1.Snoop(a) },
	}
}

// PostCommit is the identity for the value it is given; it extends the
// reaction with a callback, run only after a successful commit, that
// invokes pc(a) on the committing goroutine.
func PostCommit[A any](pc func(A)) Reagent[A, A] {
	return Reagent[A, A]{
		tryReact: func(a A, rx *Reaction, off Offer) Outcome[A] {
			return Value(a)
		},
		alwaysCommits: true,
		maySync:       false,
		snoop:         func(A) bool { return true },
	}.withPostCommitHook(func(a A) func() {
		return func() { pc(a) }
	})
}

// withPostCommitHook is an unexported helper used only by PostCommit: it
// wraps tryReact so that the post-commit callback is threaded into rx
// before handing off to the (identity) value.
func (r Reagent[A, B]) withPostCommitHook(hook func(A) func()) Reagent[A, B] {
	inner := r.tryReact
	r.tryReact = func(a A, rx *Reaction, off Offer) Outcome[B] {
		rx = rx.WithPostCommit(hook(a))
		return inner(a, rx, off)
	}
	return r
}
