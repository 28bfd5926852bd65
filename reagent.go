package reagent

// Reagent is a first-class, immutable concurrent action from A to B. Its
// three static predicates (AlwaysCommits, MaySync, Snoop) are used by the
// driver and by combinators to decide when an offer is needed and when a
// back-off spin may continue.
//
// Reagent is a plain struct of function fields rather than an interface
// because Go forbids a method from introducing type parameters beyond
// its receiver's: operators that change B (Compose, Map, FlatMap,
// WithFilter, MapFilter, Then) must therefore be package-level generic
// functions. Or, which keeps A and B fixed, stays a method.
type Reagent[A, B any] struct {
	tryReact      func(a A, rx *Reaction, off Offer) Outcome[B]
	alwaysCommits bool
	maySync       bool
	snoop         func(a A) bool
}

// TryReact attempts this reagent's effect once: it must not mutate any
// shared state except through rx (tentatively). It returns a value on success, or a
// Retry/Block backtrack command; committing happens only when the
// terminal Commit node is reached and the accumulated Reaction commits.
// rx is shared, by pointer, with every other stage of the same attempt —
// a CAS or post-commit recorded here is visible to whichever stage
// eventually calls TryCommit.
func (r Reagent[A, B]) TryReact(a A, rx *Reaction, off Offer) Outcome[B] {
	return r.tryReact(a, rx, off)
}

// AlwaysCommits reports whether this reagent cannot fail for protocol
// reasons, letting callers elide offer construction.
func (r Reagent[A, B]) AlwaysCommits() bool { return r.alwaysCommits }

// MaySync reports whether this reagent may need to rendezvous with a
// partner, and so needs a Waiter registered even on the first iteration
// of the driver's retry loop (the driver's initial attempt, before that
// loop, always runs with no offer).
func (r Reagent[A, B]) MaySync() bool { return r.maySync }

// Snoop is an advisory, read-only probe of whether a partner appears
// ready to react with this reagent on input a. False negatives are
// allowed; false positives only waste work.
func (r Reagent[A, B]) Snoop(a A) bool {
	if r.snoop == nil {
		return true
	}
	return r.snoop(a)
}

// NewLeaf builds a Reagent from its three static predicates and attempt
// function directly. It exists so packages outside this one (lib/swapchan,
// and any future pool built the same way) can define new kinds of leaf
// reagent without this package needing to know about them: Reagent's own
// fields are unexported, so a struct literal is not available to callers
// in another package.
func NewLeaf[A, B any](tryReact func(a A, rx *Reaction, off Offer) Outcome[B], alwaysCommits, maySync bool, snoop func(a A) bool) Reagent[A, B] {
	return Reagent[A, B]{tryReact: tryReact, alwaysCommits: alwaysCommits, maySync: maySync, snoop: snoop}
}

// Or implements left-biased non-deterministic choice (<+>): try r first,
// then other. Unlike Compose/Map/FlatMap this keeps A and B fixed, so it
// can be an ordinary method.
func (r Reagent[A, B]) Or(other Reagent[A, B]) Reagent[A, B] {
	return Choice(r, other)
}

// React is the blocking invocation operator ("!"): it attempts a, backing
// off and parking as needed, until it commits or an unrecoverable
// invariant violation occurs. It never returns a backtrack command to
// the caller.
//
// React always drives r >=> commit, not r itself: a reagent chain that
// never reaches an explicit Commit node would accumulate CAS operations
// and post-commit callbacks that nothing ever applies. Appending one more
// Commit here is always safe even when r already ends in an explicit
// Commit of its own — TryCommit clears a Reaction on success, so the
// appended Commit finds nothing left to do and trivially succeeds,
// which is exactly the "commit identity" law in observable terms.
func (r Reagent[A, B]) React(a A) B {
	return drive(Compose(r, Commit[B]()), a)
}

// TryReactNow is the non-blocking invocation operator ("!?"): it performs
// exactly one attempt with no offer. On any backtrack command (including
// a transient Retry — see the "Open questions resolved" section of
// DESIGN.md) it reports "no answer" rather than retrying.
func (r Reagent[A, B]) TryReactNow(a A) (B, bool) {
	return Compose(r, Commit[B]()).TryReact(a, Inert(), nil).Get()
}
