package reagent

import (
	"sync/atomic"
	"unsafe"

	"github.com/dedis/reagent/internal/rlog"
)

// Offer is a published rendezvous handle: either a Waiter (published by a
// stalled caller) or a Catalyst (published by a dissolved background
// reagent). Pools that cache offers (lib/swapchan.SwapChan in this module)
// must cooperatively drop entries once IsDeleted reports true.
type Offer interface {
	// IsDeleted reports whether this offer has reached a terminal state
	// and should be dropped by any pool still holding it.
	IsDeleted() bool
	// AbortAndWake retracts the offer (if still active) and wakes
	// whatever the offer's creator is waiting on. Idempotent.
	AbortAndWake()
}

// waiterKind is the status a Waiter's status cell holds.
type waiterKind int

const (
	waiting waiterKind = iota
	aborted
	answered
)

type waiterState struct {
	kind   waiterKind
	answer any
}

var waitingState = &waiterState{kind: waiting}

// Waiter is the offer a stalled caller publishes while attempting a
// reagent that may need to rendezvous with a partner. Its answer type is
// erased to `any` at this layer (mirroring the existential Offer[Any] the
// source reagents algebra uses) because a single Waiter is threaded,
// unchanged, through arbitrarily many differently-typed sub-reagents
// within one attempt; the one place the answer is read back (the driver
// loop that created the Waiter) knows the expected type statically and
// recovers it with a single guarded assertion.
type Waiter struct {
	status   atomic.Pointer[waiterState]
	blocking bool
	wake     chan struct{}
}

func newWaiter(blocking bool) *Waiter {
	w := &Waiter{blocking: blocking, wake: make(chan struct{}, 1)}
	w.status.Store(waitingState)
	return w
}

// IsActive reports whether the waiter has not yet left the Waiting state.
func (w *Waiter) IsActive() bool {
	return w.status.Load().kind == waiting
}

// IsDeleted implements Offer: a waiter is logically deleted once it has
// left the Waiting state.
func (w *Waiter) IsDeleted() bool { return !w.IsActive() }

// TryAbort retracts the waiter if it is still waiting. It returns
// (answer, true) if a partner had already completed the waiter with an
// answer before the abort could take effect, or (zero, false) if the
// waiter is now (or already was) aborted with no answer.
func (w *Waiter) TryAbort() (any, bool) {
	for {
		st := w.status.Load()
		switch st.kind {
		case aborted:
			return nil, false
		case answered:
			return st.answer, true
		default: // waiting
			if w.status.CompareAndSwap(st, &waiterState{kind: aborted}) {
				return nil, false
			}
			// lost the race (someone else transitioned us); retry
		}
	}
}

// TryComplete attempts to complete the waiter with answer a. It reports
// true iff the waiter was still Waiting (and is now Answered with a);
// false if another transition (abort, or a prior completion) got there
// first.
func (w *Waiter) TryComplete(a any) bool {
	st := w.status.Load()
	if st.kind != waiting {
		return false
	}
	return w.status.CompareAndSwap(st, &waiterState{kind: answered, answer: a})
}

// AbortAndWake implements Offer: it calls TryAbort, and if that actually
// retracted a waiting waiter, wakes its goroutine. If the waiter had
// already transitioned (aborted or answered by someone else), this is a
// no-op — in particular calling it more than once is safe.
func (w *Waiter) AbortAndWake() {
	// waitingState is the only Waiting value a status cell ever holds, so
	// this CAS succeeds exactly when this call is the one that aborts w.
	if w.status.CompareAndSwap(waitingState, &waiterState{kind: aborted}) {
		w.unpark()
		return
	}
	if w.status.Load().kind == answered {
		rlog.WaiterAbortRace()
	}
}

// park blocks the calling goroutine until unpark is called, standing in
// for the OS thread parking the distilled spec describes.
func (w *Waiter) park() { <-w.wake }

func (w *Waiter) unpark() {
	select {
	case w.wake <- struct{}{}:
	default:
		// already has a pending wakeup queued or one is about to be
		// consumed; unpark is idempotent, so dropping this is correct.
	}
}

// WaiterConsumeAndContinue implements Waiter.consume_and_continue: it
// computes the reaction that will satisfy w, then hands control to the
// continuation k with continueWith as its input. completeWith is what a
// partner uses to satisfy w itself (the answer a caller's React will
// eventually see); continueWith may be an entirely different value
// threaded onward to the rest of the pipeline (e.g. Unit, for a pool
// leaf that has nothing further to report upward).
//
// w's completion is always recorded as one more tentative CAS in rx,
// never applied directly: a caller of this function has no way to know
// whether k (or whatever k's own caller composed after it) will itself
// go on to Block or Retry before any reaction ever reaches a terminal
// Commit. Completing w immediately would let a partner observe its
// rendezvous as having succeeded even if the rest of this attempt's
// chain never commits, violating the "never partially applied"
// invariant. Folding it into rx instead means w only actually answers
// at the same linearization instant the rest of the reaction commits,
// or not at all.
//
// Exported so out-of-package pool leaves (lib/swapchan) can rendezvous
// with a published Waiter the same way the root package's own leaves do.
func WaiterConsumeAndContinue[X, B any](w *Waiter, completeWith any, continueWith X, k Reagent[X, B], rx *Reaction, enclosingOffer Offer) Outcome[B] {
	rx = rx.WithCAS(waiterCell{w}, waitingState, &waiterState{kind: answered, answer: completeWith})
	if w.blocking {
		rx = rx.WithPostCommit(w.unpark)
	}
	return k.TryReact(continueWith, rx, enclosingOffer)
}

// waiterCell adapts *Waiter's status to the casCell interface so a
// Waiter's completion can be recorded in a Reaction's CAS log alongside
// ordinary lib/cas.Ref cells.
type waiterCell struct{ w *Waiter }

func (c waiterCell) TryCASAny(old, new any) bool {
	return c.w.status.CompareAndSwap(old.(*waiterState), new.(*waiterState))
}
func (c waiterCell) GetAny() any { return c.w.status.Load() }
func (c waiterCell) Identity() uintptr {
	return uintptrOf(unsafe.Pointer(c.w))
}

// Catalyst is the offer a dissolved reagent publishes: a pattern-match
// hook, reinstated each time it fires, that runs opportunistically
// whenever a partner becomes available. redissolve, captured at
// construction time by Dissolve, knows how to install a fresh Catalyst
// for the same (statically typed) reagent; Catalyst itself stays
// non-generic so it can implement Offer and travel through the same
// type-erased pools Waiter does.
type Catalyst struct {
	alive      atomic.Bool
	redissolve func()
}

func newCatalyst(redissolve func()) *Catalyst {
	c := &Catalyst{redissolve: redissolve}
	c.alive.Store(true)
	return c
}

// IsDeleted implements Offer: a catalyst is logically deleted once its
// alive flag has flipped false. AbortAndWake flips the flag first and
// only then re-dissolves a fresh catalyst, so a pool may observe the
// deletion before the replacement is published.
func (c *Catalyst) IsDeleted() bool { return !c.alive.Load() }

// AbortAndWake implements Offer: CAS alive true->false; on success,
// re-dissolve the original reagent as a fresh Catalyst. Idempotent on
// subsequent calls.
func (c *Catalyst) AbortAndWake() {
	if c.alive.CompareAndSwap(true, false) {
		c.redissolve()
	}
}

// CatalystConsumeAndContinue implements Catalyst.consume_and_continue: a
// catalyst ignores whatever a partner would have completed it with
// (there is no offerer-side answer to deliver) and immediately re-enters
// the continuation. Exported for the same reason WaiterConsumeAndContinue
// is.
func CatalystConsumeAndContinue[X, B any](continueWith X, k Reagent[X, B], rx *Reaction, enclosingOffer Offer) Outcome[B] {
	return k.TryReact(continueWith, rx, enclosingOffer)
}
