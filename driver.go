package reagent

import (
	"github.com/dedis/reagent/lib/backoff"
	"github.com/dedis/reagent/reagentmetrics"
)

// snoopSpins bounds how many times a conditional back-off step polls
// Waiter.IsActive/Snoop before falling back to a timed sleep, mirroring
// the spin budget teacher-style back-off helpers use before parking.
const snoopSpins = 16

// drive implements the blocking invocation loop ("!") described in the
// spec: an initial unconstrained attempt, then a retry loop that
// allocates a Waiter once either the reagent may synchronize or a prior
// iteration asked to park, backs off or parks according to the backtrack
// command received, and keeps looping until an answer is produced.
func drive[A, B any](r Reagent[A, B], a A) B {
	if o := r.TryReact(a, Inert(), nil); o.IsValue() {
		return o.MustValue()
	}

	bo := backoff.New(backoff.Config{})
	bo.Once() // mandatory priming tick before the retry loop begins

	shouldBlock := false
	for {
		wait := r.MaySync() || shouldBlock
		var off Offer
		var w *Waiter
		if wait {
			// blocking is always true here, not shouldBlock: whether this
			// particular attempt ends up Blocking (and so actually parking
			// on w) is only known after TryReact returns, so any waiter we
			// might park on must have its partner's completion schedule an
			// unpark regardless of which branch this iteration takes.
			w = newWaiter(true)
			off = w
		}

		o := r.TryReact(a, Inert(), off)
		if o.IsValue() {
			return o.MustValue()
		}
		bt := o.Backtrack()

		if w == nil {
			if bt == Retry {
				reagentmetrics.IncRetry()
				bo.Once()
				shouldBlock = false
			} else {
				shouldBlock = true
			}
			continue
		}

		switch bt {
		case Block:
			reagentmetrics.IncBlock()
			reagentmetrics.IncPark()
			w.park()
		case Retry:
			reagentmetrics.IncRetry()
			bo.OnceCond(func() bool { return w.IsActive() && !r.Snoop(a) }, snoopSpins)
		}

		if answer, had := w.TryAbort(); had {
			return answer.(B)
		}
		shouldBlock = bt == Block
	}
}
