package reagent

import (
	"sync/atomic"

	"github.com/dedis/reagent/internal/rlog"
	"github.com/dedis/reagent/reagentmetrics"
)

// Dissolve installs reagent as a background catalyst: it is attempted
// immediately with a fresh Catalyst offer, publishing itself into
// whatever pools it touches and then going idle (Block) until a partner
// fires it. Firing a catalyst runs reagent to completion against the
// value the partner delivered — there is no caller of Dissolve left to
// hand an answer to, so a successful attempt simply reinstalls a fresh
// catalyst immediately and keeps going, the same way a Retry does,
// rather than returning. Only Block ends an install pass, leaving the
// freshly published catalyst for some future AbortAndWake to reinstall.
//
// Like React, Dissolve drives reagent >=> commit, not reagent itself, so
// a caller never needs to remember to append Commit by hand.
func Dissolve[A any](reagent Reagent[Unit, A]) {
	committing := Compose(reagent, Commit[A]())
	var reinstalls atomic.Uint64
	var install func()
	install = func() {
		for {
			c := newCatalyst(install)
			o := committing.TryReact(Unit{}, Inert(), c)
			if o.IsValue() {
				reagentmetrics.IncCatalystReinstall()
				rlog.CatalystFired(reinstalls.Add(1))
				continue
			}
			if o.Backtrack() == Retry {
				continue
			}
			return
		}
	}
	install()
}
