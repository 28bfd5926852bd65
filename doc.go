// Package reagent implements a small algebra of composable, lock-free
// concurrent actions called reagents.
//
// A reagent is a first-class value describing how to read, write, and
// rendezvous over shared mutable cells (lib/cas.Ref) and channels
// (lib/swapchan.SwapChan). Reagents are built from a handful of primitive
// constructors (Ret, Lift, Computed, Commit, Never) and combinators
// (Compose, Map, FlatMap, WithFilter, MapFilter, Then, and the Or method
// implementing choice), then invoked with React ("!") or TryReactNow
// ("!?"). Invoking a reagent attempts its effect against a Reaction: an
// in-flight log of tentative compare-and-set operations and post-commit
// callbacks that is committed atomically, all-or-nothing, only once the
// whole composed action has succeeded.
//
// When no partner is available to complete a rendezvous, a reagent
// publishes an Offer (a Waiter or a Catalyst) into the pool owned by the
// channel it touched, and the driver either backs off and
// retries or parks the calling goroutine until a partner's post-commit
// callback (or an external abort) wakes it.
//
// This package implements the execution engine only: the try-react/commit
// protocol, the offer and reaction machinery, and the driver loop. See
// lib/cas, lib/backoff, and lib/swapchan for the concrete collaborators
// the engine consumes, and reagentmetrics for production instrumentation.
//
// Concurrency
//
// Reagents carry no mutable state of their own; every mutation flows
// through a Reaction's CAS log, applied only when a Commit node commits
// it. This package's own state (Waiter status cells, Catalyst
// alive flags, casCell identities) is safe for concurrent use from any
// number of goroutines without external locking.
package reagent
