// Package swapchan implements a rendezvous channel built directly from
// the root package's offer machinery rather than a Go channel: Send and
// Recv are reagents, so they compose with choice, mapping and the rest
// of the algebra instead of being a sealed primitive.
//
// A SwapChan has no buffer. A Send only completes once some Recv is
// ready to take its value in the same instant, and vice versa; absent a
// ready partner, both sides Block and publish an offer for the other
// side to find, following the same pool-of-offers shape the spec
// requires of anything that caches Waiters and Catalysts.
package swapchan

import (
	"sync"
	"sync/atomic"

	"github.com/dedis/reagent"
)

type slotKind int

const (
	sendSlot slotKind = iota
	recvSlot
)

// entry is one pending offer published into a SwapChan's pool.
type entry[T any] struct {
	offer reagent.Offer
	kind  slotKind
	value T
	// deliver, present only on entries published by a dissolved catalyst,
	// hands the discovered payload to that catalyst's pending slot. A
	// recvSlot entry's deliver takes the sent T; a sendSlot entry's deliver
	// ignores its argument and stores reagent.Unit. The parameter is
	// erased to any the same way a Waiter's answer is.
	deliver func(any)
}

// SwapChan is a pool of pending Send/Recv offers. The zero value is not
// ready to use; construct one with New.
type SwapChan[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
}

// New constructs an empty SwapChan.
func New[T any]() *SwapChan[T] {
	return &SwapChan[T]{}
}

// publish appends e to the pool.
func (ch *SwapChan[T]) publish(e *entry[T]) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.entries = append(ch.entries, e)
}

// take finds and atomically removes the first still-live entry of the
// given kind, pruning any deleted entries it passes over along the way —
// the cooperative cleanup the spec requires of any pool caching offers.
func (ch *SwapChan[T]) take(kind slotKind) *entry[T] {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	live := ch.entries[:0]
	var found *entry[T]
	for _, e := range ch.entries {
		if e.offer.IsDeleted() {
			continue
		}
		if found == nil && e.kind == kind {
			found = e
			continue
		}
		live = append(live, e)
	}
	ch.entries = live
	return found
}

// hasLive reports, best-effort, whether the pool holds a live entry of
// the given kind — used only to answer Snoop, so false positives are
// fine and a lock is not worth avoiding.
func (ch *SwapChan[T]) hasLive(kind slotKind) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	for _, e := range ch.entries {
		if e.kind == kind && !e.offer.IsDeleted() {
			return true
		}
	}
	return false
}

// catalystSlot is where a discovering partner leaves a value for a
// dissolved Recv or Send to pick up on its next (redissolved) attempt. A
// Catalyst offer has no parked goroutine of its own for a partner to
// hand a value to directly the way completing a Waiter does, so instead
// the discoverer writes the value here and then calls AbortAndWake,
// which synchronously redissolves the catalyst's whole reagent before
// AbortAndWake returns — by the time that redissolved attempt reaches
// this leaf again, the slot is already populated.
type catalystSlot[T any] struct {
	value T
}

func identity[T any]() reagent.Reagent[T, T] {
	return reagent.NewLeaf(func(t T, rx *reagent.Reaction, off reagent.Offer) reagent.Outcome[T] {
		return reagent.Value(t)
	}, true, false, nil)
}

// Send builds a reagent that offers v for some Recv on ch to take.
// Its own commit (if any cell-touching continuation follows) happens at
// the usual terminal Commit node; Send itself never calls TryCommit.
func Send[T any](ch *SwapChan[T]) reagent.Reagent[T, reagent.Unit] {
	var pending atomic.Pointer[catalystSlot[reagent.Unit]]
	k := identity[reagent.Unit]()

	return reagent.NewLeaf(func(v T, rx *reagent.Reaction, off reagent.Offer) reagent.Outcome[reagent.Unit] {
		if _, ok := off.(*reagent.Catalyst); ok {
			if slot := pending.Swap(nil); slot != nil {
				return reagent.Value(slot.value)
			}
		}

		if partner := ch.take(recvSlot); partner != nil {
			switch o := partner.offer.(type) {
			case *reagent.Waiter:
				return reagent.WaiterConsumeAndContinue(o, v, reagent.Unit{}, k, rx, off)
			case *reagent.Catalyst:
				partner.deliver(v)
				o.AbortAndWake()
				return reagent.CatalystConsumeAndContinue(reagent.Unit{}, k, rx, off)
			}
		}

		if off == nil {
			return reagent.BlockOutcome[reagent.Unit]()
		}
		e := &entry[T]{offer: off, kind: sendSlot, value: v}
		if _, ok := off.(*reagent.Catalyst); ok {
			slot := &catalystSlot[reagent.Unit]{}
			pending.Store(slot)
			e.deliver = func(any) { slot.value = reagent.Unit{} }
		}
		ch.publish(e)
		return reagent.BlockOutcome[reagent.Unit]()
	}, false, true, func(T) bool { return ch.hasLive(recvSlot) })
}

// Recv builds a reagent that takes whatever value some Send on ch next
// offers.
func Recv[T any](ch *SwapChan[T]) reagent.Reagent[reagent.Unit, T] {
	var pending atomic.Pointer[catalystSlot[T]]
	k := identity[T]()

	return reagent.NewLeaf(func(_ reagent.Unit, rx *reagent.Reaction, off reagent.Offer) reagent.Outcome[T] {
		if _, ok := off.(*reagent.Catalyst); ok {
			if slot := pending.Swap(nil); slot != nil {
				return reagent.Value(slot.value)
			}
		}

		if partner := ch.take(sendSlot); partner != nil {
			switch o := partner.offer.(type) {
			case *reagent.Waiter:
				return reagent.WaiterConsumeAndContinue(o, reagent.Unit{}, partner.value, k, rx, off)
			case *reagent.Catalyst:
				partner.deliver(partner.value)
				o.AbortAndWake()
				return reagent.CatalystConsumeAndContinue(partner.value, k, rx, off)
			}
		}

		if off == nil {
			return reagent.BlockOutcome[T]()
		}
		e := &entry[T]{offer: off, kind: recvSlot}
		if _, ok := off.(*reagent.Catalyst); ok {
			slot := &catalystSlot[T]{}
			pending.Store(slot)
			e.deliver = func(v any) { slot.value = v.(T) }
		}
		ch.publish(e)
		return reagent.BlockOutcome[T]()
	}, false, true, func(reagent.Unit) bool { return ch.hasLive(sendSlot) })
}
