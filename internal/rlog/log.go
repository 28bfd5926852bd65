// Package rlog is the engine's internal logging seam: a thin wrapper
// around logrus, in the style of the dependency graph's own
// log.WithFields(...).Log(...) call sites, kept separate from the
// public API surface so nothing in this module forces a particular
// logrus configuration on importers.
package rlog

import log "github.com/sirupsen/logrus"

// CatalystFired logs a dissolved reagent completing an attempt and being
// reinstalled, at Debug level since this is expected steady-state
// traffic for anything with a catalyst installed.
func CatalystFired(reinstallCount uint64) {
	log.WithFields(log.Fields{"reinstallCount": reinstallCount}).Debug("reagent: catalyst fired, reinstalling")
}

// WaiterAbortRace logs a waiter losing the race between a caller's
// TryAbort and a partner's TryComplete — expected under contention, not
// itself an error, but useful to see when diagnosing back-off tuning.
func WaiterAbortRace() {
	log.Debug("reagent: waiter abort raced a partner's completion")
}

// CommitInvariantViolation logs the fatal condition TryCommit panics on:
// a CAS that validated under its stripe lock and then failed to apply.
// Logged at Warn immediately before the panic unwinds, since a panic
// alone would not otherwise carry the stripe-lock diagnostic context.
func CommitInvariantViolation(cellIdentity uintptr) {
	log.WithFields(log.Fields{"cellIdentity": cellIdentity}).Warn("reagent: commit lost a validated CAS, this is an engine bug")
}
