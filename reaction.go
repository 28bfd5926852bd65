package reagent

import (
	"sync"

	"github.com/dedis/reagent/internal/rlog"
)

// CASCell is the type-erased view of a lib/cas.Ref[T] that the reaction
// log needs in order to hold CAS operations over cells of different
// instantiations in a single ordered list. lib/cas.Ref[T] implements it;
// ordinary reagent users never construct a CASCell directly — it exists,
// exported, only because Go requires an interface's methods to be
// exported for a type in another package to implement it.
type CASCell interface {
	TryCASAny(old, new any) bool
	GetAny() any
	Identity() uintptr
}

type casCell = CASCell

// casOp is one tentative compare-and-set recorded in a Reaction.
type casOp struct {
	cell     casCell
	old, new any
}

// Reaction is the in-flight, mutable record of tentative CAS operations
// and post-commit callbacks accumulated while a composed reagent attempts
// its effect. It is always threaded through a single attempt by pointer:
// Compose hands the very same *Reaction to each stage in sequence, so a
// CAS or post-commit callback recorded deep in one stage is still visible
// to a later stage's eventual TryCommit. Every top-level attempt (drive's
// retry loop, TryReactNow, Dissolve's install loop) must start with a
// freshly allocated Reaction via Inert() — never share one across
// unrelated attempts. Reactions are never partially applied: TryCommit
// either applies every recorded CAS and then every post-commit callback,
// or leaves every cell untouched.
type Reaction struct {
	ops         []casOp
	postCommits []func()
}

// Inert allocates the empty Reaction every top-level invocation attempt
// begins with. It must be called fresh for each attempt, never reused
// across attempts or shared between concurrent callers.
func Inert() *Reaction { return &Reaction{} }

// WithCAS extends rx in place with one more tentative CAS operation and
// returns rx, for chaining convenience.
func (rx *Reaction) WithCAS(cell casCell, old, new any) *Reaction {
	rx.ops = append(rx.ops, casOp{cell: cell, old: old, new: new})
	return rx
}

// WithPostCommit extends rx in place with one more post-commit callback,
// to run (in registration order) after a successful commit, and returns
// rx for chaining convenience.
func (rx *Reaction) WithPostCommit(fn func()) *Reaction {
	rx.postCommits = append(rx.postCommits, fn)
	return rx
}

// commitStripes guards multi-cell commits against interleaving with other
// concurrent commits touching an overlapping set of cells. Acquired in
// ascending stripe-index order, never held across a goroutine boundary, and never held
// while performing anything but a validate-then-CAS pass over rx.ops.
var commitStripes [256]sync.Mutex

func stripeFor(id uintptr) *sync.Mutex {
	return &commitStripes[id%uintptr(len(commitStripes))]
}

// TryCommit atomically applies every CAS recorded in rx: either every
// cell observably advances from its expected value to its new value at a
// single linearization instant, or none do. On success it then runs every
// post-commit callback, in registration order, on the calling goroutine,
// clears rx back to empty, and returns true. On failure it leaves every
// cell (and rx) unchanged and returns false without running any callback.
//
// Clearing rx on success is what makes `r >=> commit` observationally
// equivalent to `r` even when `r` already reaches its own terminal Commit
// internally: React and Dissolve always append one more Commit defensively,
// and that extra Commit must see an already-spent, empty rx and succeed
// as a no-op rather than attempt to re-validate or re-run anything.
func (rx *Reaction) TryCommit() bool {
	if len(rx.ops) == 0 {
		rx.runPostCommits()
		rx.postCommits = nil
		return true
	}
	return rx.tryCommitLocked()
}

// tryCommitLocked implements the "straightforward descriptor protocol": a
// software two-phase commit over a fixed table of stripe locks, taken in
// ascending stripe-index order to avoid deadlock between concurrently
// committing reactions whose cells share stripes. Every commit — including the
// single-cell case, where the apply step is literally one hardware CAS —
// goes through the same stripe table, so a multi-cell commit's validate
// pass can never be invalidated by a concurrent single-cell commit before
// its own apply pass completes.
func (rx *Reaction) tryCommitLocked() bool {
	ops := make([]casOp, len(rx.ops))
	copy(ops, rx.ops)
	sortOpsByStripe(ops)

	locked := lockStripes(ops)
	defer unlockStripes(locked)

	for _, op := range ops {
		if op.cell.GetAny() != op.old {
			return false
		}
	}
	for _, op := range ops {
		if !op.cell.TryCASAny(op.old, op.new) {
			// Every mutator of a stripe-tracked cell validates and
			// applies while holding that cell's stripe, so a CAS that
			// was just validated under the same lock cannot fail.
			rlog.CommitInvariantViolation(op.cell.Identity())
			panic("reagent: commit lost a validated CAS")
		}
	}
	rx.runPostCommits()
	rx.ops = nil
	rx.postCommits = nil
	return true
}

func (rx *Reaction) runPostCommits() {
	for _, pc := range rx.postCommits {
		pc()
	}
}

func sortOpsByStripe(ops []casOp) {
	// Insertion sort: reactions are small (a handful of cells at most),
	// so this avoids pulling in sort.Slice's reflection overhead.
	n := uintptr(len(commitStripes))
	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && ops[j-1].cell.Identity()%n > ops[j].cell.Identity()%n; j-- {
			ops[j-1], ops[j] = ops[j], ops[j-1]
		}
	}
}

func lockStripes(ops []casOp) []*sync.Mutex {
	var locked []*sync.Mutex
	var lastID uintptr
	for i, op := range ops {
		id := op.cell.Identity()
		if i > 0 && id == lastID {
			continue // same cell appears twice; its stripe is already held
		}
		s := stripeFor(id)
		if i > 0 && stripeAlreadyHeld(locked, s) {
			continue
		}
		s.Lock()
		locked = append(locked, s)
		lastID = id
	}
	return locked
}

func stripeAlreadyHeld(locked []*sync.Mutex, s *sync.Mutex) bool {
	for _, l := range locked {
		if l == s {
			return true
		}
	}
	return false
}

func unlockStripes(locked []*sync.Mutex) {
	for _, s := range locked {
		s.Unlock()
	}
}
