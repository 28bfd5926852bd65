package cas

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestCompareAndSetSucceedsOnMatch(t *testing.T) {
	r := NewRef(1)
	if !r.CompareAndSet(1, 2) {
		t.Fatalf("CompareAndSet(1, 2) failed against a fresh Ref holding 1")
	}
	if got := r.Get(); got != 2 {
		t.Fatalf("Get() = %v, want 2", got)
	}
}

func TestCompareAndSetFailsOnMismatch(t *testing.T) {
	r := NewRef(1)
	if r.CompareAndSet(99, 2) {
		t.Fatalf("CompareAndSet(99, 2) succeeded against a Ref holding 1")
	}
	if got := r.Get(); got != 1 {
		t.Fatalf("Get() = %v after a failed CompareAndSet, want unchanged 1", got)
	}
}

func TestSwapReturnsPrevious(t *testing.T) {
	r := NewRef("a")
	old := r.Swap("b")
	if old != "a" {
		t.Fatalf("Swap returned %q, want %q", old, "a")
	}
	if got := r.Get(); got != "b" {
		t.Fatalf("Get() = %q after Swap, want %q", got, "b")
	}
}

func TestConcurrentCompareAndSetExactlyOneWinnerPerRound(t *testing.T) {
	r := NewRef(0)
	const n = 64
	var wins atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if r.CompareAndSet(0, 1) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := wins.Load(); got != 1 {
		t.Fatalf("%d of %d racing CompareAndSet(0, 1) calls won, want exactly 1", got, n)
	}
	if got := r.Get(); got != 1 {
		t.Fatalf("Get() = %v after the race, want 1", got)
	}
}

func TestSnapshotObservesIdentityOfCurrentBox(t *testing.T) {
	r := NewRef(5)
	boxed, value := r.Snapshot()
	if value != 5 {
		t.Fatalf("Snapshot value = %v, want 5", value)
	}
	if !r.TryCASAny(boxed, new(int)) {
		t.Fatalf("TryCASAny against the box Snapshot just returned should have succeeded")
	}
	if r.TryCASAny(boxed, new(int)) {
		t.Fatalf("TryCASAny against an already-superseded box should fail")
	}
}

func TestIdentityIsStableAndDistinct(t *testing.T) {
	a := NewRef(0)
	b := NewRef(0)
	if a.Identity() != a.Identity() {
		t.Fatalf("Identity() was not stable across calls on the same Ref")
	}
	if a.Identity() == b.Identity() {
		t.Fatalf("two distinct Refs reported the same Identity()")
	}
}
