package reagent

import (
	"sync"
	"testing"
	"time"

	"github.com/dedis/reagent/lib/cas"
	"github.com/dedis/reagent/lib/swapchan"
)

// S1 (ret): ret(42) ! () returns 42; no cell mutated.
func TestRet(t *testing.T) {
	got := Ret[Unit, int](42).React(Unit{})
	if got != 42 {
		t.Fatalf("Ret(42) ! () = %v, want 42", got)
	}
}

// S2 (lift partial): lift({x if x>0 => x*2}) !? -1 returns "no answer";
// !? 3 returns 6.
func TestLiftPartial(t *testing.T) {
	double := Lift(func(x int) (int, bool) {
		if x > 0 {
			return x * 2, true
		}
		return 0, false
	})

	if _, ok := double.TryReactNow(-1); ok {
		t.Fatalf("TryReactNow(-1) should report no answer")
	}
	got, ok := double.TryReactNow(3)
	if !ok || got != 6 {
		t.Fatalf("TryReactNow(3) = (%v, %v), want (6, true)", got, ok)
	}
}

// S3 (choice of never): (never <+> ret("b")) ! () returns "b".
func TestChoiceOfNever(t *testing.T) {
	r := Never[Unit, string]().Or(Ret[Unit, string]("b"))
	if got := r.React(Unit{}); got != "b" {
		t.Fatalf("(never <+> ret(b)) ! () = %q, want %q", got, "b")
	}
}

// Property 4, both directions: choice(r, never) and choice(never, r) are
// observationally equivalent to r.
func TestChoiceIdentity(t *testing.T) {
	r := Ret[Unit, int](7)
	if got := Choice(r, Never[Unit, int]()).React(Unit{}); got != 7 {
		t.Fatalf("choice(r, never) ! () = %v, want 7", got)
	}
	if got := Choice(Never[Unit, int](), r).React(Unit{}); got != 7 {
		t.Fatalf("choice(never, r) ! () = %v, want 7", got)
	}
}

// S4 (rendezvous): two goroutines race upd(cell, +1) and upd(cell, *2)
// against cell=3. The final value is either 7 or 8, and each caller's
// own return value is the snapshot its committed update replaced: the
// first committer sees 3, the second sees the first committer's result.
func TestUpdRendezvous(t *testing.T) {
	cell := cas.NewRef(3)
	var wg sync.WaitGroup
	results := make([]int, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = Upd(cell, func(v int) int { return v + 1 }).React(Unit{})
	}()
	go func() {
		defer wg.Done()
		results[1] = Upd(cell, func(v int) int { return v * 2 }).React(Unit{})
	}()
	wg.Wait()

	final := cell.Get()
	if final != 7 && final != 8 {
		t.Fatalf("final cell value = %v, want 7 or 8", final)
	}
	want := [2]int{6, 3} // *2 committed first (3->6), then +1 saw 6
	if final == 8 {
		want = [2]int{3, 4} // +1 committed first (3->4), then *2 saw 4
	}
	if results[0] != want[0] || results[1] != want[1] {
		t.Fatalf("callers observed %v with final value %v, want %v", results, final, want)
	}
}

// S5 (block/unpark): T1 publishes a Waiter into an empty SwapChan and
// parks; T2 completes it with "hello" and commits. T1 returns "hello"
// and is unparked exactly once.
func TestBlockUnpark(t *testing.T) {
	ch := swapchan.New[string]()
	done := make(chan string, 1)

	go func() {
		done <- swapchan.Recv(ch).React(Unit{})
	}()

	time.Sleep(20 * time.Millisecond) // give T1 a chance to publish and park

	swapchan.Send(ch).React("hello")

	select {
	case got := <-done:
		if got != "hello" {
			t.Fatalf("T1 received %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("T1 never woke up")
	}
}

// S6 (catalyst): dissolve a reagent that consumes from a channel and
// post-commits an increment on a counter. After n external producers
// send, the counter equals n, and the catalyst keeps reacting.
func TestCatalystCountsProducers(t *testing.T) {
	ch := swapchan.New[int]()
	counter := cas.NewRef(0)

	Dissolve(Compose(swapchan.Recv(ch), PostCommit(func(int) {
		Upd(counter, func(v int) int { return v + 1 }).React(Unit{})
	})))

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			swapchan.Send(ch).React(1)
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for counter.Get() != n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := counter.Get(); got != n {
		t.Fatalf("counter = %v after %v sends, want %v", got, n, n)
	}
}

// Property 5: r >=> commit is observationally equivalent to r.
func TestCommitIdentity(t *testing.T) {
	cell := cas.NewRef(1)
	plain := Upd(cell, func(v int) int { return v + 1 }).React(Unit{})
	cell.Swap(1)
	composed := Compose(Upd(cell, func(v int) int { return v + 1 }), Commit[int]()).React(Unit{})
	if plain != composed {
		t.Fatalf("Upd ! () = %v, (Upd >=> commit) ! () = %v, want equal", plain, composed)
	}
}

// Property 1 (atomicity across multiple cells): a Reaction spanning two
// distinct cas.Refs commits both cells together or neither, even when
// concurrent reactions record the pair in opposite orders — the stripe
// lock table's stripe-index-sorted acquisition order is what keeps that from
// deadlocking, and the validate-then-apply pass is what keeps a racing
// commit from ever advancing only one of the two cells.
func TestMultiCellCommitAtomicity(t *testing.T) {
	cellA := cas.NewRef(0)
	cellB := cas.NewRef(0)
	inc := func(v int) int { return v + 1 }

	forward := Then(Upd(cellA, inc), Upd(cellB, inc))
	reverse := Then(Upd(cellB, inc), Upd(cellA, inc))

	const perGroup = 50
	var wg sync.WaitGroup
	wg.Add(2 * perGroup)
	for i := 0; i < perGroup; i++ {
		go func() {
			defer wg.Done()
			forward.React(Unit{})
		}()
		go func() {
			defer wg.Done()
			reverse.React(Unit{})
		}()
	}
	wg.Wait()

	want := 2 * perGroup
	if a, b := cellA.Get(), cellB.Get(); a != want || b != want {
		t.Fatalf("cellA=%v cellB=%v after %v concurrent two-cell commits in both orderings, want both = %v", a, b, want, want)
	}
}

// Property 2 / 7: at most one of TryAbort / TryComplete succeeds on a
// given Waiter, and repeated TryAbort calls agree with each other.
func TestWaiterAtMostOneCompletion(t *testing.T) {
	w := newWaiter(true)
	var wg sync.WaitGroup
	completed := make([]bool, 10)
	wg.Add(10)
	for i := 0; i < 10; i++ {
		i := i
		go func() {
			defer wg.Done()
			completed[i] = w.TryComplete(i)
		}()
	}
	wg.Wait()

	wins := 0
	for _, ok := range completed {
		if ok {
			wins++
		}
	}
	if wins > 1 {
		t.Fatalf("%d TryComplete calls won, want at most 1", wins)
	}

	_, had1 := w.TryAbort()
	_, had2 := w.TryAbort()
	if had1 != had2 {
		t.Fatalf("repeated TryAbort disagreed: %v vs %v", had1, had2)
	}
}

// Property 9: under no contention, React returns in a bounded number of
// loop iterations when a partner is available — exercised indirectly by
// bounding wall-clock time for an uncontended rendezvous.
func TestUncontendedReactTerminatesPromptly(t *testing.T) {
	cell := cas.NewRef(0)
	start := time.Now()
	Upd(cell, func(v int) int { return v + 1 }).React(Unit{})
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("uncontended React took %v, want a bounded handful of retry loops", time.Since(start))
	}
}
