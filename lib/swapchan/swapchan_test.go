package swapchan

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dedis/reagent"
)

func TestSendRecvRendezvous(t *testing.T) {
	ch := New[int]()
	var wg sync.WaitGroup
	wg.Add(2)

	var got int
	go func() {
		defer wg.Done()
		got = Recv(ch).React(reagent.Unit{})
	}()
	go func() {
		defer wg.Done()
		Send(ch).React(42)
	}()

	wg.Wait()
	require.Equal(t, 42, got)
}

func TestRecvBlocksUntilSend(t *testing.T) {
	ch := New[string]()
	done := make(chan string, 1)
	go func() {
		done <- Recv(ch).React(reagent.Unit{})
	}()

	select {
	case <-done:
		t.Fatal("Recv returned before any Send arrived")
	case <-time.After(20 * time.Millisecond):
	}

	Send(ch).React("hello")
	select {
	case v := <-done:
		require.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Recv never woke up after Send")
	}
}

func TestManySendersOneRecvPerValue(t *testing.T) {
	ch := New[int]()
	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			Send(ch).React(i)
		}()
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	var recvWg sync.WaitGroup
	recvWg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer recvWg.Done()
			v := Recv(ch).React(reagent.Unit{})
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}

	wg.Wait()
	recvWg.Wait()
	require.Len(t, seen, n)
}

func TestCatalystRecvReactsToSend(t *testing.T) {
	ch := New[int]()
	results := make(chan int, 4)

	reagent.Dissolve(reagent.Map(Recv(ch), func(v int) reagent.Unit {
		results <- v
		return reagent.Unit{}
	}))

	Send(ch).React(1)
	Send(ch).React(2)

	require.ElementsMatch(t, []int{1, 2}, []int{<-results, <-results})
}

func TestCatalystSendReactsToRecv(t *testing.T) {
	ch := New[int]()
	reagent.Dissolve(reagent.Compose(reagent.Ret[reagent.Unit, int](99), Send(ch)))

	got := make(chan int, 1)
	go func() { got <- Recv(ch).React(reagent.Unit{}) }()

	select {
	case v := <-got:
		require.Equal(t, 99, v)
	case <-time.After(time.Second):
		t.Fatal("Recv never received a value from the dissolved catalyst Send")
	}
}
