package convo

import (
	"testing"
	"time"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(NewExpenseChain())

	if _, ok := m.Lookup(7); ok {
		t.Fatal("unexpected session before Start")
	}

	s := m.Start(7, 42, FlowManual)
	if s.Owner != 7 || s.CorrelationID != 42 {
		t.Fatalf("session = %+v", s)
	}
	if got, ok := m.Lookup(7); !ok || got != s {
		t.Fatal("Lookup did not return the started session")
	}

	// Starting again replaces the session.
	s2 := m.Start(7, 43, FlowSimple)
	if got, _ := m.Lookup(7); got != s2 {
		t.Fatal("Start did not replace the existing session")
	}

	m.Release(s2)
	if _, ok := m.Lookup(7); ok {
		t.Fatal("session survived Release")
	}
}

func TestReleaseOnlyRemovesOwnSession(t *testing.T) {
	m := NewManager(NewExpenseChain())
	old := m.Start(7, 42, FlowManual)
	fresh := m.Start(7, 43, FlowSimple)

	// A handler still holding the replaced session must not evict its successor.
	m.Release(old)
	if got, ok := m.Lookup(7); !ok || got != fresh {
		t.Fatal("Release with a stale session removed the current one")
	}

	m.Release(fresh)
	if _, ok := m.Lookup(7); ok {
		t.Fatal("session survived Release")
	}
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	m := NewManager(NewExpenseChain())
	a := m.Start(1, 10, FlowManual)
	b := m.Start(2, 20, FlowManual)

	a.Set(SlotDescription, "Lunch")
	if b.Satisfied(SlotDescription) {
		t.Fatal("value leaked between sessions")
	}
}

func TestManagerReap(t *testing.T) {
	m := NewManager(NewExpenseChain())
	m.Start(1, 10, FlowManual)
	m.Start(2, 20, FlowManual)

	if n := m.Reap(time.Now(), 0); n != 0 {
		t.Fatalf("Reap with zero ttl evicted %d", n)
	}
	if n := m.Reap(time.Now().Add(2*time.Hour), time.Hour); n != 2 {
		t.Fatalf("Reap evicted %d, want 2", n)
	}
	if _, ok := m.Lookup(1); ok {
		t.Fatal("session 1 survived Reap")
	}
	if _, ok := m.Lookup(2); ok {
		t.Fatal("session 2 survived Reap")
	}
}

func TestReapConcurrentWithSet(t *testing.T) {
	m := NewManager(NewExpenseChain())
	s := m.Start(1, 10, FlowManual)

	// A handler keeps writing while the reaper evicts; run under -race.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s.Set(SlotDescription, "Lunch")
		}
	}()
	for i := 0; i < 1000; i++ {
		m.Reap(time.Now(), time.Nanosecond)
	}
	<-done
}
