package convo

import "testing"

func TestNewExpenseChain(t *testing.T) {
	chain := NewExpenseChain()
	if chain.Len() != 10 {
		t.Fatalf("chain length = %d, want 10", chain.Len())
	}

	// The two automatic slots come first, datetime is the first manual one.
	for i, name := range []string{SlotOwner, SlotCorrelationID} {
		slot, ok := chain.At(i)
		if !ok || slot.Name != name || !slot.Auto {
			t.Fatalf("slot %d = %+v, want auto %q", i, slot, name)
		}
	}
	if pos, ok := chain.Lookup(SlotDatetime); !ok || pos != 2 {
		t.Fatalf("Lookup(datetime) = %d, %v", pos, ok)
	}
	if chain.firstManual() != 2 {
		t.Fatalf("firstManual = %d, want 2", chain.firstManual())
	}

	// The last slot links to End.
	if next := chain.Next(chain.Len() - 1); next != End {
		t.Fatalf("Next(last) = %d, want End", next)
	}
}

func TestChainBuilderRejectsDuplicates(t *testing.T) {
	_, err := NewChainBuilder().
		Add(Slot{Name: "a"}).
		Add(Slot{Name: "a"}).
		Build()
	if err == nil {
		t.Fatal("expected duplicate slot name error")
	}
}

func TestChainBuilderRejectsEmpty(t *testing.T) {
	if _, err := NewChainBuilder().Build(); err == nil {
		t.Fatal("expected error for empty chain")
	}
	if _, err := NewChainBuilder().Add(Slot{}).Build(); err == nil {
		t.Fatal("expected error for unnamed slot")
	}
}

func TestAdvanceSkipsSatisfiedSlots(t *testing.T) {
	chain := NewExpenseChain()
	s := newSession(chain, FlowManual, 1, 2)

	s.Set(SlotDatetime, "2023-01-02 15:04:00")
	s.Set(SlotDescription, "Lunch")
	s.advance()

	slot, ok := s.CurrentSlot()
	if !ok || slot.Name != SlotAmount {
		t.Fatalf("current slot = %+v, want amount", slot)
	}
}

func TestAdvanceReachesEnd(t *testing.T) {
	chain := NewExpenseChain()
	s := newSession(chain, FlowManual, 1, 2)
	for i := 0; i < chain.Len(); i++ {
		slot, _ := chain.At(i)
		s.Set(slot.Name, "x")
	}
	s.advance()
	if s.current != End {
		t.Fatalf("current = %d, want End", s.current)
	}
}
