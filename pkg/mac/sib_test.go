package mac

import "testing"

func TestMIBDue(t *testing.T) {
	for _, slot := range []uint32{0, 80, 160, 800} {
		if !mibDue(slot) {
			t.Errorf("Expected MIB due at slot %d", slot)
		}
	}
	for _, slot := range []uint32{1, 79, 81, 159} {
		if mibDue(slot) {
			t.Errorf("Did not expect MIB due at slot %d", slot)
		}
	}
}

func TestSIBScheduler_DueSlots(t *testing.T) {
	var s sibScheduler
	s.add(sibEntry{index: 1, periodicity: 2, payload: []byte{0x01}}) // every 20 slots
	s.add(sibEntry{index: 2, periodicity: 4, payload: []byte{0x02}}) // every 40 slots

	collect := func(slot uint32) []int {
		var got []int
		s.due(slot, func(e *sibEntry) {
			got = append(got, e.index)
		})
		return got
	}

	if got := collect(20); len(got) != 1 || got[0] != 1 {
		t.Errorf("Slot 20: expected [1], got %v", got)
	}
	if got := collect(40); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Slot 40: expected [1 2], got %v", got)
	}
	if got := collect(25); got != nil {
		t.Errorf("Slot 25: expected none, got %v", got)
	}
}

func TestSIBScheduler_AscendingOrder(t *testing.T) {
	var s sibScheduler
	s.add(sibEntry{index: 3, periodicity: 1, payload: []byte{3}})
	s.add(sibEntry{index: 1, periodicity: 1, payload: []byte{1}})
	s.add(sibEntry{index: 2, periodicity: 1, payload: []byte{2}})

	var got []int
	s.due(10, func(e *sibEntry) {
		got = append(got, e.index)
	})

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Expected ascending [1 2 3], got %v", got)
	}
}

func TestSIBScheduler_EmptyPayloadSkipped(t *testing.T) {
	var s sibScheduler
	s.add(sibEntry{index: 1, periodicity: 1})

	called := false
	s.due(0, func(e *sibEntry) { called = true })
	if called {
		t.Error("A SIB without a cached payload must be skipped")
	}
}
