package ooo

import "testing"

func TestRenameMapLookupArchitectural(t *testing.T) {
	m := NewRenameMap()
	if _, live := m.Lookup(5); live {
		t.Fatalf("fresh map should report no live producer")
	}
	if _, live := m.Lookup(0); live {
		t.Fatalf("x0 must never have a live producer")
	}
}

func TestRenameMapSetProducerAndSupersede(t *testing.T) {
	m := NewRenameMap()
	m.SetProducer(5, 3)
	slot, live := m.Lookup(5)
	if !live || slot != 3 {
		t.Fatalf("got (%d,%v), want (3,true)", slot, live)
	}

	m.SetProducer(5, 9)
	slot, live = m.Lookup(5)
	if !live || slot != 9 {
		t.Fatalf("later producer should supersede: got (%d,%v), want (9,true)", slot, live)
	}

	m.SetProducer(0, 1)
	if _, live := m.Lookup(0); live {
		t.Fatalf("x0 must ignore SetProducer")
	}
}

func TestRenameMapClearIfOwner(t *testing.T) {
	m := NewRenameMap()
	m.SetProducer(5, 3)
	m.SetProducer(5, 9) // 9 now owns reg 5

	m.ClearIfOwner(5, 3) // stale commit from the superseded producer
	if _, live := m.Lookup(5); !live {
		t.Fatalf("clearing a non-owning slot must not drop the live mapping")
	}

	m.ClearIfOwner(5, 9)
	if _, live := m.Lookup(5); live {
		t.Fatalf("clearing the actual owner should drop the mapping")
	}
}

func TestRenameMapRebuildAfterSquash(t *testing.T) {
	m := NewRenameMap()
	m.SetProducer(5, 3)
	m.SetProducer(6, 4)

	m.RebuildAfterSquash(map[int]bool{3: true})

	if _, live := m.Lookup(5); !live {
		t.Fatalf("surviving slot's mapping should remain")
	}
	if _, live := m.Lookup(6); live {
		t.Fatalf("discarded slot's mapping should be dropped")
	}
}

func TestRenameMapClone(t *testing.T) {
	m := NewRenameMap()
	m.SetProducer(5, 3)

	c := m.Clone()
	c.SetProducer(5, 9)

	slot, _ := m.Lookup(5)
	if slot != 3 {
		t.Fatalf("mutating the clone should not affect the original")
	}
}
