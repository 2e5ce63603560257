package sortedindex

import (
	"testing"

	"zkusd/zkcrypto"
)

func id(b byte) zkcrypto.Hash {
	var h zkcrypto.Hash
	h[0] = b
	return h
}

func TestInsertMaintainsAscendingOrder(t *testing.T) {
	idx := New()
	idx.Insert(id(1), 300)
	idx.Insert(id(2), 100)
	idx.Insert(id(3), 200)

	got := idx.All()
	want := []uint64{100, 200, 300}
	for i, e := range got {
		if e.RatioBps != want[i] {
			t.Fatalf("expected ascending order %v, got %v", want, got)
		}
	}
}

func TestInsertTiebreaksByID(t *testing.T) {
	idx := New()
	idx.Insert(id(2), 100)
	idx.Insert(id(1), 100)

	got := idx.All()
	if got[0].ID != id(1) || got[1].ID != id(2) {
		t.Fatalf("expected id(1) before id(2) on ratio tie, got %v", got)
	}
}

func TestReinsertUpdatesPosition(t *testing.T) {
	idx := New()
	idx.Insert(id(1), 300)
	idx.Insert(id(2), 100)

	idx.Reinsert(id(1), 50)
	got := idx.All()
	if got[0].ID != id(1) || got[0].RatioBps != 50 {
		t.Fatalf("expected id(1) re-sorted to front with ratio 50, got %v", got)
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	idx := New()
	idx.Insert(id(1), 100)
	idx.Insert(id(2), 200)
	idx.Remove(id(1))

	if idx.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", idx.Len())
	}
	if idx.IndexOf(id(1)) != -1 {
		t.Fatalf("expected id(1) removed")
	}
	if idx.IndexOf(id(2)) != 0 {
		t.Fatalf("expected id(2) at index 0, got %d", idx.IndexOf(id(2)))
	}
}

func TestBelowReturnsAscendingPrefix(t *testing.T) {
	idx := New()
	idx.Insert(id(1), 90)
	idx.Insert(id(2), 105)
	idx.Insert(id(3), 120)
	idx.Insert(id(4), 200)

	below := idx.Below(110)
	if len(below) != 2 {
		t.Fatalf("expected 2 entries below 110, got %d", len(below))
	}
	if below[0].ID != id(1) || below[1].ID != id(2) {
		t.Fatalf("expected ascending prefix [id(1), id(2)], got %v", below)
	}
}

func TestRebuildReplacesAllEntries(t *testing.T) {
	idx := New()
	idx.Insert(id(1), 100)
	idx.Rebuild([]Entry{{ID: id(2), RatioBps: 50}, {ID: id(3), RatioBps: 75}})

	if idx.Len() != 2 {
		t.Fatalf("expected 2 entries after rebuild, got %d", idx.Len())
	}
	if idx.IndexOf(id(1)) != -1 {
		t.Fatalf("expected id(1) gone after rebuild")
	}
	got := idx.All()
	if got[0].ID != id(2) || got[1].ID != id(3) {
		t.Fatalf("expected rebuild to sort ascending, got %v", got)
	}
}
