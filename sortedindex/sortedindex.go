// Package sortedindex maintains positions ordered ascending by
// collateralization ratio, the source of truth for "who to liquidate next"
// and "who to redeem from next".
package sortedindex

import (
	"sort"

	"zkusd/zkcrypto"
)

// Entry pairs a position id with its ratio in integer percent.
type Entry struct {
	ID       zkcrypto.Hash
	RatioBps uint64
}

// Index is an ascending-by-ratio, id-tiebroken list of entries with O(log n)
// insert/remove via binary search over a backing slice, mirroring the
// sorted-by-health structure native/lending keeps informally via per-call
// scans, made explicit and persistent here so liquidation and redemption get
// O(log n) insert and range queries rather than a full rescan per operation.
type Index struct {
	entries []Entry
	pos     map[zkcrypto.Hash]int
}

// New returns an empty index.
func New() *Index {
	return &Index{pos: make(map[zkcrypto.Hash]int)}
}

// Len returns the number of tracked entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func less(a, b Entry) bool {
	if a.RatioBps != b.RatioBps {
		return a.RatioBps < b.RatioBps
	}
	return lessHash(a.ID, b.ID)
}

func lessHash(a, b zkcrypto.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// searchInsertPoint returns the index at which e would be inserted to keep
// entries sorted ascending.
func (idx *Index) searchInsertPoint(e Entry) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return !less(idx.entries[i], e)
	})
}

// Insert adds id at ratioBps, or re-positions it if already present.
func (idx *Index) Insert(id zkcrypto.Hash, ratioBps uint64) {
	idx.Remove(id)
	e := Entry{ID: id, RatioBps: ratioBps}
	i := idx.searchInsertPoint(e)
	idx.entries = append(idx.entries, Entry{})
	copy(idx.entries[i+1:], idx.entries[i:])
	idx.entries[i] = e
	idx.reindexFrom(i)
}

// Remove deletes id from the index if present.
func (idx *Index) Remove(id zkcrypto.Hash) {
	i, ok := idx.pos[id]
	if !ok {
		return
	}
	idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
	delete(idx.pos, id)
	idx.reindexFrom(i)
}

// reindexFrom fixes up the id->slice-index map for every entry at or after i
// (an insert/remove shifts everything that follows it by one).
func (idx *Index) reindexFrom(i int) {
	for ; i < len(idx.entries); i++ {
		idx.pos[idx.entries[i].ID] = i
	}
}

// Reinsert updates id's ratio, equivalent to Insert when id is already
// tracked; kept as a distinct name since callers (position mutation call
// sites) reach for it specifically on ratio change rather than first-time
// insertion.
func (idx *Index) Reinsert(id zkcrypto.Hash, newRatioBps uint64) {
	idx.Insert(id, newRatioBps)
}

// Below returns every entry with RatioBps strictly below threshold, in
// ascending order, via a single binary search plus a slice of the prefix.
func (idx *Index) Below(threshold uint64) []Entry {
	n := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].RatioBps >= threshold
	})
	out := make([]Entry, n)
	copy(out, idx.entries[:n])
	return out
}

// IndexOf returns id's position within the ascending order, or -1 if absent.
// Used to seed a redemption scan from an optional hint.
func (idx *Index) IndexOf(id zkcrypto.Hash) int {
	i, ok := idx.pos[id]
	if !ok {
		return -1
	}
	return i
}

// All returns every entry in ascending order.
func (idx *Index) All() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Clone returns a deep copy of the index, for the orchestrator's shadow-
// copy-then-commit execution model.
func (idx *Index) Clone() *Index {
	out := &Index{
		entries: make([]Entry, len(idx.entries)),
		pos:     make(map[zkcrypto.Hash]int, len(idx.pos)),
	}
	copy(out.entries, idx.entries)
	for k, v := range idx.pos {
		out.pos[k] = v
	}
	return out
}

// Rebuild discards all entries and replaces them with fresh, deterministically
// ordered ones. Used when a price change invalidates the index wholesale,
// since a price change alone can change every position's ratio at once.
func (idx *Index) Rebuild(entries []Entry) {
	fresh := append([]Entry(nil), entries...)
	sort.Slice(fresh, func(i, j int) bool { return less(fresh[i], fresh[j]) })
	idx.entries = fresh
	idx.pos = make(map[zkcrypto.Hash]int, len(fresh))
	idx.reindexFrom(0)
}
