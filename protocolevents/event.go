// Package protocolevents defines the protocol's typed event log: every
// mutating operation emits a structured Event, appended to an in-memory
// Log that also exposes a content-addressed Merkle root over everything
// recorded so far.
package protocolevents

import (
	"crypto/sha256"
	"sort"
)

// Event is a structured state change emitted by an operation.
type Event interface {
	EventType() string
	attrs() map[string]string
}

// Record is the type-erased, attribute-map rendering of an Event, the shape
// a downstream consumer (indexer, RPC subscriber) actually receives.
type Record struct {
	Type       string
	Attributes map[string]string
}

func render(e Event) Record {
	return Record{Type: e.EventType(), Attributes: e.attrs()}
}

// Log is an append-only sequence of events produced during one or more
// orchestrator executions.
type Log struct {
	records []Record
}

// NewLog returns an empty event log.
func NewLog() *Log {
	return &Log{}
}

// Append renders and records e.
func (l *Log) Append(e Event) {
	l.records = append(l.records, render(e))
}

// All returns every record appended so far, in emission order.
func (l *Log) All() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records appended so far.
func (l *Log) Len() int {
	return len(l.records)
}

// Clone returns a deep copy of the log, for the orchestrator's shadow-
// copy-then-commit execution model.
func (l *Log) Clone() *Log {
	out := &Log{records: make([]Record, len(l.records))}
	for i, r := range l.records {
		attrs := make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			attrs[k] = v
		}
		out.records[i] = Record{Type: r.Type, Attributes: attrs}
	}
	return out
}

// MerkleRoot computes a binary SHA-256 Merkle root over the content hash of
// every record appended so far, in emission order. An empty log's root is
// the hash of the empty string. A single-leaf log's root is that leaf's own
// hash. With an odd number of leaves at any level, the last hash is
// duplicated upward (the Bitcoin convention), keeping the tree's shape independent of this package's own
// invented layout.
func (l *Log) MerkleRoot() [32]byte {
	if len(l.records) == 0 {
		return sha256.Sum256(nil)
	}
	level := make([][32]byte, len(l.records))
	for i, r := range l.records {
		level[i] = leafHash(r)
	}
	for len(level) > 1 {
		var next [][32]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, pairHash(level[i], level[i+1]))
			} else {
				next = append(next, pairHash(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

func leafHash(r Record) [32]byte {
	h := sha256.New()
	h.Write([]byte{0x00}) // leaf-node domain separation
	h.Write([]byte(r.Type))
	for _, k := range sortedKeys(r.Attributes) {
		h.Write([]byte{0x1f}) // unit separator between fields
		h.Write([]byte(k))
		h.Write([]byte{0x1f})
		h.Write([]byte(r.Attributes[k]))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func pairHash(a, b [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{0x01}) // internal-node domain separation
	h.Write(a[:])
	h.Write(b[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
