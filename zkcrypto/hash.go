// Package zkcrypto provides the protocol's content hashing, secp256k1 key
// handling, compact ECDSA signatures, and position-id derivation.
package zkcrypto

import "crypto/sha256"

// Hash is a 32-byte content hash.
type Hash [32]byte

// Bytes returns a copy of the hash bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// TaggedHash computes SHA-256 over a domain-separated, entity-tagged body:
// SHA256("ZKUSD-<entity>\x00" || body). This keeps hashes for distinct
// record kinds (positions, events, proposals, ...) from colliding even when
// their serialized bodies happen to match byte-for-byte.
func TaggedHash(entity string, body []byte) Hash {
	tag := append([]byte("ZKUSD-"+entity), 0x00)
	h := sha256.New()
	h.Write(tag)
	h.Write(body)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// BE64 encodes v as 8 big-endian bytes, the canonical encoding used when
// hashing or persisting u64 fields.
func BE64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
