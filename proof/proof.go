// Package proof models the boundary to the out-of-scope zero-knowledge
// circuits: a price or collateral assertion may
// optionally be accompanied by a proof blob, and the protocol treats that
// blob as opaque, delegating verification to a Verifier collaborator.
package proof

import "zkusd/protoerrors"

// Ref is an opaque proof blob plus the claim it attests to.
type Ref struct {
	Blob       []byte
	PriceCents uint64
}

// Verifier checks a Ref against whatever circuit-specific logic a real
// implementation would carry. No real circuit verification lives here.
type Verifier interface {
	Verify(ref Ref) error
}

// NoopVerifier accepts any Ref carrying a non-empty blob. It stands in for a
// real ZK verifier until one is wired in.
type NoopVerifier struct{}

// Verify implements Verifier.
func (NoopVerifier) Verify(ref Ref) error {
	if len(ref.Blob) == 0 {
		return protoerrors.InvalidProof()
	}
	return nil
}
