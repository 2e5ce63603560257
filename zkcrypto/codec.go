package zkcrypto

import (
	"encoding/hex"
	"fmt"
)

// HexString renders a Hash as a lowercase hex string.
func (h Hash) HexString() string { return hex.EncodeToString(h[:]) }

// HashFromHex parses a hex-encoded 32-byte hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("zkcrypto: invalid hash hex: %w", err)
	}
	if len(b) != 32 {
		return Hash{}, fmt.Errorf("zkcrypto: hash must be 32 bytes, got %d", len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// HexString renders a compact signature as a lowercase hex string.
func (s Signature) HexString() string { return hex.EncodeToString(s[:]) }

// SignatureFromHex parses a hex-encoded 64-byte compact signature.
func SignatureFromHex(s string) (Signature, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Signature{}, fmt.Errorf("zkcrypto: invalid signature hex: %w", err)
	}
	if len(b) != 64 {
		return Signature{}, ErrInvalidSignatureLength
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}

// HexString renders the compressed public key as a lowercase hex string.
func (p PublicKey) HexString() string {
	c := p.Compressed()
	return hex.EncodeToString(c[:])
}

// PublicKeyFromHex parses a hex-encoded 33-byte compressed public key.
func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(b) != 33 {
		return PublicKey{}, ErrInvalidPublicKey
	}
	return PublicKeyFromCompressed(b)
}
