package zkcrypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable bech32 prefix used when displaying an
// owner identity derived from a public key.
type AddressPrefix string

// ProtocolPrefix is the single address prefix used by the protocol: there is
// only one asset-holding namespace here, so no per-asset prefix table is
// needed.
const ProtocolPrefix AddressPrefix = "zku"

var (
	// ErrInvalidPublicKey is returned when a byte slice does not decode to a
	// valid compressed secp256k1 point.
	ErrInvalidPublicKey = errors.New("zkcrypto: invalid public key")
	// ErrInvalidSignatureLength is returned when a signature is not exactly
	// 64 bytes (compact R || S, no recovery id).
	ErrInvalidSignatureLength = errors.New("zkcrypto: signature must be 64 bytes")
	// ErrInvalidPrivateKey is returned when a byte slice does not decode to a
	// valid secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("zkcrypto: invalid private key")
)

// PrivateKey wraps a secp256k1 scalar.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// PublicKey wraps a secp256k1 point, always handled in its 33-byte
// compressed form per the external interface.
type PublicKey struct {
	key *ecdsa.PublicKey
}

// Signature is a 64-byte compact ECDSA signature (R || S); no recovery id
// is carried, matching the protocol's external wire format.
type Signature [64]byte

// GeneratePrivateKey creates a new random secp256k1 keypair.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes decodes a 32-byte scalar into a private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the 32-byte scalar encoding of the private key.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.key)
}

// PubKey derives the corresponding public key.
func (k *PrivateKey) PubKey() PublicKey {
	return PublicKey{key: &k.key.PublicKey}
}

// Sign produces a 64-byte compact ECDSA signature over a 32-byte message
// hash (the caller is responsible for hashing the operation body first,
// typically via TaggedHash).
func (k *PrivateKey) Sign(msgHash Hash) (Signature, error) {
	full, err := ethcrypto.Sign(msgHash[:], k.key)
	if err != nil {
		return Signature{}, err
	}
	var sig Signature
	copy(sig[:], full[:64])
	return sig, nil
}

// Compressed returns the 33-byte compressed SEC1 encoding of the public key.
func (p PublicKey) Compressed() [33]byte {
	var out [33]byte
	copy(out[:], ethcrypto.CompressPubkey(p.key))
	return out
}

// PublicKeyFromCompressed decodes a 33-byte compressed public key.
func PublicKeyFromCompressed(b []byte) (PublicKey, error) {
	key, err := ethcrypto.DecompressPubkey(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return PublicKey{key: key}, nil
}

// Address derives the bech32 display address for this public key: the
// RIPEMD-free, single-hash form used purely for human-readable logging and
// round-trip tests; it is not consulted by any
// protocol invariant.
func (p PublicKey) Address() Address {
	hash := TaggedHash("pubkey-address", p.Compressed()[:])
	var body [20]byte
	copy(body[:], hash[:20])
	return Address{prefix: ProtocolPrefix, bytes: body}
}

// Verify checks a 64-byte compact ECDSA signature over msgHash against pub.
func Verify(pub PublicKey, msgHash Hash, sig Signature) bool {
	compressed := pub.Compressed()
	return ethcrypto.VerifySignature(compressed[:], msgHash[:], sig[:])
}

// VerifyBytes behaves like Verify but accepts a raw compressed public key and
// raw 64-byte signature slice, returning ErrInvalidSignatureLength or
// ErrInvalidPublicKey for malformed input instead of panicking.
func VerifyBytes(pubCompressed []byte, msgHash Hash, sigBytes []byte) (bool, error) {
	if len(sigBytes) != 64 {
		return false, ErrInvalidSignatureLength
	}
	if _, err := ethcrypto.DecompressPubkey(pubCompressed); err != nil {
		return false, ErrInvalidPublicKey
	}
	return ethcrypto.VerifySignature(pubCompressed, msgHash[:], sigBytes), nil
}

// PositionID derives a 32-byte position identifier from the owning public
// key and the caller-supplied nonce: plain SHA256(owner.Compressed() ||
// nonce_be_u64), untagged — the domain-separation tag TaggedHash applies is
// reserved for content hashes, not identifiers.
func PositionID(owner PublicKey, nonce uint64) Hash {
	compressed := owner.Compressed()
	body := append(append([]byte(nil), compressed[:]...), BE64(nonce)...)
	return Hash(sha256.Sum256(body))
}

// Address is a bech32-encoded display form of a 20-byte identity hash.
type Address struct {
	prefix AddressPrefix
	bytes  [20]byte
}

// String renders the bech32 encoding of the address.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Hex renders the raw 20-byte identity hash as a hex string, used for the
// hex/canonical round-trip property.
func (a Address) Hex() string {
	return hex.EncodeToString(a.bytes[:])
}

// DecodeAddress parses a bech32-encoded address string.
func DecodeAddress(s string) (Address, error) {
	prefix, decoded, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("zkcrypto: invalid bech32 address: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("zkcrypto: invalid bech32 payload: %w", err)
	}
	if len(conv) != 20 {
		return Address{}, fmt.Errorf("zkcrypto: address must decode to 20 bytes, got %d", len(conv))
	}
	var a Address
	a.prefix = AddressPrefix(prefix)
	copy(a.bytes[:], conv)
	return a, nil
}
