package zkcrypto

import (
	"crypto/sha256"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := TaggedHash("test", []byte("hello world"))
	sig, err := priv.Sign(msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub := priv.PubKey()
	if !Verify(pub, msg, sig) {
		t.Fatalf("expected signature to verify")
	}
	other := TaggedHash("test", []byte("tampered"))
	if Verify(pub, other, sig) {
		t.Fatalf("expected signature over different message to fail")
	}
}

func TestVerifyIsPure(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()
	msg := TaggedHash("test", []byte("idempotent"))
	sig, _ := priv.Sign(msg)
	first := Verify(pub, msg, sig)
	for i := 0; i < 5; i++ {
		if Verify(pub, msg, sig) != first {
			t.Fatalf("verify is not deterministic across repeated calls")
		}
	}
}

func TestPositionIDDeterministic(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()
	id1 := PositionID(pub, 7)
	id2 := PositionID(pub, 7)
	if id1 != id2 {
		t.Fatalf("expected deterministic position id")
	}
	id3 := PositionID(pub, 8)
	if id1 == id3 {
		t.Fatalf("expected different nonce to change position id")
	}
}

func TestHashHexRoundTrip(t *testing.T) {
	h := TaggedHash("entity", []byte("body"))
	decoded, err := HashFromHex(h.HexString())
	if err != nil {
		t.Fatalf("hash from hex: %v", err)
	}
	if decoded != h {
		t.Fatalf("round trip mismatch")
	}
}

func TestPublicKeyHexRoundTrip(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()
	decoded, err := PublicKeyFromHex(pub.HexString())
	if err != nil {
		t.Fatalf("pubkey from hex: %v", err)
	}
	if decoded.Compressed() != pub.Compressed() {
		t.Fatalf("round trip mismatch")
	}
}

func TestSignatureHexRoundTrip(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	msg := TaggedHash("test", []byte("sig-roundtrip"))
	sig, _ := priv.Sign(msg)
	decoded, err := SignatureFromHex(sig.HexString())
	if err != nil {
		t.Fatalf("signature from hex: %v", err)
	}
	if decoded != sig {
		t.Fatalf("round trip mismatch")
	}
}

func TestAddressBech32RoundTrip(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	addr := priv.PubKey().Address()
	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if decoded.String() != addr.String() {
		t.Fatalf("round trip mismatch: %s vs %s", decoded.String(), addr.String())
	}
}

func TestPositionIDFromBytes(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()
	compressed := pub.Compressed()
	expected := Hash(sha256.Sum256(append(append([]byte(nil), compressed[:]...), BE64(42)...)))
	got := PositionID(pub, 42)
	if got != expected {
		t.Fatalf("position id derivation mismatch")
	}
}
