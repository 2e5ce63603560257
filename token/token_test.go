package token

import (
	"testing"

	"zkusd/zkcrypto"
)

func testHolder(t *testing.T) zkcrypto.PublicKey {
	t.Helper()
	priv, err := zkcrypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv.PubKey()
}

func TestMintIncreasesBalanceAndSupply(t *testing.T) {
	l := NewLedger()
	holder := testHolder(t)

	if err := l.Mint(holder, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if l.BalanceOf(holder) != 1000 {
		t.Fatalf("expected balance 1000, got %d", l.BalanceOf(holder))
	}
	if l.Supply() != 1000 {
		t.Fatalf("expected supply 1000, got %d", l.Supply())
	}
}

func TestBurnDecreasesBalanceAndSupply(t *testing.T) {
	l := NewLedger()
	holder := testHolder(t)
	if err := l.Mint(holder, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Burn(holder, 400); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if l.BalanceOf(holder) != 600 {
		t.Fatalf("expected balance 600, got %d", l.BalanceOf(holder))
	}
	if l.Supply() != 600 {
		t.Fatalf("expected supply 600, got %d", l.Supply())
	}
}

func TestBurnRejectsInsufficientBalance(t *testing.T) {
	l := NewLedger()
	holder := testHolder(t)
	if err := l.Mint(holder, 100); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Burn(holder, 200); err == nil {
		t.Fatalf("expected burn exceeding balance to fail")
	}
}

func TestBurnToZeroPrunesBalanceEntry(t *testing.T) {
	l := NewLedger()
	holder := testHolder(t)
	if err := l.Mint(holder, 500); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Burn(holder, 500); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if len(l.balances) != 0 {
		t.Fatalf("expected zero-balance entry to be pruned")
	}
}

func TestTransferMovesBalanceWithoutChangingSupply(t *testing.T) {
	l := NewLedger()
	sender := testHolder(t)
	recipient := testHolder(t)
	if err := l.Mint(sender, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(sender, recipient, 300); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if l.BalanceOf(sender) != 700 {
		t.Fatalf("expected sender balance 700, got %d", l.BalanceOf(sender))
	}
	if l.BalanceOf(recipient) != 300 {
		t.Fatalf("expected recipient balance 300, got %d", l.BalanceOf(recipient))
	}
	if l.Supply() != 1000 {
		t.Fatalf("expected supply unchanged at 1000, got %d", l.Supply())
	}
}

func TestTransferRejectsInsufficientBalance(t *testing.T) {
	l := NewLedger()
	sender := testHolder(t)
	recipient := testHolder(t)
	if err := l.Mint(sender, 100); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(sender, recipient, 200); err == nil {
		t.Fatalf("expected transfer exceeding balance to fail")
	}
}

func TestVerifySupplyInvariantDetectsMismatch(t *testing.T) {
	l := NewLedger()
	holder := testHolder(t)
	if err := l.Mint(holder, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.VerifySupplyInvariant(); err != nil {
		t.Fatalf("expected invariant to hold: %v", err)
	}

	l.supply = 999
	if err := l.VerifySupplyInvariant(); err == nil {
		t.Fatalf("expected invariant violation to be detected")
	}
}
