package stabilitypool

import (
	"testing"

	"zkusd/zkcrypto"
)

func testDepositor(t *testing.T) zkcrypto.PublicKey {
	t.Helper()
	priv, err := zkcrypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv.PubKey()
}

func TestDepositThenWithdrawWithNoAbsorptions(t *testing.T) {
	p := New()
	d := testDepositor(t)
	if err := p.Deposit(d, 10_000_00, 100); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if p.CurrentValue(d) != 10_000_00 {
		t.Fatalf("expected current value 10_000_00, got %d", p.CurrentValue(d))
	}
	withdrawn, gains, err := p.Withdraw(d, 10_000_00)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn != 10_000_00 || gains != 0 {
		t.Fatalf("expected full withdrawal with no gains, got withdrawn=%d gains=%d", withdrawn, gains)
	}
}

func TestDepositBelowMinimumRejected(t *testing.T) {
	p := New()
	d := testDepositor(t)
	if err := p.Deposit(d, 50, 100); err == nil {
		t.Fatalf("expected below-minimum deposit to fail")
	}
}

// S4: two depositors at the same snapshot, one absorption, fair split.
func TestFairnessAcrossSimultaneousDepositors(t *testing.T) {
	p := New()
	d1, d2 := testDepositor(t), testDepositor(t)

	if err := p.Deposit(d1, 100_000_00, 1); err != nil {
		t.Fatalf("deposit d1: %v", err)
	}
	if err := p.Deposit(d2, 100_000_00, 1); err != nil {
		t.Fatalf("deposit d2: %v", err)
	}

	if err := p.Absorb(2_000_000, 22_000_000); err != nil {
		t.Fatalf("absorb: %v", err)
	}

	v1, v2 := p.CurrentValue(d1), p.CurrentValue(d2)
	if v1 != 90_000_00 || v2 != 90_000_00 {
		t.Fatalf("expected both depositors at 90_000_00, got v1=%d v2=%d", v1, v2)
	}

	g1, g2 := p.CurrentGain(d1), p.CurrentGain(d2)
	if g1 != 11_000_000 || g2 != 11_000_000 {
		t.Fatalf("expected both depositors gaining 11_000_000 sats, got g1=%d g2=%d", g1, g2)
	}
	diff := int64(g1) - int64(g2)
	if diff < -1000 || diff > 1000 {
		t.Fatalf("expected gain parity within 1000 sats, got g1=%d g2=%d", g1, g2)
	}
}

// S5: a full-drain absorption advances the epoch and wipes the pre-existing
// snapshot's compounded value, while its gain stays reachable and claimable.
func TestAbsorptionFullyDrainingPoolAdvancesEpoch(t *testing.T) {
	p := New()
	d := testDepositor(t)

	if err := p.Deposit(d, 100_000_00, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := p.Absorb(100_000_00, 1_000_000); err != nil {
		t.Fatalf("absorb: %v", err)
	}

	if p.Epoch != 1 {
		t.Fatalf("expected epoch to advance to 1, got %d", p.Epoch)
	}
	if p.P.Cmp(scale) != 0 {
		t.Fatalf("expected P reset to SCALE, got %s", p.P.String())
	}
	if p.CurrentValue(d) != 0 {
		t.Fatalf("expected stale-epoch current value 0, got %d", p.CurrentValue(d))
	}
	if p.CurrentGain(d) != 1_000_000 {
		t.Fatalf("expected the draining absorption's gain still reachable, got %d", p.CurrentGain(d))
	}

	// Claiming after the epoch change must still pay out that gain.
	paid, err := p.Claim(d)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if paid != 1_000_000 {
		t.Fatalf("expected claim to pay 1_000_000, got %d", paid)
	}
}

func TestAbsorbRejectsWhenPoolEmpty(t *testing.T) {
	p := New()
	if err := p.Absorb(1000, 1000); err == nil {
		t.Fatalf("expected absorb against an empty pool to fail")
	}
}

func TestAbsorbRejectsDebtExceedingDeposits(t *testing.T) {
	p := New()
	d := testDepositor(t)
	if err := p.Deposit(d, 1_000_00, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := p.Absorb(2_000_00, 1000); err == nil {
		t.Fatalf("expected absorb exceeding total deposits to fail")
	}
}

func TestDepositCarriesForwardExistingValueAndGains(t *testing.T) {
	p := New()
	d1, d2 := testDepositor(t), testDepositor(t)

	if err := p.Deposit(d1, 100_000_00, 1); err != nil {
		t.Fatalf("deposit d1: %v", err)
	}
	if err := p.Deposit(d2, 100_000_00, 1); err != nil {
		t.Fatalf("deposit d2: %v", err)
	}
	if err := p.Absorb(2_000_000, 22_000_000); err != nil {
		t.Fatalf("absorb: %v", err)
	}

	// Depositing again should carry forward d1's compounded value and move
	// its accumulated gain to pending_gains rather than losing it.
	if err := p.Deposit(d1, 1_000_00, 1); err != nil {
		t.Fatalf("top-up deposit: %v", err)
	}
	if p.CurrentValue(d1) != 91_000_00 {
		t.Fatalf("expected carried-forward value 91_000_00, got %d", p.CurrentValue(d1))
	}
	if p.PendingGains(d1) != 11_000_000 {
		t.Fatalf("expected prior gain moved to pending, got %d", p.PendingGains(d1))
	}
}

func TestWithdrawPartialPaysProportionalGain(t *testing.T) {
	p := New()
	d := testDepositor(t)
	if err := p.Deposit(d, 100_000_00, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := p.Absorb(10_000_00, 11_000_000); err != nil {
		t.Fatalf("absorb: %v", err)
	}

	current := p.CurrentValue(d)
	withdrawn, gainsPaid, err := p.Withdraw(d, current/2)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn != current/2 {
		t.Fatalf("expected partial withdrawal of %d, got %d", current/2, withdrawn)
	}
	if gainsPaid == 0 {
		t.Fatalf("expected a non-zero proportional gain payout")
	}
	if p.CurrentValue(d) != current-withdrawn {
		t.Fatalf("expected remaining value %d, got %d", current-withdrawn, p.CurrentValue(d))
	}
}
