package fixedpoint

import "testing"

func TestSafeAddOverflow(t *testing.T) {
	_, err := SafeAdd(MaxUint64, 1)
	if err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestSafeSubUnderflow(t *testing.T) {
	_, err := SafeSub(1, 2)
	if err != ErrUnderflow {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestSafeMulOverflow(t *testing.T) {
	_, err := SafeMul(MaxUint64, 2)
	if err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMulDivBasic(t *testing.T) {
	// 100_000_000 sats * 10_000_000 cents * 100 / (100_000_000 * 5_000_000) == 200
	got, err := MulDiv(100_000_000, 10_000_000*100, 100_000_000*5_000_000)
	if err != nil {
		t.Fatalf("mul_div: %v", err)
	}
	if got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestMulDivWidensPastUint64(t *testing.T) {
	// a*b alone overflows uint64 (> 1.8e19) but the final quotient fits.
	a := uint64(1) << 63
	b := uint64(10)
	d := uint64(5)
	got, err := MulDiv(a, b, d)
	if err != nil {
		t.Fatalf("mul_div: %v", err)
	}
	want := uint64(1) << 64 / 5 // a*b/d == 2^63*10/5 == 2^64/5
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMulDivUpRoundsUp(t *testing.T) {
	got, err := MulDivUp(1, 1, 3)
	if err != nil {
		t.Fatalf("mul_div_up: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected ceil(1/3)=1, got %d", got)
	}

	down, err := MulDiv(1, 1, 3)
	if err != nil {
		t.Fatalf("mul_div: %v", err)
	}
	if down != 0 {
		t.Fatalf("expected floor(1/3)=0, got %d", down)
	}
}

func TestMulDivOverflowsResult(t *testing.T) {
	a := uint64(1) << 63
	_, err := MulDiv(a, a, 1)
	if err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMedianOddEven(t *testing.T) {
	if got := Median([]uint64{3, 1, 2}); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := Median([]uint64{10, 20, 30, 40}); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}

func TestWithinDeviationBps(t *testing.T) {
	if !WithinDeviationBps(10_000_000, 10_050_000, 100) {
		t.Fatalf("expected 0.5%% move within 1%% tolerance")
	}
	if WithinDeviationBps(10_000_000, 10_200_000, 100) {
		t.Fatalf("expected 2%% move to exceed 1%% tolerance")
	}
	if !WithinDeviationBps(0, 5_000_000, 100) {
		t.Fatalf("expected zero prior price to always be within bounds")
	}
}
