package paramstore

import "testing"

func TestValidateBounds(t *testing.T) {
	if err := Validate(MinCollateralRatio, 99); err == nil {
		t.Fatalf("expected out-of-bounds value to fail")
	}
	if err := Validate(MinCollateralRatio, 110); err != nil {
		t.Fatalf("expected in-bounds value to pass: %v", err)
	}
}

func TestScheduleCancelApplyLifecycle(t *testing.T) {
	store := NewStore()
	var guardian [33]byte
	guardian[0] = 0xAB
	store.SetGuardian(guardian)

	change, err := store.Schedule(BorrowingFee, 100, [33]byte{0x01}, 0, 10, 5)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := store.Apply(change.ID, 5); err == nil {
		t.Fatalf("expected apply before eta to fail")
	}

	if err := store.Cancel(change.ID, [33]byte{0x02}, 5); err == nil {
		t.Fatalf("expected non-guardian cancel to fail")
	}

	if err := store.Cancel(change.ID, guardian, 5); err != nil {
		t.Fatalf("cancel by guardian: %v", err)
	}

	if err := store.Apply(change.ID, 10); err == nil {
		t.Fatalf("expected apply after cancellation to fail")
	}
}

func TestApplyWithinGraceWindow(t *testing.T) {
	store := NewStore()
	change, err := store.Schedule(BorrowingFee, 200, [33]byte{0x01}, 0, 10, 5)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := store.Apply(change.ID, 12); err != nil {
		t.Fatalf("apply within grace: %v", err)
	}
	if store.Snapshot().Get(BorrowingFee) != 200 {
		t.Fatalf("expected borrowing fee updated to 200")
	}
	if err := store.Apply(change.ID, 12); err == nil {
		t.Fatalf("expected re-apply to fail")
	}
}

func TestApplyAfterGraceExpires(t *testing.T) {
	store := NewStore()
	change, err := store.Schedule(BorrowingFee, 300, [33]byte{0x01}, 0, 10, 5)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := store.Apply(change.ID, 16); err == nil {
		t.Fatalf("expected apply after grace expiry to fail")
	}
}

func TestExpireStaleCleansUpQueue(t *testing.T) {
	store := NewStore()
	change, err := store.Schedule(BorrowingFee, 300, [33]byte{0x01}, 0, 10, 5)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if removed := store.ExpireStale(16); removed != 1 {
		t.Fatalf("expected 1 expired entry, got %d", removed)
	}
	if len(store.Pending()) != 0 {
		t.Fatalf("expected pending queue to be empty, change %d still present", change.ID)
	}
}
