package config

import (
	"testing"

	"zkusd/paramstore"
)

func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default bootstrap failed validation: %v", err)
	}
}

func TestDefaultStoreSeedMatchesParamstoreDefaults(t *testing.T) {
	b := Default()
	store, err := b.StoreSeed()
	if err != nil {
		t.Fatalf("store seed: %v", err)
	}
	got := store.Snapshot()
	want := paramstore.Defaults()
	for p, v := range want {
		if got.Get(p) != v {
			t.Fatalf("parameter %v: got %d, want default %d", p, got.Get(p), v)
		}
	}
}

func TestValidateRejectsQuorumBelowPassThreshold(t *testing.T) {
	b := Default()
	b.Governance.QuorumBPS = 100
	b.Governance.PassThresholdBPS = 200
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error when quorum is below pass threshold")
	}
}

func TestValidateRejectsVotingPeriodBelowFloor(t *testing.T) {
	b := Default()
	b.Governance.VotingPeriodSecs = MinVotingPeriodSeconds - 1
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error for too-short voting period")
	}
}

func TestValidateRejectsInvertedSlashingBounds(t *testing.T) {
	b := Default()
	b.Slashing.MinFeeBps = 500
	b.Slashing.MaxFeeBps = 100
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error for min_fee_bps > max_fee_bps")
	}
}

func TestStoreSeedRejectsOutOfBoundsParameter(t *testing.T) {
	b := Default()
	b.Params = map[paramstore.Parameter]uint64{
		paramstore.MinCollateralRatio: 0, // below the catalogue floor of 100
	}
	if _, err := b.StoreSeed(); err == nil {
		t.Fatal("expected store seed to reject an out-of-bounds parameter value")
	}
}

func TestStoreSeedFillsUnsetParametersFromDefaults(t *testing.T) {
	b := Default()
	b.Params = map[paramstore.Parameter]uint64{
		paramstore.MinCollateralRatio: 120,
	}
	store, err := b.StoreSeed()
	if err != nil {
		t.Fatalf("store seed: %v", err)
	}
	snap := store.Snapshot()
	if snap.Get(paramstore.MinCollateralRatio) != 120 {
		t.Fatalf("expected overridden value 120, got %d", snap.Get(paramstore.MinCollateralRatio))
	}
	if snap.Get(paramstore.CriticalCollateralRatio) != paramstore.Defaults()[paramstore.CriticalCollateralRatio] {
		t.Fatalf("expected unset parameter to fall back to its default")
	}
}
