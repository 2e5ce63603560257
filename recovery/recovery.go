// Package recovery implements the system-wide TCR predicate and the
// per-operation validation gates that tighten while the system is in
// recovery mode. The manager is stateless: every method is a
// pure function of the totals and parameters passed in.
package recovery

import (
	"zkusd/paramstore"
	"zkusd/protoerrors"
	"zkusd/ratio"
)

// InRecoveryMode reports whether the system's total collateralization ratio
// has fallen below the critical threshold.
func InRecoveryMode(totalCollateralSats, priceCents, totalDebtCents uint64, params paramstore.Snapshot) (bool, error) {
	tcr, err := ratio.Ratio(totalCollateralSats, priceCents, totalDebtCents)
	if err != nil {
		return false, err
	}
	return tcr < params.Get(paramstore.CriticalCollateralRatio), nil
}

// GateOpen enforces: in recovery mode, a newly opened position's own ratio
// must already be at or above CCR.
func GateOpen(inRecovery bool, newPositionRatio uint64, params paramstore.Snapshot) error {
	if !inRecovery {
		return nil
	}
	ccr := params.Get(paramstore.CriticalCollateralRatio)
	if newPositionRatio < ccr {
		return protoerrors.RecoveryMode("open would create a position below the critical collateral ratio").WithDetail("new_position_ratio_below_ccr")
	}
	return nil
}

// GateMint enforces: in recovery mode, minting is allowed only if the
// resulting system TCR does not decrease and the position's own post-ratio
// is at or above CCR.
func GateMint(inRecovery bool, preTCR, postTCR, postPositionRatio uint64, params paramstore.Snapshot) error {
	if !inRecovery {
		return nil
	}
	if postTCR < preTCR {
		return protoerrors.RecoveryMode("mint would decrease system TCR").WithDetail("post_tcr_below_pre_tcr")
	}
	ccr := params.Get(paramstore.CriticalCollateralRatio)
	if postPositionRatio < ccr {
		return protoerrors.RecoveryMode("mint would leave the position below the critical collateral ratio").WithDetail("post_position_ratio_below_ccr")
	}
	return nil
}

// GateWithdraw enforces: in recovery mode, withdrawal is allowed only if
// system TCR does not decrease and the position's post-ratio is at or above
// CCR (or the position carries zero debt, in which case its own ratio is
// irrelevant since it cannot be undercollateralized).
func GateWithdraw(inRecovery bool, preTCR, postTCR, postPositionRatio, postDebtCents uint64, params paramstore.Snapshot) error {
	if !inRecovery {
		return nil
	}
	if postTCR < preTCR {
		return protoerrors.RecoveryMode("withdrawal would decrease system TCR").WithDetail("post_tcr_below_pre_tcr")
	}
	if postDebtCents == 0 {
		return nil
	}
	ccr := params.Get(paramstore.CriticalCollateralRatio)
	if postPositionRatio < ccr {
		return protoerrors.RecoveryMode("withdrawal would leave the position below the critical collateral ratio").WithDetail("post_position_ratio_below_ccr")
	}
	return nil
}

// LiquidationThreshold returns the minimum ratio below which a position is
// eligible for liquidation: MCR ordinarily, CCR (the stricter, higher bound)
// while in recovery mode.
func LiquidationThreshold(inRecovery bool, params paramstore.Snapshot) uint64 {
	if inRecovery {
		return params.Get(paramstore.CriticalCollateralRatio)
	}
	return params.Get(paramstore.MinCollateralRatio)
}

// Repay, Deposit, and Close have no recovery-mode gate: they are always
// allowed, since they only improve health. No function is needed for them;
// position.Repay/Deposit/Close never call into this package.
