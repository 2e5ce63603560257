// Package ratio implements the protocol's collateralization and liquidation
// arithmetic, built on fixedpoint's checked, 256-bit-widened division.
package ratio

import (
	"zkusd/fixedpoint"
)

// InfiniteRatio is returned when a position carries zero debt: the ratio is
// defined as unbounded, encoded as math.MaxUint64.
const InfiniteRatio = fixedpoint.MaxUint64

// Ratio computes the collateralization ratio in integer percent:
// floor(collSats * priceCents * 100 / (SATS_PER_BTC * debtCents)).
// A zero debt yields InfiniteRatio.
func Ratio(collSats, priceCents, debtCents uint64) (uint64, error) {
	if debtCents == 0 {
		return InfiniteRatio, nil
	}
	numerator, err := fixedpoint.SafeMul(collSats, priceCents)
	if err != nil {
		// Widen through MulDiv directly rather than failing fast: collSats and
		// priceCents individually fit uint64 even when their naive product does not.
		return ratioWide(collSats, priceCents, debtCents)
	}
	numerator, err = fixedpoint.SafeMul(numerator, 100)
	if err != nil {
		return ratioWide(collSats, priceCents, debtCents)
	}
	denominator, err := fixedpoint.SafeMul(fixedpoint.SATSPerBTC, debtCents)
	if err != nil {
		return 0, err
	}
	return numerator / denominator, nil
}

// ratioWide falls back to a fully widened mul_div when the naive product of
// collSats*priceCents*100 would overflow uint64 before division.
func ratioWide(collSats, priceCents, debtCents uint64) (uint64, error) {
	scaled, err := fixedpoint.MulDiv(collSats, priceCents, debtCents)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDiv(scaled, 100, fixedpoint.SATSPerBTC)
}

// MaxDebt computes the maximum debt (in cents) a given collateral amount
// supports at minRatioPct percent: floor(coll * price * 100 / (SATS_PER_BTC * minRatioPct)).
func MaxDebt(collSats, priceCents, minRatioPct uint64) (uint64, error) {
	if minRatioPct == 0 {
		return 0, fixedpoint.ErrDivideByZero
	}
	scaled, err := fixedpoint.MulDiv(collSats, priceCents, fixedpoint.SATSPerBTC)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDiv(scaled, 100, minRatioPct)
}

// MinCollateral computes the minimum collateral (in sats) required to back
// debtCents at minRatioPct percent, rounded up so the system never under-
// collateralizes due to rounding: ceil(debt * minRatio * SATS_PER_BTC / (100*price)).
func MinCollateral(debtCents, priceCents, minRatioPct uint64) (uint64, error) {
	if priceCents == 0 {
		return 0, fixedpoint.ErrDivideByZero
	}
	scaled, err := fixedpoint.MulDivUp(debtCents, minRatioPct, 100)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDivUp(scaled, fixedpoint.SATSPerBTC, priceCents)
}

// LiquidationAmounts computes the debt-covered, collateral-to-seize, and
// bonus amounts for liquidating a position with collSats collateral and
// debtCents debt at priceCents, with a bonus expressed in basis points.
//
// target value (cents) = debt * (BPS_DIVISOR+bonusBps) / BPS_DIVISOR
// collateral_to_seize   = min(coll, ceil(target * SATS_PER_BTC / price))
// bonus                 = max(0, value(seized) - debt)
func LiquidationAmounts(collSats, debtCents, priceCents, bonusBps uint64) (debtCovered, collateralSeized, bonus uint64, err error) {
	if priceCents == 0 {
		return 0, 0, 0, fixedpoint.ErrDivideByZero
	}
	bpsPlusBonus, err := fixedpoint.SafeAdd(fixedpoint.BPSDivisor, bonusBps)
	if err != nil {
		return 0, 0, 0, err
	}
	targetValue, err := fixedpoint.MulDiv(debtCents, bpsPlusBonus, fixedpoint.BPSDivisor)
	if err != nil {
		return 0, 0, 0, err
	}
	seizeWanted, err := fixedpoint.MulDivUp(targetValue, fixedpoint.SATSPerBTC, priceCents)
	if err != nil {
		return 0, 0, 0, err
	}

	seized := seizeWanted
	if seized > collSats {
		seized = collSats
	}

	seizedValue, err := fixedpoint.MulDiv(seized, priceCents, fixedpoint.SATSPerBTC)
	if err != nil {
		return 0, 0, 0, err
	}

	var seizedBonus uint64
	if seizedValue > debtCents {
		seizedBonus = seizedValue - debtCents
	}

	return debtCents, seized, seizedBonus, nil
}
