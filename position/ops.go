package position

import (
	"zkusd/fixedpoint"
	"zkusd/paramstore"
	"zkusd/protoerrors"
	"zkusd/ratio"
	"zkusd/recovery"
	"zkusd/zkcrypto"
)

// precondition ordering for every mutation below is consistent:
// non-terminal -> amount non-zero -> resulting-ratio check -> systemic checks.
// This mirrors native/lending/engine.go's Borrow/Repay/Withdraw method shape,
// where each guard short-circuits before any state is touched.

// Open creates a new position for owner, mirroring native/lending/engine.go's
// ensureUserAccount-then-mutate pattern. The position id is derived from
// owner and nonce so repeated Open calls by the same owner never collide.
func (m *Manager) Open(owner zkcrypto.PublicKey, nonce, collSats, debtCents, priceCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool) (*Position, error) {
	if collSats == 0 {
		return nil, protoerrors.ZeroAmount()
	}
	if collSats < DustSats {
		return nil, protoerrors.InsufficientCollateral(DustSats, collSats)
	}

	id := zkcrypto.PositionID(owner, nonce)
	if _, ok := m.byID[id]; ok {
		return nil, protoerrors.AlreadyExists("position")
	}

	minDebt := params.Get(paramstore.MinDebt)
	if debtCents != 0 && debtCents < minDebt {
		return nil, protoerrors.DebtBelowMin(debtCents, minDebt)
	}

	if debtCents != 0 {
		minRatio := params.Get(paramstore.MinCollateralRatio)
		if inRecovery {
			minRatio = params.Get(paramstore.CriticalCollateralRatio)
		}
		r, err := ratio.Ratio(collSats, priceCents, debtCents)
		if err != nil {
			return nil, err
		}
		if r < minRatio {
			return nil, protoerrors.RatioTooLow(r, minRatio)
		}
	}

	p := &Position{
		ID:             id,
		Owner:          owner,
		CollateralSats: collSats,
		DebtCents:      debtCents,
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         Active,
		Nonce:          nonce,
	}
	m.insert(p)
	return p, nil
}

// Deposit adds amountSats of collateral to an existing, non-terminal position.
func (m *Manager) Deposit(id zkcrypto.Hash, amountSats, now uint64) (*Position, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, protoerrors.NotActive()
	}
	if amountSats == 0 {
		return nil, protoerrors.ZeroAmount()
	}
	newColl, err := fixedpoint.SafeAdd(p.CollateralSats, amountSats)
	if err != nil {
		return nil, err
	}
	next := p.Clone()
	next.CollateralSats = newColl
	next.UpdatedAt = now
	m.put(next)
	return next, nil
}

// Withdraw removes collateral from a position, rejecting any withdrawal that
// would drop the resulting ratio below the minimum threshold. In recovery
// mode it additionally requires that system-wide TCR not decrease
// (totalCollateralSats/totalDebtCents are the pre-operation
// system totals, supplied by the caller since the manager itself tracks no
// aggregate state).
func (m *Manager) Withdraw(id zkcrypto.Hash, amountSats, priceCents, totalCollateralSats, totalDebtCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool) (*Position, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, protoerrors.NotActive()
	}
	if amountSats == 0 {
		return nil, protoerrors.ZeroAmount()
	}
	if amountSats > p.CollateralSats {
		return nil, protoerrors.InsufficientCollateral(amountSats, p.CollateralSats)
	}

	remaining := p.CollateralSats - amountSats
	if p.DebtCents != 0 {
		minRatio := params.Get(paramstore.MinCollateralRatio)
		r, err := ratio.Ratio(remaining, priceCents, p.DebtCents)
		if err != nil {
			return nil, err
		}
		if r < minRatio {
			return nil, protoerrors.WithdrawalWouldUndercollateralize()
		}
	}

	if inRecovery {
		preTCR, err := ratio.Ratio(totalCollateralSats, priceCents, totalDebtCents)
		if err != nil {
			return nil, err
		}
		postTCR, err := ratio.Ratio(totalCollateralSats-amountSats, priceCents, totalDebtCents)
		if err != nil {
			return nil, err
		}
		postRatio, err := ratio.Ratio(remaining, priceCents, p.DebtCents)
		if err != nil {
			return nil, err
		}
		if err := recovery.GateWithdraw(inRecovery, preTCR, postTCR, postRatio, p.DebtCents, params); err != nil {
			return nil, err
		}
	}

	next := p.Clone()
	next.CollateralSats = remaining
	next.UpdatedAt = now
	m.put(next)
	return next, nil
}

// Mint increases a position's debt, subject to the resulting ratio, the
// protocol debt ceiling, and (in recovery mode) the requirement that system
// TCR not decrease and the position's post-ratio reach CCR.
// totalCollateralSats/totalDebtCents are the pre-operation system totals.
func (m *Manager) Mint(id zkcrypto.Hash, amountCents, priceCents, outstandingDebt, totalCollateralSats, totalDebtCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool) (*Position, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, protoerrors.NotActive()
	}
	if amountCents == 0 {
		return nil, protoerrors.ZeroAmount()
	}

	newDebt, err := fixedpoint.SafeAdd(p.DebtCents, amountCents)
	if err != nil {
		return nil, err
	}
	minDebt := params.Get(paramstore.MinDebt)
	if newDebt < minDebt {
		return nil, protoerrors.DebtBelowMin(newDebt, minDebt)
	}

	minRatio := params.Get(paramstore.MinCollateralRatio)
	r, err := ratio.Ratio(p.CollateralSats, priceCents, newDebt)
	if err != nil {
		return nil, err
	}
	if r < minRatio {
		return nil, protoerrors.RatioTooLow(r, minRatio)
	}

	ceiling := params.Get(paramstore.DebtCeiling)
	newOutstanding, err := fixedpoint.SafeAdd(outstandingDebt, amountCents)
	if err != nil {
		return nil, err
	}
	if newOutstanding > ceiling {
		return nil, protoerrors.DebtCeilingReached()
	}

	if inRecovery {
		preTCR, err := ratio.Ratio(totalCollateralSats, priceCents, totalDebtCents)
		if err != nil {
			return nil, err
		}
		postTCR, err := ratio.Ratio(totalCollateralSats, priceCents, totalDebtCents+amountCents)
		if err != nil {
			return nil, err
		}
		if err := recovery.GateMint(inRecovery, preTCR, postTCR, r, params); err != nil {
			return nil, err
		}
	}

	next := p.Clone()
	next.DebtCents = newDebt
	next.UpdatedAt = now
	m.put(next)
	return next, nil
}

// Repay reduces a position's debt. Repaying down to (but not below) the
// minimum debt floor is always permitted; repaying to exactly zero is
// permitted too, since zero debt is a valid, fully backed state short of
// Close.
func (m *Manager) Repay(id zkcrypto.Hash, amountCents, now uint64, params paramstore.Snapshot) (*Position, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, protoerrors.NotActive()
	}
	if amountCents == 0 {
		return nil, protoerrors.ZeroAmount()
	}
	if amountCents > p.DebtCents {
		return nil, protoerrors.InsufficientCollateral(amountCents, p.DebtCents)
	}

	newDebt := p.DebtCents - amountCents
	if newDebt != 0 {
		minDebt := params.Get(paramstore.MinDebt)
		if newDebt < minDebt {
			return nil, protoerrors.DebtBelowMin(newDebt, minDebt)
		}
	}

	next := p.Clone()
	next.DebtCents = newDebt
	next.UpdatedAt = now
	m.put(next)
	return next, nil
}

// Close retires a fully-repaid position and releases its collateral to the
// caller. A position carrying outstanding debt cannot be closed.
func (m *Manager) Close(id zkcrypto.Hash, now uint64) (released uint64, err error) {
	p, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	if p.IsTerminal() {
		return 0, protoerrors.NotActive()
	}
	if p.DebtCents != 0 {
		return 0, protoerrors.DebtAboveMax(p.DebtCents, 0)
	}

	next := p.Clone()
	released = next.CollateralSats
	next.CollateralSats = 0
	next.Status = Closed
	next.UpdatedAt = now
	m.put(next)
	return released, nil
}

// PreviewLiquidation checks eligibility (ratio below the minimum, or below
// the critical threshold while in recovery mode) and computes the
// liquidation amounts without mutating anything, so a caller (the
// liquidation engine) can decide pool-absorption vs. fallback before
// committing.
func (m *Manager) PreviewLiquidation(id zkcrypto.Hash, priceCents uint64, params paramstore.Snapshot, inRecovery bool) (debtCovered, collateralSeized, bonus uint64, err error) {
	p, err := m.Get(id)
	if err != nil {
		return 0, 0, 0, err
	}
	if p.IsTerminal() {
		return 0, 0, 0, protoerrors.NotActive()
	}
	if p.DebtCents == 0 {
		return 0, 0, 0, protoerrors.NotLiquidatable()
	}

	threshold := params.Get(paramstore.MinCollateralRatio)
	if inRecovery {
		threshold = params.Get(paramstore.CriticalCollateralRatio)
	}
	r, err := ratio.Ratio(p.CollateralSats, priceCents, p.DebtCents)
	if err != nil {
		return 0, 0, 0, err
	}
	if r >= threshold {
		return 0, 0, 0, protoerrors.NotLiquidatable()
	}

	bonusBps := params.Get(paramstore.LiquidationBonus)
	return ratio.LiquidationAmounts(p.CollateralSats, p.DebtCents, priceCents, bonusBps)
}

// ApplyLiquidation commits a previously previewed liquidation: it zeros the
// position's debt and reduces its collateral by collateralSeized. The
// position only becomes terminal once its collateral reaches zero — at the
// default liquidation bonus and minimum collateral ratio, a position
// liquidated close to the threshold keeps a residual the borrower can still
// reclaim, so it stays open with zero debt rather than confiscating the
// surplus.
func (m *Manager) ApplyLiquidation(id zkcrypto.Hash, collateralSeized, now uint64) error {
	p, err := m.Get(id)
	if err != nil {
		return err
	}
	if p.IsTerminal() {
		return protoerrors.NotActive()
	}
	next := p.Clone()
	next.CollateralSats -= collateralSeized
	next.DebtCents = 0
	if next.CollateralSats == 0 {
		next.Status = Liquidated
	}
	next.UpdatedAt = now
	m.put(next)
	return nil
}

// ApplyRedemption decrements a position's debt and collateral by the amounts
// a redemption leg took, without re-checking the resulting ratio: the
// redemption algorithm guarantees no position is left insolvent by the
// redemption itself by construction, and a position visited with debt
// reaching zero is deliberately left open (not auto-closed) still holding
// whatever collateral remains.
func (m *Manager) ApplyRedemption(id zkcrypto.Hash, debtTaken, collateralSeized, now uint64) error {
	p, err := m.Get(id)
	if err != nil {
		return err
	}
	if p.IsTerminal() {
		return protoerrors.NotActive()
	}
	if debtTaken > p.DebtCents || collateralSeized > p.CollateralSats {
		return protoerrors.InvariantViolation("redemption leg exceeds position balance")
	}

	next := p.Clone()
	next.DebtCents -= debtTaken
	next.CollateralSats -= collateralSeized
	next.UpdatedAt = now
	m.put(next)
	return nil
}

// Liquidate previews and immediately applies a liquidation in one call, for
// callers that don't need the engine's pool-absorption decision in between
// (e.g. direct unit tests of the position package in isolation).
func (m *Manager) Liquidate(id zkcrypto.Hash, priceCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool) (debtCovered, collateralSeized, bonus uint64, err error) {
	debtCovered, collateralSeized, bonus, err = m.PreviewLiquidation(id, priceCents, params, inRecovery)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := m.ApplyLiquidation(id, collateralSeized, now); err != nil {
		return 0, 0, 0, err
	}
	return debtCovered, collateralSeized, bonus, nil
}
