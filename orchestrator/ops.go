package orchestrator

import (
	"zkusd/fixedpoint"
	"zkusd/liquidation"
	"zkusd/modulepause"
	"zkusd/oracle"
	"zkusd/paramstore"
	"zkusd/position"
	"zkusd/protocolevents"
	"zkusd/proof"
	"zkusd/ratio"
	"zkusd/redemption"
	"zkusd/snapshot"
	"zkusd/zkcrypto"
)

// Open creates a new position for owner, crediting its initial collateral to
// the vault and, if debtCents is non-zero, minting net-of-borrowing-fee debt
// token to owner in the same staged operation: the caller receives
// gross − borrowing_fee.
func (e *Engine) Open(owner zkcrypto.PublicKey, nonce, collSats, debtCents uint64, nowBlock uint64, ref *proof.Ref) (*position.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *position.Position
	err := e.instrument("position.open", func() error {
		if ref != nil {
			if err := e.verifier.Verify(*ref); err != nil {
				return err
			}
		}
		w := e.world.Clone()
		params := w.Params.Snapshot()

		p, err := w.Positions.Open(owner, nonce, collSats, debtCents, e.price.PriceCents, params, nowBlock, e.inRecovery)
		if err != nil {
			return err
		}
		if err := w.Vault.Deposit(p.ID, collSats); err != nil {
			return err
		}
		var fee uint64
		if debtCents != 0 {
			if err := modulepause.Guard(w.Pauses, modulepause.Minting); err != nil {
				return err
			}
			fee, err = fixedpoint.MulDiv(debtCents, params.Get(paramstore.BorrowingFee), fixedpoint.BPSDivisor)
			if err != nil {
				return err
			}
			net, err := fixedpoint.SafeSub(debtCents, fee)
			if err != nil {
				return err
			}
			if net > 0 {
				if err := w.Tokens.Mint(owner, net); err != nil {
					return err
				}
			}
		}
		r, err := positionRatio(w, p.ID, e.price.PriceCents)
		if err != nil {
			return err
		}
		w.Index.Insert(p.ID, r)

		w.Events.Append(protocolevents.Opened{
			PositionID:     idHex(p.ID),
			Owner:          addr(owner),
			CollateralSats: collSats,
			DebtCents:      debtCents,
			Nonce:          nonce,
		})

		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = p
		return nil
	})
	return result, err
}

// Deposit adds collateral to an existing position.
func (e *Engine) Deposit(id zkcrypto.Hash, amountSats, nowBlock uint64) (*position.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *position.Position
	err := e.instrument("position.deposit", func() error {
		w := e.world.Clone()
		p, err := w.Positions.Deposit(id, amountSats, nowBlock)
		if err != nil {
			return err
		}
		if err := w.Vault.Deposit(id, amountSats); err != nil {
			return err
		}
		r, err := positionRatio(w, id, e.price.PriceCents)
		if err != nil {
			return err
		}
		w.Index.Reinsert(id, r)
		w.Events.Append(protocolevents.Deposited{PositionID: idHex(id), AmountSats: amountSats, NewTotalSats: p.CollateralSats})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = p
		return nil
	})
	return result, err
}

// Withdraw removes collateral from a position.
func (e *Engine) Withdraw(id zkcrypto.Hash, amountSats, nowBlock uint64) (*position.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *position.Position
	err := e.instrument("position.withdraw", func() error {
		w := e.world.Clone()
		params := w.Params.Snapshot()
		p, err := w.Positions.Withdraw(id, amountSats, e.price.PriceCents, w.TotalCollateralSats(), w.TotalDebtCents(), params, nowBlock, e.inRecovery)
		if err != nil {
			return err
		}
		if err := w.Vault.Withdraw(id, amountSats); err != nil {
			return err
		}
		r, err := positionRatio(w, id, e.price.PriceCents)
		if err != nil {
			return err
		}
		w.Index.Reinsert(id, r)
		w.Events.Append(protocolevents.Withdrawn{PositionID: idHex(id), AmountSats: amountSats, NewTotalSats: p.CollateralSats})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = p
		return nil
	})
	return result, err
}

// Mint increases a position's debt, crediting the new debt tokens to owner.
func (e *Engine) Mint(id zkcrypto.Hash, owner zkcrypto.PublicKey, amountCents, nowBlock uint64) (*position.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *position.Position
	err := e.instrument("position.mint", func() error {
		w := e.world.Clone()
		if err := modulepause.Guard(w.Pauses, modulepause.Minting); err != nil {
			return err
		}
		params := w.Params.Snapshot()
		p, err := w.Positions.Mint(id, amountCents, e.price.PriceCents, w.TotalDebtCents(), w.TotalCollateralSats(), w.TotalDebtCents(), params, nowBlock, e.inRecovery)
		if err != nil {
			return err
		}
		// The position's debt increases by the full gross amount, but only
		// the net amount is minted into circulation; the borrowing fee is a
		// debt claim with no corresponding token, the protocol's revenue
		// mechanism.
		fee, err := fixedpoint.MulDiv(amountCents, params.Get(paramstore.BorrowingFee), fixedpoint.BPSDivisor)
		if err != nil {
			return err
		}
		net, err := fixedpoint.SafeSub(amountCents, fee)
		if err != nil {
			return err
		}
		if net > 0 {
			if err := w.Tokens.Mint(owner, net); err != nil {
				return err
			}
		}
		r, err := positionRatio(w, id, e.price.PriceCents)
		if err != nil {
			return err
		}
		w.Index.Reinsert(id, r)
		w.Events.Append(protocolevents.Minted{PositionID: idHex(id), GrossCents: amountCents, FeeCents: fee, NewDebtCents: p.DebtCents})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = p
		return nil
	})
	return result, err
}

// Repay burns owner's debt tokens to reduce a position's debt.
func (e *Engine) Repay(id zkcrypto.Hash, owner zkcrypto.PublicKey, amountCents, nowBlock uint64) (*position.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *position.Position
	err := e.instrument("position.repay", func() error {
		w := e.world.Clone()
		params := w.Params.Snapshot()
		p, err := w.Positions.Repay(id, amountCents, nowBlock, params)
		if err != nil {
			return err
		}
		if err := w.Tokens.Burn(owner, amountCents); err != nil {
			return err
		}
		r, err := positionRatio(w, id, e.price.PriceCents)
		if err != nil {
			return err
		}
		w.Index.Reinsert(id, r)
		w.Events.Append(protocolevents.Repaid{PositionID: idHex(id), AmountCents: amountCents, NewDebtCents: p.DebtCents})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = p
		return nil
	})
	return result, err
}

// Close retires a fully-repaid position, releasing its collateral to owner.
func (e *Engine) Close(id zkcrypto.Hash, owner zkcrypto.PublicKey, nowBlock uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var released uint64
	err := e.instrument("position.close", func() error {
		w := e.world.Clone()
		r, err := w.Positions.Close(id, nowBlock)
		if err != nil {
			return err
		}
		if r > 0 {
			if err := w.Vault.Withdraw(id, r); err != nil {
				return err
			}
		}
		w.Index.Remove(id)
		w.Events.Append(protocolevents.Closed{PositionID: idHex(id), ReleasedSats: r})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		released = r
		return nil
	})
	return released, err
}

// Transfer moves debt-token balance between two holders.
func (e *Engine) Transfer(sender, recipient zkcrypto.PublicKey, amountCents uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.instrument("token.transfer", func() error {
		w := e.world.Clone()
		if err := w.Tokens.Transfer(sender, recipient, amountCents); err != nil {
			return err
		}
		w.Events.Append(protocolevents.Transfer{From: addr(sender), To: addr(recipient), AmountCents: amountCents})
		e.commit(w)
		return nil
	})
}

// SubmitPrice aggregates a fresh set of source quotes and, on success,
// updates the accepted price and recomputes recovery-mode status.
func (e *Engine) SubmitPrice(quotes []oracle.SourceQuote, nowBlock uint64, params paramstore.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.instrument("oracle.submit_price", func() error {
		w := e.world.Clone()
		p := w.Params.Snapshot()
		next, err := oracle.Aggregate(quotes, nowBlock,
			p.Get(paramstore.MinPriceSources),
			p.Get(paramstore.PriceStalenessThreshold),
			p.Get(paramstore.MaxPriceDeviation),
			e.price)
		if err != nil {
			return err
		}
		e.price = next
		w.Events.Append(protocolevents.PriceUpdated{PriceCents: next.PriceCents, SourceCount: next.SourceCount, AsOfBlock: next.AsOfBlock})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		return nil
	})
}

// Liquidate liquidates a single position via the liquidation engine wired
// against the shadow copy.
func (e *Engine) Liquidate(id zkcrypto.Hash, nowBlock uint64) (liquidation.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result liquidation.Result
	err := e.instrument("liquidation.liquidate", func() error {
		w := e.world.Clone()
		if err := modulepause.Guard(w.Pauses, modulepause.Liquidation); err != nil {
			return err
		}
		params := w.Params.Snapshot()
		engine := liquidation.New(w.Positions, w.Vault, w.Tokens, w.Pool, w.Index, e.fallback)
		res, err := engine.Liquidate(id, e.price.PriceCents, params, nowBlock, e.inRecovery)
		if err != nil {
			return err
		}
		w.Events.Append(protocolevents.Liquidated{
			PositionID:       idHex(id),
			DebtCoveredCents: res.DebtCovered,
			CollateralSeized: res.CollateralSeized,
			BonusSats:        res.Bonus,
			Absorbed:         res.Absorbed,
		})
		if res.Absorbed {
			w.Events.Append(protocolevents.LiquidationAbsorbed{
				DebtCents:        res.DebtCovered,
				CollateralSats:   res.CollateralSeized,
				NewTotalDeposits: w.Pool.TotalDeposits,
				NewEpoch:         w.Pool.Epoch,
				NewScale:         w.Pool.Scale,
			})
		}
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = res
		return nil
	})
	return result, err
}

// LiquidateBatch liquidates the riskiest eligible positions, up to maxBatch,
// in a single staged operation: either every iteration's side effects are
// committed together, or (on an engine-level failure unrelated to per-entry
// eligibility) none are.
func (e *Engine) LiquidateBatch(nowBlock uint64, maxBatch int) ([]liquidation.BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var results []liquidation.BatchResult
	err := e.instrument("liquidation.batch", func() error {
		w := e.world.Clone()
		if err := modulepause.Guard(w.Pauses, modulepause.Liquidation); err != nil {
			return err
		}
		params := w.Params.Snapshot()
		engine := liquidation.New(w.Positions, w.Vault, w.Tokens, w.Pool, w.Index, e.fallback)
		results = engine.LiquidateBatch(e.price.PriceCents, params, nowBlock, e.inRecovery, maxBatch)
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			w.Events.Append(protocolevents.Liquidated{
				PositionID:       idHex(r.Result.ID),
				DebtCoveredCents: r.Result.DebtCovered,
				CollateralSeized: r.Result.CollateralSeized,
				BonusSats:        r.Result.Bonus,
				Absorbed:         r.Result.Absorbed,
			})
		}
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		return nil
	})
	return results, err
}

// Redeem swaps caller's debt tokens for collateral via the redemption
// engine, wired against the shadow copy and sharing the orchestrator's
// single persistent fee model (the dynamic fee must decay/increase across
// calls, not reset per shadow copy).
func (e *Engine) Redeem(caller zkcrypto.PublicKey, amountCents, maxFeeBps, nowBlock uint64, hint *zkcrypto.Hash) (redemption.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result redemption.Result
	err := e.instrument("redemption.redeem", func() error {
		w := e.world.Clone()
		if err := modulepause.Guard(w.Pauses, modulepause.Redemption); err != nil {
			return err
		}
		params := w.Params.Snapshot()
		engine := redemption.New(w.Positions, w.Vault, w.Tokens, w.Index, e.fee)
		res, err := engine.Redeem(caller, amountCents, maxFeeBps, e.price.PriceCents, params, nowBlock, hint)
		if err != nil {
			return err
		}
		w.Events.Append(protocolevents.Redemption{
			Caller:           addr(caller),
			PositionsTouched: uint64(len(res.Legs)),
			NetRedeemedCents: res.NetRedeemed,
			FeeCents:         res.FeeCents,
			SeizedSats:       res.TotalSeizedSat,
		})
		if err := e.refreshRecoveryMode(w); err != nil {
			return err
		}
		e.commit(w)
		result = res
		return nil
	})
	return result, err
}

// StabilityDeposit adds amountCents of depositor's debt tokens to the
// stability pool, burning them from circulation in exchange for pool share.
func (e *Engine) StabilityDeposit(depositor zkcrypto.PublicKey, amountCents uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.instrument("stabilitypool.deposit", func() error {
		w := e.world.Clone()
		if err := modulepause.Guard(w.Pauses, modulepause.StabilityPool); err != nil {
			return err
		}
		params := w.Params.Snapshot()
		if err := w.Tokens.Burn(depositor, amountCents); err != nil {
			return err
		}
		if err := w.Pool.Deposit(depositor, amountCents, params.Get(paramstore.MinStabilityDeposit)); err != nil {
			return err
		}
		w.Events.Append(protocolevents.StabilityDeposit{Depositor: addr(depositor), AmountCents: amountCents, NewTotalDeposits: w.Pool.TotalDeposits})
		e.commit(w)
		return nil
	})
}

// StabilityWithdraw withdraws amountCents of depositor's pool share
// (capped at their current compounded value) plus any collateral gains,
// re-minting the debt-token principal back to them.
func (e *Engine) StabilityWithdraw(depositor zkcrypto.PublicKey, amountCents uint64) (withdrawn, gainsPaid uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.instrument("stabilitypool.withdraw", func() error {
		w := e.world.Clone()
		w2, g2, werr := w.Pool.Withdraw(depositor, amountCents)
		if werr != nil {
			return werr
		}
		if w2 > 0 {
			if err := w.Tokens.Mint(depositor, w2); err != nil {
				return err
			}
		}
		w.Events.Append(protocolevents.StabilityWithdraw{Depositor: addr(depositor), WithdrawnCents: w2, GainsPaidSats: g2})
		e.commit(w)
		withdrawn, gainsPaid = w2, g2
		return nil
	})
	return withdrawn, gainsPaid, err
}

// StabilityClaim pays out a depositor's accumulated collateral gain without
// touching their deposited principal.
func (e *Engine) StabilityClaim(depositor zkcrypto.PublicKey) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var gains uint64
	err := e.instrument("stabilitypool.claim", func() error {
		w := e.world.Clone()
		g, cerr := w.Pool.Claim(depositor)
		if cerr != nil {
			return cerr
		}
		w.Events.Append(protocolevents.GainsClaimed{Depositor: addr(depositor), GainsSats: g})
		e.commit(w)
		gains = g
		return nil
	})
	return gains, err
}

// ScheduleParameterChange queues a timelocked parameter update.
func (e *Engine) ScheduleParameterChange(p paramstore.Parameter, newValue uint64, proposer [33]byte, nowBlock, delayBlocks, graceBlocks uint64) (*paramstore.Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var change *paramstore.Change
	err := e.instrument("paramstore.schedule", func() error {
		w := e.world.Clone()
		c, err := w.Params.Schedule(p, newValue, proposer, nowBlock, delayBlocks, graceBlocks)
		if err != nil {
			return err
		}
		e.commit(w)
		change = c
		return nil
	})
	return change, err
}

// CancelParameterChange cancels a pending change before its eta.
func (e *Engine) CancelParameterChange(id uint64, caller [33]byte, nowBlock uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.instrument("paramstore.cancel", func() error {
		w := e.world.Clone()
		if err := w.Params.Cancel(id, caller, nowBlock); err != nil {
			return err
		}
		e.commit(w)
		return nil
	})
}

// ApplyParameterChange commits a due parameter change to the live set.
func (e *Engine) ApplyParameterChange(id uint64, nowBlock uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.instrument("paramstore.apply", func() error {
		w := e.world.Clone()
		var applied *paramstore.Change
		for _, c := range w.Params.Pending() {
			if c.ID == id {
				applied = c
			}
		}
		var before uint64
		if applied != nil {
			before = w.Params.Snapshot().Get(applied.Parameter)
		}
		if err := w.Params.Apply(id, nowBlock); err != nil {
			return err
		}
		if applied != nil {
			w.Events.Append(protocolevents.ConfigChanged{Parameter: applied.Parameter.String(), OldValue: before, NewValue: applied.NewValue})
		}
		e.commit(w)
		return nil
	})
}

// ExpireStaleParameterChanges removes queue entries past their grace
// period, whether applied or not.
func (e *Engine) ExpireStaleParameterChanges(nowBlock uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.world.Clone()
	removed := w.Params.ExpireStale(nowBlock)
	e.commit(w)
	return removed
}

// positionRatio recomputes a position's collateralization ratio against the
// world's current vault/ledger state, the figure the sorted index is keyed
// on. A zero-debt position yields ratio.InfiniteRatio, placing it at the
// safe end of the index rather than the risky one.
func positionRatio(w *snapshot.World, id zkcrypto.Hash, priceCents uint64) (uint64, error) {
	p, err := w.Positions.Get(id)
	if err != nil {
		return 0, err
	}
	return ratio.Ratio(p.CollateralSats, priceCents, p.DebtCents)
}
