// Package redemption implements the redemption engine: swapping debt tokens
// at par for collateral taken from the riskiest positions first, minus a
// dynamic fee.
package redemption

import (
	"zkusd/fixedpoint"
	"zkusd/paramstore"
	"zkusd/position"
	"zkusd/protoerrors"
	"zkusd/ratio"
	"zkusd/sortedindex"
	"zkusd/token"
	"zkusd/vault"
	"zkusd/zkcrypto"
)

// Leg records one position's contribution to a redemption.
type Leg struct {
	ID         zkcrypto.Hash
	DebtTaken  uint64
	SatsSeized uint64
}

// Result is the outcome of a completed redemption.
type Result struct {
	Legs           []Leg
	FeeCents       uint64
	NetRedeemed    uint64
	TotalSeizedSat uint64
}

// FeeModel tracks the dynamic redemption fee's base rate, increasing with
// redemption volume relative to total supply and decaying back toward the
// floor over time.
type FeeModel struct {
	BaseBps    uint64
	lastUpdate uint64
	halfLife   uint64
}

// NewFeeModel returns a fee model starting at floorBps, decaying toward the
// floor with the given half-life (in the same time unit the caller passes
// to CurrentFeeBps/Decay, e.g. block height).
func NewFeeModel(floorBps, halfLifeBlocks uint64) *FeeModel {
	return &FeeModel{BaseBps: floorBps, halfLife: halfLifeBlocks}
}

// CurrentFeeBps returns the fee model's rate after decaying it to now,
// clamped within [floor, cap].
func (f *FeeModel) CurrentFeeBps(now, floorBps, capBps uint64) uint64 {
	f.decay(now, floorBps)
	if f.BaseBps < floorBps {
		return floorBps
	}
	if f.BaseBps > capBps {
		return capBps
	}
	return f.BaseBps
}

// decay halves the distance between BaseBps and floorBps for every
// half-life elapsed since lastUpdate.
func (f *FeeModel) decay(now, floorBps uint64) {
	if f.halfLife == 0 || now <= f.lastUpdate || f.BaseBps <= floorBps {
		f.lastUpdate = now
		return
	}
	elapsed := now - f.lastUpdate
	halvings := elapsed / f.halfLife
	above := f.BaseBps - floorBps
	for i := uint64(0); i < halvings && above > 0; i++ {
		above /= 2
	}
	f.BaseBps = floorBps + above
	f.lastUpdate = now
}

// OnRedeemed increases the base fee in proportion to redeemed/totalSupply,
// step 5.
func (f *FeeModel) OnRedeemed(redeemedCents, totalSupply, capBps uint64) error {
	if totalSupply == 0 {
		return nil
	}
	increase, err := fixedpoint.MulDiv(redeemedCents, fixedpoint.BPSDivisor, totalSupply)
	if err != nil {
		return err
	}
	newBase, err := fixedpoint.SafeAdd(f.BaseBps, increase)
	if err != nil {
		return err
	}
	if newBase > capBps {
		newBase = capBps
	}
	f.BaseBps = newBase
	return nil
}

// Engine performs redemptions against a shared set of subsystems.
type Engine struct {
	Positions *position.Manager
	Vault     *vault.Vault
	Tokens    *token.Ledger
	Index     *sortedindex.Index
	Fee       *FeeModel
}

// New returns a redemption engine wired to the given subsystems.
func New(positions *position.Manager, v *vault.Vault, tokens *token.Ledger, index *sortedindex.Index, fee *FeeModel) *Engine {
	return &Engine{Positions: positions, Vault: v, Tokens: tokens, Index: index, Fee: fee}
}

// Redeem swaps amountCents of caller's debt tokens for collateral taken from
// the riskiest positions first. maxFeeBps is the caller's slippage bound;
// redemption fails if the current dynamic fee exceeds it. hint, if non-nil,
// names a position id to start the ascending scan from instead of index 0.
func (e *Engine) Redeem(caller zkcrypto.PublicKey, amountCents, maxFeeBps uint64, priceCents uint64, params paramstore.Snapshot, now uint64, hint *zkcrypto.Hash) (Result, error) {
	if amountCents == 0 {
		return Result{}, protoerrors.ZeroAmount()
	}

	feeBps := e.Fee.CurrentFeeBps(now, params.Get(paramstore.RedemptionFeeFloor), params.Get(paramstore.RedemptionFeeCap))
	if maxFeeBps < feeBps {
		return Result{}, protoerrors.InvalidParameter("max_fee_bps below current dynamic fee")
	}

	fee, err := fixedpoint.MulDiv(amountCents, feeBps, fixedpoint.BPSDivisor)
	if err != nil {
		return Result{}, err
	}
	net, err := fixedpoint.SafeSub(amountCents, fee)
	if err != nil {
		return Result{}, err
	}

	startIdx := 0
	if hint != nil {
		if i := e.Index.IndexOf(*hint); i >= 0 {
			startIdx = i
		}
	}

	entries := e.Index.All()
	remaining := net
	var legs []Leg
	var totalSeized uint64

	for i := startIdx; i < len(entries) && remaining > 0; i++ {
		id := entries[i].ID
		p, err := e.Positions.Get(id)
		if err != nil || p.DebtCents == 0 {
			continue
		}

		take := remaining
		if take > p.DebtCents {
			take = p.DebtCents
		}
		seized, err := fixedpoint.MulDiv(take, fixedpoint.SATSPerBTC, priceCents)
		if err != nil {
			return Result{}, err
		}
		if seized > p.CollateralSats {
			seized = p.CollateralSats
		}

		if err := e.Positions.ApplyRedemption(id, take, seized, now); err != nil {
			return Result{}, err
		}
		if err := e.Vault.Withdraw(id, seized); err != nil {
			return Result{}, err
		}
		e.reindex(id, priceCents)

		legs = append(legs, Leg{ID: id, DebtTaken: take, SatsSeized: seized})
		totalSeized += seized
		remaining -= take
	}

	spent := net - remaining
	totalBurn, err := fixedpoint.SafeAdd(spent, fee)
	if err != nil {
		return Result{}, err
	}
	if err := e.Tokens.Burn(caller, totalBurn); err != nil {
		return Result{}, err
	}

	if err := e.Fee.OnRedeemed(spent, e.Tokens.Supply(), params.Get(paramstore.RedemptionFeeCap)); err != nil {
		return Result{}, err
	}

	return Result{
		Legs:           legs,
		FeeCents:       fee,
		NetRedeemed:    spent,
		TotalSeizedSat: totalSeized,
	}, nil
}

// reindex re-derives id's ratio after a redemption leg mutates it and
// re-inserts it into the sorted index at its new position.
func (e *Engine) reindex(id zkcrypto.Hash, priceCents uint64) {
	p, err := e.Positions.Get(id)
	if err != nil {
		e.Index.Remove(id)
		return
	}
	r, err := ratio.Ratio(p.CollateralSats, priceCents, p.DebtCents)
	if err != nil {
		e.Index.Remove(id)
		return
	}
	e.Index.Reinsert(id, r)
}
