// Package stabilitypool implements the protocol's P/S/epoch/scale
// share-accounting algorithm: depositors supply debt tokens that absorb
// undercollateralized positions' debt in exchange for seized collateral,
// with O(1) deposit/withdraw/absorb regardless of how many absorptions have
// occurred.
package stabilitypool

import (
	"math/big"

	"zkusd/fixedpoint"
	"zkusd/protoerrors"
	"zkusd/zkcrypto"
)

// scale is the fixed-point base the P and S product-sum factors are carried
// at (SCALE = 10^18).
var scale = big.NewInt(1_000_000_000_000_000_000)

// precisionFloor is the threshold below which P must be rescaled to retain
// precision, fixed at SCALE/10^9 per the Open Question decision recorded in
// DESIGN.md (the source expresses this both ways; this package picks one).
var precisionFloor = new(big.Int).Div(scale, big.NewInt(1_000_000_000))

// DepositRecord is a depositor's snapshot at the time of their last
// deposit/withdraw/claim.
type DepositRecord struct {
	InitialCents  uint64
	SnapshotP     *big.Int
	SnapshotS     *big.Int
	SnapshotEpoch uint64
	SnapshotScale uint64
}

// Pool holds the shared P/S/epoch/scale state plus every depositor's record.
type Pool struct {
	TotalDeposits   uint64
	TotalGainsSats  uint64
	AbsorptionCount uint64
	P               *big.Int
	S               *big.Int
	Epoch           uint64
	Scale           uint64

	deposits     map[[33]byte]*DepositRecord
	pendingGains map[[33]byte]uint64

	// epochFinalS records, for each epoch that a full-depletion absorption
	// just closed out, the S value that epoch's depositors are entitled to
	// compute their gain against. Without this, a depositor whose deposit is
	// exactly wiped out by the absorption that advances the epoch would lose
	// that absorption's own collateral gain the moment epoch != epoch0 zeroes
	// their snapshot out; epochFinalS is what lets Deposit/Withdraw/Claim
	// still move that gain into pending_gains afterward.
	epochFinalS map[uint64]*big.Int
}

// New returns an empty pool with P at its starting value of SCALE.
func New() *Pool {
	return &Pool{
		P:            new(big.Int).Set(scale),
		S:            big.NewInt(0),
		deposits:     make(map[[33]byte]*DepositRecord),
		pendingGains: make(map[[33]byte]uint64),
		epochFinalS:  make(map[uint64]*big.Int),
	}
}

// mulDivFloor computes floor(a*num/d) with num and the result carried as
// big.Int, used for the P/S ratio arithmetic which the spec defines at
// u128 width rather than the fixedpoint package's uint64-in/uint64-out shape.
func mulDivFloor(a uint64, num *big.Int, d uint64) *big.Int {
	result := new(big.Int).Mul(big.NewInt(0).SetUint64(a), num)
	return result.Div(result, big.NewInt(0).SetUint64(d))
}

// compoundedValue returns a deposit's current balance given the pool's
// present (P, epoch, scale).
func (p *Pool) compoundedValue(rec *DepositRecord) uint64 {
	if rec.SnapshotEpoch != p.Epoch {
		return 0
	}
	scaleDiff := p.Scale - rec.SnapshotScale
	if scaleDiff > 1 {
		return 0
	}
	denominator := new(big.Int).Set(rec.SnapshotP)
	if scaleDiff == 1 {
		denominator.Mul(denominator, scale)
	}
	if denominator.Sign() == 0 {
		return 0
	}
	numerator := new(big.Int).Mul(new(big.Int).SetUint64(rec.InitialCents), p.P)
	result := new(big.Int).Div(numerator, denominator)
	if !result.IsUint64() {
		// Cannot happen in practice: a compounded value never exceeds its
		// initial deposit. Clamp defensively rather than panic.
		return rec.InitialCents
	}
	return result.Uint64()
}

// currentGain returns a deposit's accumulated collateral gain given the
// pool's present S. A deposit one epoch stale can still collect the gain it
// earned up to the moment its epoch closed out, via epochFinalS; anything
// older than that is zero, matching the scale-advance precision-loss rule.
func (p *Pool) currentGain(rec *DepositRecord) uint64 {
	var reference *big.Int
	switch {
	case rec.SnapshotEpoch == p.Epoch:
		reference = p.S
	case rec.SnapshotEpoch+1 == p.Epoch:
		final, ok := p.epochFinalS[rec.SnapshotEpoch]
		if !ok {
			return 0
		}
		reference = final
	default:
		return 0
	}
	diff := new(big.Int).Sub(reference, rec.SnapshotS)
	if diff.Sign() <= 0 {
		return 0
	}
	numerator := new(big.Int).Mul(new(big.Int).SetUint64(rec.InitialCents), diff)
	result := new(big.Int).Div(numerator, scale)
	if !result.IsUint64() {
		return fixedpoint.MaxUint64
	}
	return result.Uint64()
}

// CurrentValue returns depositor's current compounded deposit value.
func (p *Pool) CurrentValue(depositor zkcrypto.PublicKey) uint64 {
	rec, ok := p.deposits[depositor.Compressed()]
	if !ok {
		return 0
	}
	return p.compoundedValue(rec)
}

// CurrentGain returns depositor's current un-pending collateral gain.
func (p *Pool) CurrentGain(depositor zkcrypto.PublicKey) uint64 {
	rec, ok := p.deposits[depositor.Compressed()]
	if !ok {
		return 0
	}
	return p.currentGain(rec)
}

// PendingGains returns depositor's gains carried over from a prior deposit
// top-up or partial withdrawal.
func (p *Pool) PendingGains(depositor zkcrypto.PublicKey) uint64 {
	return p.pendingGains[depositor.Compressed()]
}

// Absorb applies a liquidation's debt against the pool in exchange for the
// seized collateral. The caller (the liquidation engine) must already have
// established debtCents <= p.TotalDeposits; Absorb re-checks defensively.
func (p *Pool) Absorb(debtCents, collateralSats uint64) error {
	if p.TotalDeposits == 0 {
		return protoerrors.InsufficientStabilityPool()
	}
	if debtCents > p.TotalDeposits {
		return protoerrors.InsufficientStabilityPool()
	}

	// D is captured once: both the ratio/P update (step 2) and the S update
	// (step 4) divide by the pool's total deposits as they stood before this
	// absorption.
	d := p.TotalDeposits

	ratio := mulDivFloor(debtCents, scale, d)
	pNew := new(big.Int).Mul(p.P, new(big.Int).Sub(scale, ratio))
	pNew.Div(pNew, scale)

	gain := mulDivFloor(collateralSats, scale, d)
	sWithGain := new(big.Int).Add(p.S, gain)

	remaining := d - debtCents
	if remaining == 0 {
		// sWithGain is this absorption's final S value for the epoch being
		// closed out: the depositors it just wiped out still earned this
		// absorption's collateral gain, so it must be reachable via
		// epochFinalS even though their snapshot epoch is about to go stale.
		p.epochFinalS[p.Epoch] = sWithGain
		p.Epoch++
		p.Scale = 0
		pNew = new(big.Int).Set(scale)
		p.S = big.NewInt(0)
	} else {
		if pNew.Cmp(precisionFloor) < 0 {
			p.Scale++
			pNew = new(big.Int).Mul(pNew, scale)
		}
		p.S = sWithGain
	}

	p.P = pNew
	p.TotalDeposits = remaining

	newTotalGains, err := fixedpoint.SafeAdd(p.TotalGainsSats, collateralSats)
	if err != nil {
		return err
	}
	p.TotalGainsSats = newTotalGains
	p.AbsorptionCount++
	return nil
}

// Deposit credits amount to depositor's stake, carrying forward any existing
// compounded value and moving any existing gain into pending_gains before
// re-snapshotting at the pool's current state.
func (p *Pool) Deposit(depositor zkcrypto.PublicKey, amount, minDeposit uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	if amount < minDeposit {
		return protoerrors.InvalidParameter("stability pool deposit below minimum")
	}

	key := depositor.Compressed()
	carry := uint64(0)
	if rec, ok := p.deposits[key]; ok {
		carry = p.compoundedValue(rec)
		gain := p.currentGain(rec)
		if gain > 0 {
			newPending, err := fixedpoint.SafeAdd(p.pendingGains[key], gain)
			if err != nil {
				return err
			}
			p.pendingGains[key] = newPending
		}
	}

	newInitial, err := fixedpoint.SafeAdd(carry, amount)
	if err != nil {
		return err
	}
	p.deposits[key] = p.snapshot(newInitial)

	newTotal, err := fixedpoint.SafeAdd(p.TotalDeposits, amount)
	if err != nil {
		return err
	}
	p.TotalDeposits = newTotal
	return nil
}

// Withdraw pays out min(amount, current value) plus a proportional share of
// the depositor's accumulated gains.
func (p *Pool) Withdraw(depositor zkcrypto.PublicKey, amount uint64) (withdrawn, gainsPaid uint64, err error) {
	key := depositor.Compressed()
	rec, ok := p.deposits[key]
	if !ok {
		return 0, 0, protoerrors.NotFound("stability pool deposit")
	}

	current := p.compoundedValue(rec)
	gain := p.currentGain(rec)
	totalGains, err := fixedpoint.SafeAdd(gain, p.pendingGains[key])
	if err != nil {
		return 0, 0, err
	}

	withdrawn = amount
	if withdrawn > current {
		withdrawn = current
	}

	if current > 0 {
		gainsPaid, err = fixedpoint.MulDiv(totalGains, withdrawn, current)
		if err != nil {
			return 0, 0, err
		}
	}

	remaining := current - withdrawn
	if remaining == 0 {
		delete(p.deposits, key)
		delete(p.pendingGains, key)
	} else {
		p.deposits[key] = p.snapshot(remaining)
		p.pendingGains[key] = totalGains - gainsPaid
	}

	p.TotalDeposits -= withdrawn
	p.TotalGainsSats -= gainsPaid
	return withdrawn, gainsPaid, nil
}

// Claim pays out a depositor's current gain plus any pending gain without
// touching their compounded deposit value, re-snapshotting it at the pool's
// current state.
func (p *Pool) Claim(depositor zkcrypto.PublicKey) (uint64, error) {
	key := depositor.Compressed()
	rec, ok := p.deposits[key]
	if !ok {
		return 0, protoerrors.NotFound("stability pool deposit")
	}

	current := p.compoundedValue(rec)
	gain := p.currentGain(rec)
	total, err := fixedpoint.SafeAdd(gain, p.pendingGains[key])
	if err != nil {
		return 0, err
	}

	if current == 0 {
		delete(p.deposits, key)
	} else {
		p.deposits[key] = p.snapshot(current)
	}
	delete(p.pendingGains, key)
	p.TotalGainsSats -= total
	return total, nil
}

// Clone returns a deep copy of the pool, for the orchestrator's shadow-
// copy-then-commit execution model.
func (p *Pool) Clone() *Pool {
	out := &Pool{
		TotalDeposits:   p.TotalDeposits,
		TotalGainsSats:  p.TotalGainsSats,
		AbsorptionCount: p.AbsorptionCount,
		P:               new(big.Int).Set(p.P),
		S:               new(big.Int).Set(p.S),
		Epoch:           p.Epoch,
		Scale:           p.Scale,
		deposits:        make(map[[33]byte]*DepositRecord, len(p.deposits)),
		pendingGains:    make(map[[33]byte]uint64, len(p.pendingGains)),
		epochFinalS:     make(map[uint64]*big.Int, len(p.epochFinalS)),
	}
	for k, rec := range p.deposits {
		out.deposits[k] = &DepositRecord{
			InitialCents:  rec.InitialCents,
			SnapshotP:     new(big.Int).Set(rec.SnapshotP),
			SnapshotS:     new(big.Int).Set(rec.SnapshotS),
			SnapshotEpoch: rec.SnapshotEpoch,
			SnapshotScale: rec.SnapshotScale,
		}
	}
	for k, v := range p.pendingGains {
		out.pendingGains[k] = v
	}
	for k, v := range p.epochFinalS {
		out.epochFinalS[k] = new(big.Int).Set(v)
	}
	return out
}

func (p *Pool) snapshot(initial uint64) *DepositRecord {
	return &DepositRecord{
		InitialCents:  initial,
		SnapshotP:     new(big.Int).Set(p.P),
		SnapshotS:     new(big.Int).Set(p.S),
		SnapshotEpoch: p.Epoch,
		SnapshotScale: p.Scale,
	}
}
