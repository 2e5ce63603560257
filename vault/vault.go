// Package vault implements the protocol's collateral custody ledger: a
// total-sats scalar plus a per-position balance map, mutated only through
// Deposit/Withdraw/Seize so the sum invariant can never drift.
package vault

import (
	"zkusd/fixedpoint"
	"zkusd/protoerrors"
	"zkusd/zkcrypto"
)

// Vault tracks collateral held on behalf of each position id plus the
// running total, mirroring native/lending's Market-level liquidity
// accounting but keyed by position id instead of pooled per-asset.
type Vault struct {
	balances map[zkcrypto.Hash]uint64
	total    uint64
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{balances: make(map[zkcrypto.Hash]uint64)}
}

// BalanceOf returns the collateral held for a position id.
func (v *Vault) BalanceOf(id zkcrypto.Hash) uint64 {
	return v.balances[id]
}

// Total returns the vault's total held collateral.
func (v *Vault) Total() uint64 {
	return v.total
}

// Deposit credits amount to id's balance, used when a position is opened or
// topped up.
func (v *Vault) Deposit(id zkcrypto.Hash, amount uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	newBal, err := fixedpoint.SafeAdd(v.balances[id], amount)
	if err != nil {
		return err
	}
	newTotal, err := fixedpoint.SafeAdd(v.total, amount)
	if err != nil {
		return err
	}
	v.balances[id] = newBal
	v.total = newTotal
	return nil
}

// Withdraw debits amount from id's balance, used on withdrawal or close.
func (v *Vault) Withdraw(id zkcrypto.Hash, amount uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	bal := v.balances[id]
	if amount > bal {
		return protoerrors.InsufficientCollateral(amount, bal)
	}
	newBal := bal - amount
	v.total -= amount
	if newBal == 0 {
		delete(v.balances, id)
	} else {
		v.balances[id] = newBal
	}
	return nil
}

// Seize debits amount from id's balance on liquidation, moving custody to
// the liquidator or stability pool without the caller needing to distinguish
// seizure from a voluntary withdrawal at the ledger layer.
func (v *Vault) Seize(id zkcrypto.Hash, amount uint64) error {
	return v.Withdraw(id, amount)
}

// Clone returns a deep copy of the vault, for the orchestrator's shadow-
// copy-then-commit execution model.
func (v *Vault) Clone() *Vault {
	out := &Vault{balances: make(map[zkcrypto.Hash]uint64, len(v.balances)), total: v.total}
	for k, val := range v.balances {
		out.balances[k] = val
	}
	return out
}

// VerifyInvariant recomputes the sum of all per-position balances and checks
// it against the tracked total, for use in property-style tests and
// orchestrator post-commit assertions: sum(position collateral) should
// equal the vault total at all times.
func (v *Vault) VerifyInvariant() error {
	var sum uint64
	for _, bal := range v.balances {
		newSum, err := fixedpoint.SafeAdd(sum, bal)
		if err != nil {
			return err
		}
		sum = newSum
	}
	if sum != v.total {
		return protoerrors.InvariantViolation("vault total mismatch")
	}
	return nil
}
