// Package token implements the protocol's debt-token ledger: a simple
// balance map plus a supply scalar, mutated only through Mint/Burn/Transfer
// so the supply invariant (sum of balances == supply) can never drift.
package token

import (
	"zkusd/fixedpoint"
	"zkusd/protoerrors"
	"zkusd/zkcrypto"
)

// Ledger tracks debt-token balances for every holder plus the running total
// supply, mirroring native/lending's account-balance bookkeeping but as a
// standalone fungible ledger rather than per-market account state.
type Ledger struct {
	balances map[[33]byte]uint64
	supply   uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[[33]byte]uint64)}
}

// BalanceOf returns holder's balance, zero if never credited.
func (l *Ledger) BalanceOf(holder zkcrypto.PublicKey) uint64 {
	return l.balances[holder.Compressed()]
}

// Supply returns the current total supply.
func (l *Ledger) Supply() uint64 {
	return l.supply
}

// Mint credits amount to holder and increases supply, used when a position
// borrows new debt-tokens.
func (l *Ledger) Mint(holder zkcrypto.PublicKey, amount uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	key := holder.Compressed()
	newBal, err := fixedpoint.SafeAdd(l.balances[key], amount)
	if err != nil {
		return err
	}
	newSupply, err := fixedpoint.SafeAdd(l.supply, amount)
	if err != nil {
		return err
	}
	l.balances[key] = newBal
	l.supply = newSupply
	return nil
}

// Burn debits amount from holder and decreases supply, used on repayment,
// closing, or stability-pool absorption.
func (l *Ledger) Burn(holder zkcrypto.PublicKey, amount uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	key := holder.Compressed()
	bal := l.balances[key]
	if amount > bal {
		return protoerrors.InsufficientCollateral(amount, bal)
	}
	newBal := bal - amount
	l.supply -= amount
	if newBal == 0 {
		delete(l.balances, key)
	} else {
		l.balances[key] = newBal
	}
	return nil
}

// Transfer moves amount from sender to recipient without touching supply.
func (l *Ledger) Transfer(sender, recipient zkcrypto.PublicKey, amount uint64) error {
	if amount == 0 {
		return protoerrors.ZeroAmount()
	}
	senderKey := sender.Compressed()
	bal := l.balances[senderKey]
	if amount > bal {
		return protoerrors.InsufficientCollateral(amount, bal)
	}
	recipientKey := recipient.Compressed()
	newRecipientBal, err := fixedpoint.SafeAdd(l.balances[recipientKey], amount)
	if err != nil {
		return err
	}

	newSenderBal := bal - amount
	if newSenderBal == 0 {
		delete(l.balances, senderKey)
	} else {
		l.balances[senderKey] = newSenderBal
	}
	l.balances[recipientKey] = newRecipientBal
	return nil
}

// Clone returns a deep copy of the ledger, for the orchestrator's shadow-
// copy-then-commit execution model.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{balances: make(map[[33]byte]uint64, len(l.balances)), supply: l.supply}
	for k, v := range l.balances {
		out.balances[k] = v
	}
	return out
}

// VerifySupplyInvariant recomputes the sum of all balances and checks it
// against the tracked supply scalar, for use in property-style tests and
// orchestrator post-commit assertions: sum(balances) should equal supply
// at all times.
func (l *Ledger) VerifySupplyInvariant() error {
	var sum uint64
	for _, bal := range l.balances {
		newSum, err := fixedpoint.SafeAdd(sum, bal)
		if err != nil {
			return err
		}
		sum = newSum
	}
	if sum != l.supply {
		return protoerrors.InvariantViolation("debt-token supply mismatch")
	}
	return nil
}
