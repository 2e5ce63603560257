// Package position implements the protocol's core collateralized debt
// position record and its lifecycle mutations.
package position

import (
	"zkusd/zkcrypto"
)

// Status is a position's lifecycle state.
type Status int

const (
	Active Status = iota
	AtRisk
	Liquidatable
	Closed
	Liquidated
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case AtRisk:
		return "at_risk"
	case Liquidatable:
		return "liquidatable"
	case Closed:
		return "closed"
	case Liquidated:
		return "liquidated"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further mutation.
func (s Status) Terminal() bool {
	return s == Closed || s == Liquidated
}

// Position is a single borrower's collateralized debt position.
type Position struct {
	ID             zkcrypto.Hash
	Owner          zkcrypto.PublicKey
	CollateralSats uint64
	DebtCents      uint64
	CreatedAt      uint64
	UpdatedAt      uint64
	Status         Status
	Nonce          uint64
}

// Clone returns a deep copy (Position has no reference fields beyond the
// PublicKey wrapper, which is immutable once constructed, so a value copy
// suffices).
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// IsTerminal reports whether the position can no longer be mutated.
func (p *Position) IsTerminal() bool {
	return p.Status.Terminal()
}
