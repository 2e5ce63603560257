// Package snapshot aggregates every stateful subsystem into a single World
// value the orchestrator can clone wholesale, mutate in isolation, and swap
// in atomically once every precondition for an operation has passed
// ("validate against a shadow copy, mutate the shadow copy,
// then commit").
package snapshot

import (
	"zkusd/modulepause"
	"zkusd/paramstore"
	"zkusd/position"
	"zkusd/protocolevents"
	"zkusd/sortedindex"
	"zkusd/stabilitypool"
	"zkusd/token"
	"zkusd/vault"
)

// World holds every subsystem a protocol operation can touch.
type World struct {
	Positions *position.Manager
	Vault     *vault.Vault
	Tokens    *token.Ledger
	Pool      *stabilitypool.Pool
	Index     *sortedindex.Index
	Params    *paramstore.Store
	Events    *protocolevents.Log
	Pauses    *modulepause.Registry
}

// New returns a freshly initialized, empty world.
func New() *World {
	return &World{
		Positions: position.NewManager(),
		Vault:     vault.New(),
		Tokens:    token.NewLedger(),
		Pool:      stabilitypool.New(),
		Index:     sortedindex.New(),
		Params:    paramstore.NewStore(),
		Events:    protocolevents.NewLog(),
		Pauses:    modulepause.New(),
	}
}

// Clone returns a deep copy of every subsystem, independent of w: mutating
// the clone never affects w, and vice versa.
func (w *World) Clone() *World {
	return &World{
		Positions: w.Positions.Clone(),
		Vault:     w.Vault.Clone(),
		Tokens:    w.Tokens.Clone(),
		Pool:      w.Pool.Clone(),
		Index:     w.Index.Clone(),
		Params:    w.Params.Clone(),
		Events:    w.Events.Clone(),
		Pauses:    w.Pauses.Clone(),
	}
}

// TotalCollateralSats returns the vault's running total, the system-wide
// collateral figure the recovery-mode TCR predicate needs.
func (w *World) TotalCollateralSats() uint64 {
	return w.Vault.Total()
}

// TotalDebtCents returns the sum of every open position's outstanding debt,
// the system-wide debt figure the recovery-mode TCR predicate needs. This is
// distinct from the debt-token ledger's circulating supply: the borrowing
// fee leaves debt outstanding on a position with no token ever minted for
// it, so supply alone would understate systemic risk.
func (w *World) TotalDebtCents() uint64 {
	return w.Positions.TotalDebtCents()
}
