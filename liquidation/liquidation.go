// Package liquidation implements the single-position and batch liquidation
// operations, wiring the position manager, collateral vault, debt-token
// ledger, and stability pool together.
package liquidation

import (
	"zkusd/paramstore"
	"zkusd/position"
	"zkusd/protoerrors"
	"zkusd/ratio"
	"zkusd/sortedindex"
	"zkusd/stabilitypool"
	"zkusd/token"
	"zkusd/vault"
	"zkusd/zkcrypto"
)

// FallbackPolicy decides what happens when the stability pool cannot absorb
// a liquidation's full debt. The default, StrictRevertPolicy, rejects the
// liquidation outright; the interface exists so a proportional-redistribution
// policy can be added later without changing Engine's call sites (see
// DESIGN.md's Open Question #1).
type FallbackPolicy interface {
	OnInsufficientPool(id zkcrypto.Hash, debtCovered, collateralSeized, bonus uint64) error
}

// StrictRevertPolicy rejects any liquidation the stability pool cannot fully
// absorb, performing no mutation.
type StrictRevertPolicy struct{}

// OnInsufficientPool always returns InsufficientStabilityPool.
func (StrictRevertPolicy) OnInsufficientPool(zkcrypto.Hash, uint64, uint64, uint64) error {
	return protoerrors.InsufficientStabilityPool()
}

// Result describes the outcome of a single liquidation.
type Result struct {
	ID               zkcrypto.Hash
	DebtCovered      uint64
	CollateralSeized uint64
	Bonus            uint64
	Absorbed         bool
}

// Engine performs liquidations against a shared set of subsystems.
type Engine struct {
	Positions *position.Manager
	Vault     *vault.Vault
	Tokens    *token.Ledger
	Pool      *stabilitypool.Pool
	Index     *sortedindex.Index
	Fallback  FallbackPolicy
}

// New returns a liquidation engine wired to the given subsystems, defaulting
// to StrictRevertPolicy when fallback is nil.
func New(positions *position.Manager, v *vault.Vault, tokens *token.Ledger, pool *stabilitypool.Pool, index *sortedindex.Index, fallback FallbackPolicy) *Engine {
	if fallback == nil {
		fallback = StrictRevertPolicy{}
	}
	return &Engine{Positions: positions, Vault: v, Tokens: tokens, Pool: pool, Index: index, Fallback: fallback}
}

// Liquidate performs a single-position liquidation in five steps: preview,
// pool-capacity check, debt/collateral settlement, index update (removing the
// position if it's now terminal, reindexing it otherwise), and pool
// absorption. It emits no events; the caller records them from the returned
// Result. Every precondition is checked (via PreviewLiquidation and the
// pool-capacity check) before any subsystem is mutated, so a failure leaves
// state untouched.
func (e *Engine) Liquidate(id zkcrypto.Hash, priceCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool) (Result, error) {
	debtCovered, collateralSeized, bonus, err := e.Positions.PreviewLiquidation(id, priceCents, params, inRecovery)
	if err != nil {
		return Result{}, err
	}

	absorbed := e.Pool.TotalDeposits >= debtCovered
	if !absorbed {
		if err := e.Fallback.OnInsufficientPool(id, debtCovered, collateralSeized, bonus); err != nil {
			return Result{}, err
		}
	}

	if err := e.Positions.ApplyLiquidation(id, collateralSeized, now); err != nil {
		return Result{}, err
	}
	if err := e.Vault.Seize(id, collateralSeized); err != nil {
		return Result{}, err
	}
	p, err := e.Positions.Get(id)
	if err != nil {
		return Result{}, err
	}
	if p.IsTerminal() {
		e.Index.Remove(id)
	} else {
		// A residual collateral remains: the position stays open with zero
		// debt, so it belongs at the safe end of the index, not out of it.
		r, err := ratio.Ratio(p.CollateralSats, priceCents, p.DebtCents)
		if err != nil {
			return Result{}, err
		}
		e.Index.Reinsert(id, r)
	}

	if absorbed {
		if err := e.Pool.Absorb(debtCovered, collateralSeized); err != nil {
			return Result{}, err
		}
	}

	return Result{
		ID:               id,
		DebtCovered:      debtCovered,
		CollateralSeized: collateralSeized,
		Bonus:            bonus,
		Absorbed:         absorbed,
	}, nil
}

// BatchResult is one iteration's outcome within a batch liquidation run.
type BatchResult struct {
	Result Result
	Err    error
}

// LiquidateBatch repeatedly liquidates the riskiest eligible positions in
// ascending-ratio order, up to maxBatch liquidations or until none remain.
// Per-call failures are recorded in the results but do not abort the
// batch; each iteration is its own atomic operation.
func (e *Engine) LiquidateBatch(priceCents uint64, params paramstore.Snapshot, now uint64, inRecovery bool, maxBatch int) []BatchResult {
	// Index entries carry the ratio computed at the price current when each
	// was last written; re-derive every ratio at priceCents before selecting.
	fresh := e.Index.All()
	for i, entry := range fresh {
		p, err := e.Positions.Get(entry.ID)
		if err != nil {
			continue
		}
		if r, err := ratio.Ratio(p.CollateralSats, priceCents, p.DebtCents); err == nil {
			fresh[i].RatioBps = r
		}
	}
	e.Index.Rebuild(fresh)

	threshold := params.Get(paramstore.MinCollateralRatio)
	if inRecovery {
		threshold = params.Get(paramstore.CriticalCollateralRatio)
	}

	var results []BatchResult
	for len(results) < maxBatch {
		candidates := e.Index.Below(threshold)
		if len(candidates) == 0 {
			break
		}
		id := candidates[0].ID
		res, err := e.Liquidate(id, priceCents, params, now, inRecovery)
		results = append(results, BatchResult{Result: res, Err: err})
		if err != nil {
			// The entry didn't change; removing it here prevents an
			// unliquidatable/failing position from looping the batch forever.
			e.Index.Remove(id)
		}
	}
	return results
}
