package liquidation

import (
	"testing"

	"zkusd/paramstore"
	"zkusd/position"
	"zkusd/ratio"
	"zkusd/sortedindex"
	"zkusd/stabilitypool"
	"zkusd/token"
	"zkusd/vault"
	"zkusd/zkcrypto"
)

func testKey(t *testing.T) zkcrypto.PublicKey {
	t.Helper()
	priv, err := zkcrypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv.PubKey()
}

func setupEngine(t *testing.T) (*Engine, zkcrypto.Hash, paramstore.Snapshot) {
	t.Helper()
	positions := position.NewManager()
	v := vault.New()
	tokens := token.NewLedger()
	pool := stabilitypool.New()
	index := sortedindex.New()
	params := paramstore.Snapshot(paramstore.Defaults())

	owner := testKey(t)
	openPrice := uint64(10_000_000)
	p, err := positions.Open(owner, 1, 100_000_000, 5_000_000, openPrice, params, 100, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := v.Deposit(p.ID, 100_000_000); err != nil {
		t.Fatalf("vault deposit: %v", err)
	}
	if err := tokens.Mint(owner, 5_000_000); err != nil {
		t.Fatalf("mint debt token: %v", err)
	}
	index.Insert(p.ID, 200)

	depositor := testKey(t)
	if err := pool.Deposit(depositor, 10_000_000, 1); err != nil {
		t.Fatalf("pool deposit: %v", err)
	}

	engine := New(positions, v, tokens, pool, index, nil)
	return engine, p.ID, params
}

// S3: a position crashes to 100% ratio (below the 110% MCR) and the
// stability pool fully absorbs its debt.
func TestLiquidateAbsorbedByPool(t *testing.T) {
	engine, id, params := setupEngine(t)
	crashedPrice := uint64(5_000_000)

	res, err := engine.Liquidate(id, crashedPrice, params, 200, false)
	if err != nil {
		t.Fatalf("liquidate: %v", err)
	}
	if !res.Absorbed {
		t.Fatalf("expected liquidation to be absorbed by the pool")
	}
	if res.DebtCovered != 5_000_000 {
		t.Fatalf("expected debt covered 5_000_000, got %d", res.DebtCovered)
	}

	if engine.Pool.TotalDeposits != 5_000_000 {
		t.Fatalf("expected pool total deposits to drop to 5_000_000, got %d", engine.Pool.TotalDeposits)
	}
	if engine.Pool.TotalGainsSats == 0 {
		t.Fatalf("expected pool total gains to increase")
	}
	if engine.Pool.AbsorptionCount != 1 {
		t.Fatalf("expected absorption count 1, got %d", engine.Pool.AbsorptionCount)
	}

	got, err := engine.Positions.Get(id)
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if !got.IsTerminal() || got.Status != position.Liquidated {
		t.Fatalf("expected position terminal/liquidated, got %+v", got)
	}

	if engine.Vault.BalanceOf(id) != 100_000_000-res.CollateralSeized {
		t.Fatalf("expected vault balance reduced by seized collateral")
	}
	if engine.Index.IndexOf(id) != -1 {
		t.Fatalf("expected liquidated position removed from sorted index")
	}
}

// A position liquidated close to the minimum ratio doesn't have its full
// collateral seized by the bonus-adjusted target: the residual stays with
// the position, which is left open (zero debt) rather than retired, and
// reindexed at the safe end instead of dropped.
func TestLiquidatePartialSeizeLeavesResidualOpen(t *testing.T) {
	positions := position.NewManager()
	v := vault.New()
	tokens := token.NewLedger()
	pool := stabilitypool.New()
	index := sortedindex.New()
	params := paramstore.Snapshot(paramstore.Defaults())

	owner := testKey(t)
	openPrice := uint64(10_000_000)
	const collSats = uint64(100_000_000)
	const debtCents = uint64(5_000_000)
	p, err := positions.Open(owner, 1, collSats, debtCents, openPrice, params, 100, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := v.Deposit(p.ID, collSats); err != nil {
		t.Fatalf("vault deposit: %v", err)
	}
	if err := tokens.Mint(owner, debtCents); err != nil {
		t.Fatalf("mint debt token: %v", err)
	}
	index.Insert(p.ID, 200)

	depositor := testKey(t)
	if err := pool.Deposit(depositor, 10_000_000, 1); err != nil {
		t.Fatalf("pool deposit: %v", err)
	}

	// Crash the price just enough to land the ratio at 107%: below the 110%
	// MCR, but above the 105% (bonus-adjusted) seize target, so only part of
	// the collateral is needed to make the pool whole.
	crashedPrice := uint64(5_350_000)
	engine := New(positions, v, tokens, pool, index, nil)
	res, err := engine.Liquidate(p.ID, crashedPrice, params, 200, false)
	if err != nil {
		t.Fatalf("liquidate: %v", err)
	}
	if res.CollateralSeized >= collSats {
		t.Fatalf("expected a partial seize, got %d of %d", res.CollateralSeized, collSats)
	}

	got, err := engine.Positions.Get(p.ID)
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if got.IsTerminal() {
		t.Fatalf("expected position to stay open with its residual collateral, got %+v", got)
	}
	if got.DebtCents != 0 {
		t.Fatalf("expected debt fully cleared, got %d", got.DebtCents)
	}
	wantResidual := collSats - res.CollateralSeized
	if got.CollateralSats != wantResidual {
		t.Fatalf("expected residual collateral %d, got %d", wantResidual, got.CollateralSats)
	}

	if idx := engine.Index.IndexOf(p.ID); idx == -1 {
		t.Fatalf("expected the residual position to remain in the sorted index")
	}
}

func TestLiquidateFallsBackWhenPoolInsufficient(t *testing.T) {
	engine, id, params := setupEngine(t)
	engine.Pool.TotalDeposits = 100 // far below the position's debt
	crashedPrice := uint64(5_000_000)

	if _, err := engine.Liquidate(id, crashedPrice, params, 200, false); err == nil {
		t.Fatalf("expected strict-revert fallback to reject the liquidation")
	}

	got, err := engine.Positions.Get(id)
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if got.IsTerminal() {
		t.Fatalf("expected position untouched after a reverted liquidation")
	}
}

func TestLiquidateRejectsHealthyPosition(t *testing.T) {
	engine, id, params := setupEngine(t)
	healthyPrice := uint64(10_000_000)
	if _, err := engine.Liquidate(id, healthyPrice, params, 200, false); err == nil {
		t.Fatalf("expected liquidation of a healthy position to fail")
	}
}

func TestLiquidateBatchStopsAtMaxBatch(t *testing.T) {
	positions := position.NewManager()
	v := vault.New()
	tokens := token.NewLedger()
	pool := stabilitypool.New()
	index := sortedindex.New()
	params := paramstore.Snapshot(paramstore.Defaults())
	engine := New(positions, v, tokens, pool, index, nil)

	depositor := testKey(t)
	if err := pool.Deposit(depositor, 1_000_000_00, 1); err != nil {
		t.Fatalf("pool deposit: %v", err)
	}

	openPrice := uint64(10_000_000)
	for i := uint64(1); i <= 3; i++ {
		owner := testKey(t)
		p, err := positions.Open(owner, i, 100_000_000, 5_000_000, openPrice, params, 100, false)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := v.Deposit(p.ID, 100_000_000); err != nil {
			t.Fatalf("vault deposit %d: %v", i, err)
		}
		r, err := ratioFor(p.ID, positions, openPrice)
		if err != nil {
			t.Fatalf("ratio %d: %v", i, err)
		}
		index.Insert(p.ID, r)
	}

	crashedPrice := uint64(5_000_000)
	results := engine.LiquidateBatch(crashedPrice, params, 200, false, 2)
	if len(results) != 2 {
		t.Fatalf("expected batch capped at 2, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected batch failure: %v", r.Err)
		}
	}
	if index.Len() != 1 {
		t.Fatalf("expected 1 position remaining in the index, got %d", index.Len())
	}
}

func ratioFor(id zkcrypto.Hash, positions *position.Manager, price uint64) (uint64, error) {
	p, err := positions.Get(id)
	if err != nil {
		return 0, err
	}
	return ratio.Ratio(p.CollateralSats, price, p.DebtCents)
}
