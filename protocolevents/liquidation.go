package protocolevents

import "strconv"

const (
	TypeLiquidated          = "position.liquidated"
	TypeLiquidationAbsorbed = "stabilitypool.absorbed"
)

// Liquidated is emitted when a position is liquidated, regardless of
// whether the stability pool absorbed it or the fallback policy handled it.
type Liquidated struct {
	PositionID       string
	DebtCoveredCents uint64
	CollateralSeized uint64
	BonusSats        uint64
	Absorbed         bool
}

func (Liquidated) EventType() string { return TypeLiquidated }

func (e Liquidated) attrs() map[string]string {
	return map[string]string{
		"position_id":       e.PositionID,
		"debt_covered_cents": strconv.FormatUint(e.DebtCoveredCents, 10),
		"collateral_seized": strconv.FormatUint(e.CollateralSeized, 10),
		"bonus_sats":        strconv.FormatUint(e.BonusSats, 10),
		"absorbed":          strconv.FormatBool(e.Absorbed),
	}
}

// LiquidationAbsorbed is emitted by the orchestrator when the stability pool
// absorbs a liquidation's debt and collateral.
type LiquidationAbsorbed struct {
	DebtCents        uint64
	CollateralSats   uint64
	NewTotalDeposits uint64
	NewEpoch         uint64
	NewScale         uint64
}

func (LiquidationAbsorbed) EventType() string { return TypeLiquidationAbsorbed }

func (e LiquidationAbsorbed) attrs() map[string]string {
	return map[string]string{
		"debt_cents":         strconv.FormatUint(e.DebtCents, 10),
		"collateral_sats":    strconv.FormatUint(e.CollateralSats, 10),
		"new_total_deposits": strconv.FormatUint(e.NewTotalDeposits, 10),
		"new_epoch":          strconv.FormatUint(e.NewEpoch, 10),
		"new_scale":          strconv.FormatUint(e.NewScale, 10),
	}
}
