package protocolevents

import "strconv"

const (
	TypeOpened   = "position.opened"
	TypeDeposited = "position.deposited"
	TypeWithdrawn = "position.withdrawn"
	TypeMinted    = "position.minted"
	TypeRepaid    = "position.repaid"
	TypeClosed    = "position.closed"
)

// Opened is emitted when a new position is created.
type Opened struct {
	PositionID   string
	Owner        string
	CollateralSats uint64
	DebtCents    uint64
	Nonce        uint64
}

func (Opened) EventType() string { return TypeOpened }

func (e Opened) attrs() map[string]string {
	return map[string]string{
		"position_id":    e.PositionID,
		"owner":          e.Owner,
		"collateral_sats": strconv.FormatUint(e.CollateralSats, 10),
		"debt_cents":     strconv.FormatUint(e.DebtCents, 10),
		"nonce":          strconv.FormatUint(e.Nonce, 10),
	}
}

// Deposited is emitted when collateral is added to a position.
type Deposited struct {
	PositionID   string
	AmountSats   uint64
	NewTotalSats uint64
}

func (Deposited) EventType() string { return TypeDeposited }

func (e Deposited) attrs() map[string]string {
	return map[string]string{
		"position_id":    e.PositionID,
		"amount_sats":    strconv.FormatUint(e.AmountSats, 10),
		"new_total_sats": strconv.FormatUint(e.NewTotalSats, 10),
	}
}

// Withdrawn is emitted when collateral is removed from a position.
type Withdrawn struct {
	PositionID   string
	AmountSats   uint64
	NewTotalSats uint64
}

func (Withdrawn) EventType() string { return TypeWithdrawn }

func (e Withdrawn) attrs() map[string]string {
	return map[string]string{
		"position_id":    e.PositionID,
		"amount_sats":    strconv.FormatUint(e.AmountSats, 10),
		"new_total_sats": strconv.FormatUint(e.NewTotalSats, 10),
	}
}

// Minted is emitted when a position's debt increases.
type Minted struct {
	PositionID    string
	GrossCents    uint64
	FeeCents      uint64
	NewDebtCents  uint64
}

func (Minted) EventType() string { return TypeMinted }

func (e Minted) attrs() map[string]string {
	return map[string]string{
		"position_id":    e.PositionID,
		"gross_cents":    strconv.FormatUint(e.GrossCents, 10),
		"fee_cents":      strconv.FormatUint(e.FeeCents, 10),
		"new_debt_cents": strconv.FormatUint(e.NewDebtCents, 10),
	}
}

// Repaid is emitted when a position's debt decreases via repayment.
type Repaid struct {
	PositionID   string
	AmountCents  uint64
	NewDebtCents uint64
}

func (Repaid) EventType() string { return TypeRepaid }

func (e Repaid) attrs() map[string]string {
	return map[string]string{
		"position_id":    e.PositionID,
		"amount_cents":   strconv.FormatUint(e.AmountCents, 10),
		"new_debt_cents": strconv.FormatUint(e.NewDebtCents, 10),
	}
}

// Closed is emitted when a fully-repaid position is retired.
type Closed struct {
	PositionID    string
	ReleasedSats  uint64
}

func (Closed) EventType() string { return TypeClosed }

func (e Closed) attrs() map[string]string {
	return map[string]string{
		"position_id":   e.PositionID,
		"released_sats": strconv.FormatUint(e.ReleasedSats, 10),
	}
}
