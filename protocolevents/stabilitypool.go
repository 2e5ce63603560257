package protocolevents

import "strconv"

const (
	TypeStabilityDeposit  = "stabilitypool.deposited"
	TypeStabilityWithdraw = "stabilitypool.withdrawn"
	TypeGainsClaimed      = "stabilitypool.gains_claimed"
)

// StabilityDeposit is emitted when a depositor adds cents to the stability pool.
type StabilityDeposit struct {
	Depositor        string
	AmountCents      uint64
	NewTotalDeposits uint64
}

func (StabilityDeposit) EventType() string { return TypeStabilityDeposit }

func (e StabilityDeposit) attrs() map[string]string {
	return map[string]string{
		"depositor":          e.Depositor,
		"amount_cents":       strconv.FormatUint(e.AmountCents, 10),
		"new_total_deposits": strconv.FormatUint(e.NewTotalDeposits, 10),
	}
}

// StabilityWithdraw is emitted when a depositor withdraws cents from the pool.
type StabilityWithdraw struct {
	Depositor     string
	WithdrawnCents uint64
	GainsPaidSats uint64
}

func (StabilityWithdraw) EventType() string { return TypeStabilityWithdraw }

func (e StabilityWithdraw) attrs() map[string]string {
	return map[string]string{
		"depositor":        e.Depositor,
		"withdrawn_cents":  strconv.FormatUint(e.WithdrawnCents, 10),
		"gains_paid_sats":  strconv.FormatUint(e.GainsPaidSats, 10),
	}
}

// GainsClaimed is emitted when a depositor claims accumulated collateral
// gains without withdrawing their principal.
type GainsClaimed struct {
	Depositor string
	GainsSats uint64
}

func (GainsClaimed) EventType() string { return TypeGainsClaimed }

func (e GainsClaimed) attrs() map[string]string {
	return map[string]string{
		"depositor":  e.Depositor,
		"gains_sats": strconv.FormatUint(e.GainsSats, 10),
	}
}
