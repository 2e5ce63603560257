package protocolevents

import "strconv"

const (
	TypeTransfer             = "token.transfer"
	TypeRedemption           = "redemption.executed"
	TypePriceUpdated         = "oracle.price_updated"
	TypeConfigChanged        = "paramstore.changed"
	TypeRecoveryModeEntered  = "recovery.entered"
	TypeRecoveryModeExited   = "recovery.exited"
)

// Transfer is emitted for debt-token balance movements.
type Transfer struct {
	From        string
	To          string
	AmountCents uint64
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) attrs() map[string]string {
	return map[string]string{
		"from":         e.From,
		"to":           e.To,
		"amount_cents": strconv.FormatUint(e.AmountCents, 10),
	}
}

// Redemption is emitted once per completed redemption, summarizing every
// leg it touched.
type Redemption struct {
	Caller           string
	PositionsTouched uint64
	NetRedeemedCents uint64
	FeeCents         uint64
	SeizedSats       uint64
}

func (Redemption) EventType() string { return TypeRedemption }

func (e Redemption) attrs() map[string]string {
	return map[string]string{
		"caller":            e.Caller,
		"positions_touched": strconv.FormatUint(e.PositionsTouched, 10),
		"net_redeemed_cents": strconv.FormatUint(e.NetRedeemedCents, 10),
		"fee_cents":         strconv.FormatUint(e.FeeCents, 10),
		"seized_sats":       strconv.FormatUint(e.SeizedSats, 10),
	}
}

// PriceUpdated is emitted for every accepted price submission, whether or
// not the aggregated price differs from the previous one.
type PriceUpdated struct {
	PriceCents uint64
	SourceCount uint64
	AsOfBlock  uint64
}

func (PriceUpdated) EventType() string { return TypePriceUpdated }

func (e PriceUpdated) attrs() map[string]string {
	return map[string]string{
		"price_cents":  strconv.FormatUint(e.PriceCents, 10),
		"source_count": strconv.FormatUint(e.SourceCount, 10),
		"as_of_block":  strconv.FormatUint(e.AsOfBlock, 10),
	}
}

// ConfigChanged is emitted when a queued parameter change takes effect.
type ConfigChanged struct {
	Parameter string
	OldValue  uint64
	NewValue  uint64
}

func (ConfigChanged) EventType() string { return TypeConfigChanged }

func (e ConfigChanged) attrs() map[string]string {
	return map[string]string{
		"parameter": e.Parameter,
		"old_value": strconv.FormatUint(e.OldValue, 10),
		"new_value": strconv.FormatUint(e.NewValue, 10),
	}
}

// RecoveryModeEntered is emitted the first time TCR drops below CCR.
type RecoveryModeEntered struct {
	TCR uint64
	CCR uint64
}

func (RecoveryModeEntered) EventType() string { return TypeRecoveryModeEntered }

func (e RecoveryModeEntered) attrs() map[string]string {
	return map[string]string{
		"tcr": strconv.FormatUint(e.TCR, 10),
		"ccr": strconv.FormatUint(e.CCR, 10),
	}
}

// RecoveryModeExited is emitted the first time TCR recovers to at or above CCR.
type RecoveryModeExited struct {
	TCR uint64
	CCR uint64
}

func (RecoveryModeExited) EventType() string { return TypeRecoveryModeExited }

func (e RecoveryModeExited) attrs() map[string]string {
	return map[string]string{
		"tcr": strconv.FormatUint(e.TCR, 10),
		"ccr": strconv.FormatUint(e.CCR, 10),
	}
}
