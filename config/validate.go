package config

import "fmt"

// MinVotingPeriodSeconds is the smallest governance voting window this
// protocol will accept.
var MinVotingPeriodSeconds = uint64(3600)

// Validate checks b's governance and slashing bounds for internal
// consistency before it is used to seed an orchestrator. It does not
// re-validate b.Params against paramstore's catalogue bounds — Bootstrap's
// StoreSeed delegates that to paramstore.NewStoreWithValues.
func Validate(b Bootstrap) error {
	if b.Governance.QuorumBPS < b.Governance.PassThresholdBPS {
		return fmt.Errorf("governance: quorum_bps < pass_threshold_bps")
	}
	if b.Governance.VotingPeriodSecs != 0 && b.Governance.VotingPeriodSecs < MinVotingPeriodSeconds {
		return fmt.Errorf("governance: voting_period_seconds too small")
	}
	if b.Slashing.MinFeeBps > b.Slashing.MaxFeeBps {
		return fmt.Errorf("slashing: min_fee_bps > max_fee_bps")
	}
	if b.Protocol.SatsPerBTC == 0 {
		return fmt.Errorf("protocol: sats_per_btc must be positive")
	}
	if b.Protocol.BPSDivisor == 0 {
		return fmt.Errorf("protocol: bps_divisor must be positive")
	}
	return nil
}
