package config

import (
	"zkusd/fixedpoint"
	"zkusd/paramstore"
	"zkusd/position"
)

// Default returns the protocol's default bootstrap configuration: the fixed
// constants, a permissive governance policy, and paramstore's own defaults.
func Default() Bootstrap {
	return Bootstrap{
		Protocol: Protocol{
			SatsPerBTC:               fixedpoint.SATSPerBTC,
			BPSDivisor:               fixedpoint.BPSDivisor,
			DustSats:                 position.DustSats,
			RedemptionHalfLifeBlocks: 144,
		},
		Governance: Governance{
			QuorumBPS:        0,
			PassThresholdBPS: 0,
			VotingPeriodSecs: 0,
		},
		Slashing: Slashing{
			MinFeeBps: 0,
			MaxFeeBps: 1000,
		},
		Params: paramstore.Defaults(),
	}
}

// StoreSeed returns a parameter store populated with b's initial values,
// validated against paramstore's own bounds before anything is inserted.
func (b Bootstrap) StoreSeed() (*paramstore.Store, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	return paramstore.NewStoreWithValues(b.Params)
}
