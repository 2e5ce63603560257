package config

import "zkusd/paramstore"

// Protocol bundles the fixed protocol constants that are never
// governance-adjustable, unlike the values in paramstore's catalogue.
type Protocol struct {
	SatsPerBTC               uint64
	BPSDivisor               uint64
	DustSats                 uint64
	RedemptionHalfLifeBlocks uint64
}

// Governance captures the voting/quorum policy bounds. Validate checks them
// for consistency; the parameter-change queue does not consult them.
type Governance struct {
	QuorumBPS        uint32
	PassThresholdBPS uint32
	VotingPeriodSecs uint64
}

// Slashing holds a fee range in bps. Validate checks that MinFeeBps does not
// exceed MaxFeeBps; no parameter is checked against the range.
type Slashing struct {
	MinFeeBps uint64
	MaxFeeBps uint64
}

// Bootstrap is the full set of values an orchestrator needs at construction
// time: the fixed protocol constants, the governance policy bounds, and the
// initial parameter values to seed the parameter store with. It is a plain
// Go value, not a file or environment loader — config loading itself is
// treated as an external collaborator.
type Bootstrap struct {
	Protocol   Protocol
	Governance Governance
	Slashing   Slashing
	Params     map[paramstore.Parameter]uint64
}
