// Package paramstore implements the protocol's typed, bounds-checked
// parameter catalogue and its delayed-change queue.
package paramstore

import "zkusd/protoerrors"

// Parameter identifies a single governance-controlled protocol constant.
type Parameter int

const (
	MinCollateralRatio Parameter = iota
	CriticalCollateralRatio
	MinDebt
	DebtCeiling
	BorrowingFee
	RedemptionFeeFloor
	RedemptionFeeCap
	LiquidationBonus
	MinStabilityDeposit
	PriceStalenessThreshold
	MinPriceSources
	MaxPriceDeviation
	ProposalThreshold
	Quorum
	VotingPeriod
	TimelockDelay
)

func (p Parameter) String() string {
	switch p {
	case MinCollateralRatio:
		return "MinCollateralRatio"
	case CriticalCollateralRatio:
		return "CriticalCollateralRatio"
	case MinDebt:
		return "MinDebt"
	case DebtCeiling:
		return "DebtCeiling"
	case BorrowingFee:
		return "BorrowingFee"
	case RedemptionFeeFloor:
		return "RedemptionFeeFloor"
	case RedemptionFeeCap:
		return "RedemptionFeeCap"
	case LiquidationBonus:
		return "LiquidationBonus"
	case MinStabilityDeposit:
		return "MinStabilityDeposit"
	case PriceStalenessThreshold:
		return "PriceStalenessThreshold"
	case MinPriceSources:
		return "MinPriceSources"
	case MaxPriceDeviation:
		return "MaxPriceDeviation"
	case ProposalThreshold:
		return "ProposalThreshold"
	case Quorum:
		return "Quorum"
	case VotingPeriod:
		return "VotingPeriod"
	case TimelockDelay:
		return "TimelockDelay"
	default:
		return "Unknown"
	}
}

// Bounds is the inclusive (min, max) range a parameter's value must satisfy.
type Bounds struct {
	Min uint64
	Max uint64
}

// catalogue holds the protocol's governance-adjustable parameter bounds.
var catalogue = map[Parameter]Bounds{
	MinCollateralRatio:      {100, 500},
	CriticalCollateralRatio: {100, 200},
	MinDebt:                 {100, 100_000_000},
	DebtCeiling:             {0, ^uint64(0)},
	BorrowingFee:            {0, 1000},
	RedemptionFeeFloor:      {0, 500},
	RedemptionFeeCap:        {0, 1000},
	LiquidationBonus:        {0, 2000},
	MinStabilityDeposit:     {0, 10_000_000},
	PriceStalenessThreshold: {60, 86400},
	MinPriceSources:         {1, 10},
	MaxPriceDeviation:       {10, 1000},
	// Governance parameters bound loosely; the voting/quorum mechanics
	// themselves are an external collaborator
	ProposalThreshold: {0, ^uint64(0)},
	Quorum:            {0, ^uint64(0)},
	VotingPeriod:      {1, ^uint64(0)},
	TimelockDelay:     {0, ^uint64(0)},
}

// BoundsFor returns the (min, max) bounds for a parameter.
func BoundsFor(p Parameter) (Bounds, bool) {
	b, ok := catalogue[p]
	return b, ok
}

// Validate checks value against the parameter's bounds.
func Validate(p Parameter, value uint64) error {
	b, ok := catalogue[p]
	if !ok {
		return protoerrors.InvalidParameter(p.String())
	}
	if value < b.Min || value > b.Max {
		return protoerrors.InvalidParameter(p.String())
	}
	return nil
}

// Defaults returns the protocol's default parameter values, matching
// glossary defaults (MCR 110%, CCR 150%) and otherwise chosen
// from within each parameter's valid range.
func Defaults() map[Parameter]uint64 {
	return map[Parameter]uint64{
		MinCollateralRatio:      110,
		CriticalCollateralRatio: 150,
		MinDebt:                 2_000_00, // $2,000 in cents
		DebtCeiling:             100_000_000_00,
		BorrowingFee:            50,  // 0.5%
		RedemptionFeeFloor:      50,  // 0.5%
		RedemptionFeeCap:        500, // 5%
		LiquidationBonus:        500, // 5%
		MinStabilityDeposit:     100_00,
		PriceStalenessThreshold: 3600,
		MinPriceSources:         3,
		MaxPriceDeviation:       200,
		ProposalThreshold:       0,
		Quorum:                  0,
		VotingPeriod:            1,
		TimelockDelay:           0,
	}
}
