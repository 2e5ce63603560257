// Package protoerrors implements the protocol's typed, coded error taxonomy:
// every error carries a Kind, a stable numeric Code, and a human-readable
// message, with IsRecoverable/IsCritical classification for integration
// layers.
package protoerrors

import "fmt"

// Kind groups errors into the taxonomy's thousand-blocks.
type Kind int

const (
	KindPosition Kind = iota
	KindLiquidation
	KindOracle
	KindAuth
	KindValidation
	KindProtocol
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindLiquidation:
		return "liquidation"
	case KindOracle:
		return "oracle"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindProtocol:
		return "protocol"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the protocol's typed error. Code follows a numeric scheme
// (1xxx Position, 2xxx Liquidation, 3xxx Oracle, 4xxx Auth, 5xxx Validation,
// 6xxx Protocol, 9xxx Internal).
type Error struct {
	Kind    Kind
	Code    int
	Message string
	// Detail carries the specific reason for errors whose caller-facing
	// code collapses several distinct causes into one (see DESIGN.md
	// "RecoveryMode error richness"); it is informational and never part
	// of equality comparisons.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// WithDetail returns a copy of the error carrying the supplied detail string.
func (e *Error) WithDetail(detail string) *Error {
	clone := *e
	clone.Detail = detail
	return &clone
}

// recoverableCodes and criticalCodes classify errors for the
// IsRecoverable/IsCritical predicates below.
var recoverableCodes = map[int]bool{
	CodeInsufficientCollateral:    true,
	CodeRatioTooLow:               true,
	CodeDebtBelowMin:              true,
	CodeDebtAboveMax:              true,
	CodeWithdrawalUndercollat:     true,
	CodeNotLiquidatable:           true,
	CodeInsufficientStabilityPool: true,
	CodeStalePrice:                true,
	CodeDeviationTooHigh:          true,
	CodeInsufficientSources:       true,
	CodeInvalidProof:              true,
	CodePriceOutOfBounds:          true,
	CodeZeroAmount:                true,
	CodeInvalidParameter:          true,
	CodeNotFound:                  true,
	CodeAlreadyExists:             true,
	CodeNotActive:                 true,
	CodeUnauthorized:              true,
	CodeInvalidSignature:          true,
	CodeNonceReused:               true,
	CodeSignerMismatch:            true,
	CodeLiquidationInProgress:     true,
	CodePaused:                    true,
	CodeRecoveryMode:              true,
	CodeDebtCeilingReached:        true,
}

var criticalCodes = map[int]bool{
	CodeOverflow:            true,
	CodeUnderflow:           true,
	CodeInvariantViolation: true,
	CodeSerialization:      true,
	CodeStorage:            true,
	CodeLock:               true,
}

// IsRecoverable reports whether the error is user-correctable (insufficient
// collateral, ratio too low, stale price, debt below min, ...).
func (e *Error) IsRecoverable() bool {
	return recoverableCodes[e.Code]
}

// IsCritical reports whether the error should page an operator (invariant
// violation, overflow, internal failure).
func (e *Error) IsCritical() bool {
	return criticalCodes[e.Code]
}
