package protoerrors

import "strconv"

// Position errors (1xxx).
const (
	CodeNotFound               = 1001
	CodeAlreadyExists          = 1002
	CodeNotActive              = 1003
	CodeInsufficientCollateral = 1004
	CodeRatioTooLow            = 1005
	CodeDebtBelowMin           = 1006
	CodeDebtAboveMax           = 1007
	CodeWithdrawalUndercollat  = 1008
)

// Liquidation errors (2xxx).
const (
	CodeNotLiquidatable           = 2001
	CodeInsufficientStabilityPool = 2002
	CodeLiquidationInProgress     = 2003
)

// Oracle errors (3xxx).
const (
	CodeStalePrice          = 3001
	CodeDeviationTooHigh    = 3002
	CodeInsufficientSources = 3003
	CodeInvalidProof        = 3004
	CodePriceOutOfBounds    = 3005
)

// Auth errors (4xxx).
const (
	CodeUnauthorized     = 4001
	CodeInvalidSignature = 4002
	CodeNonceReused      = 4003
	CodeSignerMismatch   = 4004
)

// Validation errors (5xxx).
const (
	CodeInvalidParameter = 5001
	CodeZeroAmount       = 5002
	CodeOverflow         = 5003
	CodeUnderflow        = 5004
)

// Protocol errors (6xxx).
const (
	CodePaused             = 6001
	CodeRecoveryMode       = 6002
	CodeDebtCeilingReached = 6003
	CodeInvariantViolation = 6004
)

// Internal errors (9xxx).
const (
	CodeSerialization = 9001
	CodeStorage       = 9002
	CodeLock          = 9003
)

// Constructors. Each returns a fresh *Error; named payload fields
// (e.g. InsufficientCollateral{required, available}) are rendered into
// Message/Detail since protoerrors does not carry structured per-error
// payload types beyond the shared shape.

func NotFound(what string) *Error {
	return &Error{Kind: KindPosition, Code: CodeNotFound, Message: "not found", Detail: what}
}

func AlreadyExists(what string) *Error {
	return &Error{Kind: KindPosition, Code: CodeAlreadyExists, Message: "already exists", Detail: what}
}

func NotActive() *Error {
	return &Error{Kind: KindPosition, Code: CodeNotActive, Message: "position is not active"}
}

func InsufficientCollateral(required, available uint64) *Error {
	return &Error{
		Kind:    KindPosition,
		Code:    CodeInsufficientCollateral,
		Message: "insufficient collateral",
		Detail:  detailPair("required", required, "available", available),
	}
}

func RatioTooLow(current, minimum uint64) *Error {
	return &Error{
		Kind:    KindPosition,
		Code:    CodeRatioTooLow,
		Message: "collateral ratio too low",
		Detail:  detailPair("current", current, "minimum", minimum),
	}
}

func DebtBelowMin(debt, min uint64) *Error {
	return &Error{
		Kind:    KindPosition,
		Code:    CodeDebtBelowMin,
		Message: "debt below minimum",
		Detail:  detailPair("debt", debt, "min", min),
	}
}

func DebtAboveMax(debt, max uint64) *Error {
	return &Error{
		Kind:    KindPosition,
		Code:    CodeDebtAboveMax,
		Message: "debt above maximum",
		Detail:  detailPair("debt", debt, "max", max),
	}
}

func WithdrawalWouldUndercollateralize() *Error {
	return &Error{Kind: KindPosition, Code: CodeWithdrawalUndercollat, Message: "withdrawal would undercollateralize position"}
}

func NotLiquidatable() *Error {
	return &Error{Kind: KindLiquidation, Code: CodeNotLiquidatable, Message: "position not eligible for liquidation"}
}

func InsufficientStabilityPool() *Error {
	return &Error{Kind: KindLiquidation, Code: CodeInsufficientStabilityPool, Message: "stability pool cannot absorb debt"}
}

func LiquidationInProgress() *Error {
	return &Error{Kind: KindLiquidation, Code: CodeLiquidationInProgress, Message: "liquidation already in progress"}
}

func StalePrice() *Error {
	return &Error{Kind: KindOracle, Code: CodeStalePrice, Message: "price is stale"}
}

func DeviationTooHigh() *Error {
	return &Error{Kind: KindOracle, Code: CodeDeviationTooHigh, Message: "price deviation exceeds bound"}
}

func InsufficientSources() *Error {
	return &Error{Kind: KindOracle, Code: CodeInsufficientSources, Message: "insufficient price sources"}
}

func InvalidProof() *Error {
	return &Error{Kind: KindOracle, Code: CodeInvalidProof, Message: "invalid proof"}
}

func PriceOutOfBounds() *Error {
	return &Error{Kind: KindOracle, Code: CodePriceOutOfBounds, Message: "price out of bounds"}
}

func Unauthorized() *Error {
	return &Error{Kind: KindAuth, Code: CodeUnauthorized, Message: "unauthorized"}
}

func InvalidSignature() *Error {
	return &Error{Kind: KindAuth, Code: CodeInvalidSignature, Message: "invalid signature"}
}

func NonceReused() *Error {
	return &Error{Kind: KindAuth, Code: CodeNonceReused, Message: "nonce already used or out of order"}
}

func SignerMismatch() *Error {
	return &Error{Kind: KindAuth, Code: CodeSignerMismatch, Message: "signer does not match caller"}
}

func InvalidParameter(name string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidParameter, Message: "invalid parameter", Detail: name}
}

func ZeroAmount() *Error {
	return &Error{Kind: KindValidation, Code: CodeZeroAmount, Message: "amount must be non-zero"}
}

func Overflow() *Error {
	return &Error{Kind: KindValidation, Code: CodeOverflow, Message: "arithmetic overflow"}
}

func Underflow() *Error {
	return &Error{Kind: KindValidation, Code: CodeUnderflow, Message: "arithmetic underflow"}
}

func Paused(module string) *Error {
	return &Error{Kind: KindProtocol, Code: CodePaused, Message: "module paused", Detail: module}
}

func RecoveryMode(reason string) *Error {
	return &Error{Kind: KindProtocol, Code: CodeRecoveryMode, Message: "blocked by recovery mode", Detail: reason}
}

func DebtCeilingReached() *Error {
	return &Error{Kind: KindProtocol, Code: CodeDebtCeilingReached, Message: "debt ceiling reached"}
}

func InvariantViolation(what string) *Error {
	return &Error{Kind: KindProtocol, Code: CodeInvariantViolation, Message: "invariant violation", Detail: what}
}

func Serialization(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeSerialization, Message: "serialization failure", Detail: errString(err)}
}

func Storage(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeStorage, Message: "storage failure", Detail: errString(err)}
}

func Lock() *Error {
	return &Error{Kind: KindInternal, Code: CodeLock, Message: "lock contention"}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func detailPair(k1 string, v1 uint64, k2 string, v2 uint64) string {
	return k1 + "=" + strconv.FormatUint(v1, 10) + " " + k2 + "=" + strconv.FormatUint(v2, 10)
}
