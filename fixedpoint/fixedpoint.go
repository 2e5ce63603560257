// Package fixedpoint implements the protocol's checked integer arithmetic.
// All financial values are integer units (sats, cents); every multiplication
// that could exceed 64 bits is widened through holiman/uint256 before the
// division that brings it back down.
package fixedpoint

import (
	"errors"
	"math"
	"sort"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when an arithmetic result does not fit in 64 bits.
	ErrOverflow = errors.New("fixedpoint: overflow")
	// ErrUnderflow is returned when a subtraction would go negative.
	ErrUnderflow = errors.New("fixedpoint: underflow")
	// ErrDivideByZero is returned when a division's denominator is zero.
	ErrDivideByZero = errors.New("fixedpoint: divide by zero")
)

// SATSPerBTC is the number of satoshis in one bitcoin.
const SATSPerBTC uint64 = 100_000_000

// BPSDivisor is the basis-point divisor; 10000 bps == 100%.
const BPSDivisor uint64 = 10_000

// SafeAdd returns a+b, or ErrOverflow if the sum exceeds math.MaxUint64.
func SafeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SafeSub returns a-b, or ErrUnderflow if b > a.
func SafeSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// SafeMul returns a*b, or ErrOverflow if the product exceeds math.MaxUint64.
func SafeMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, ErrOverflow
	}
	return product, nil
}

// MulDiv computes floor(a*b/d) widening the intermediate product to 256 bits
// so a*b never truncates, and reports ErrOverflow if the quotient does not
// fit back into 64 bits.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	x := uint256.NewInt(a)
	y := uint256.NewInt(b)
	den := uint256.NewInt(d)

	product := new(uint256.Int).Mul(x, y)
	quotient := new(uint256.Int).Div(product, den)
	if !quotient.IsUint64() {
		return 0, ErrOverflow
	}
	return quotient.Uint64(), nil
}

// MulDivUp computes ceil(a*b/d) with the same 256-bit widening as MulDiv.
// Used for "minimum collateral required" computations so the system never
// rounds in the user's favor against its own solvency invariants.
func MulDivUp(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	x := uint256.NewInt(a)
	y := uint256.NewInt(b)
	den := uint256.NewInt(d)

	product := new(uint256.Int).Mul(x, y)
	quotient, remainder := new(uint256.Int).DivMod(product, den, new(uint256.Int))
	if !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	if !quotient.IsUint64() {
		return 0, ErrOverflow
	}
	return quotient.Uint64(), nil
}

// Median returns the integer median of values, rounding down when the count
// is even. Callers (oracle aggregation) are expected to pass a non-empty
// slice; Median returns 0 for an empty slice.
func Median(values []uint64) uint64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]uint64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	// Round down on an even split, matching the system's floor-everywhere policy.
	sum, err := SafeAdd(sorted[mid-1], sorted[mid])
	if err != nil {
		// Cannot overflow math.MaxUint64 in practice for price-cent inputs;
		// fall back to the larger-magnitude value's midpoint via halves.
		return sorted[mid-1]/2 + sorted[mid]/2
	}
	return sum / 2
}

// WithinDeviationBps reports whether next deviates from prev by no more than
// maxBps basis points of prev. A zero prev is treated as "no prior price",
// always within bounds.
func WithinDeviationBps(prev, next, maxBps uint64) bool {
	if prev == 0 {
		return true
	}
	var delta uint64
	if next >= prev {
		delta = next - prev
	} else {
		delta = prev - next
	}
	deviationBps, err := MulDiv(delta, BPSDivisor, prev)
	if err != nil {
		return false
	}
	return deviationBps <= maxBps
}

// MaxUint64 mirrors math.MaxUint64 for callers that want the "infinite
// ratio" sentinel without importing math directly.
const MaxUint64 = math.MaxUint64
