// Package mathx provides checked integer arithmetic for lamport and token
// amounts. Every fee and curve computation in the engine routes through these
// helpers; no money path ever touches floating point.
package mathx

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when a result does not fit in uint64.
	ErrOverflow = errors.New("math overflow")
	// ErrDivisionByZero is returned when a divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// MulDiv computes floor(a * b / d) with a widened intermediate product, so
// a*b may exceed 64 bits as long as the final quotient narrows back down.
// Returns ErrDivisionByZero if d == 0 and ErrOverflow if the quotient does
// not fit in uint64.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	prod := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	quot := prod.Div(prod, uint256.NewInt(d))
	if !quot.IsUint64() {
		return 0, ErrOverflow
	}
	return quot.Uint64(), nil
}

// Add returns a + b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a - b or ErrOverflow when b > a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// Mul returns a * b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	prod := a * b
	if prod/a != b {
		return 0, ErrOverflow
	}
	return prod, nil
}
