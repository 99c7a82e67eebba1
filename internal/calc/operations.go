// Package calc provides the arithmetic operations and the calculation
// record type shared by the history store and the calculator facade.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Common errors
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidRoot      = errors.New("invalid root")
)

// Kind identifies an arithmetic operation.
type Kind string

// Supported operation kinds.
const (
	Add       Kind = "add"
	Subtract  Kind = "subtract"
	Multiply  Kind = "multiply"
	Divide    Kind = "divide"
	Power     Kind = "power"
	Root      Kind = "root"
	Modulus   Kind = "modulus"
	IntDivide Kind = "int_divide"
	Percent   Kind = "percent"
	AbsDiff   Kind = "abs_diff"
)

// kinds is the registry of operation kinds in display order.
var kinds = []Kind{
	Add, Subtract, Multiply, Divide, Power,
	Root, Modulus, IntDivide, Percent, AbsDiff,
}

// Kinds returns all supported operation kinds in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Resolve maps an operation name to its Kind. Names are matched
// case-insensitively with surrounding whitespace ignored.
func Resolve(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Apply executes the operation identified by k on the two operands.
func Apply(k Kind, a, b float64) (float64, error) {
	switch k {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, fmt.Errorf("%w: cannot divide %v by zero", ErrDivisionByZero, a)
		}
		return a / b, nil
	case Power:
		return math.Pow(a, b), nil
	case Root:
		return applyRoot(a, b)
	case Modulus:
		if b == 0 {
			return 0, fmt.Errorf("%w: modulus of %v by zero", ErrDivisionByZero, a)
		}
		return math.Mod(a, b), nil
	case IntDivide:
		if b == 0 {
			return 0, fmt.Errorf("%w: integer division of %v by zero", ErrDivisionByZero, a)
		}
		return math.Trunc(a / b), nil
	case Percent:
		if b == 0 {
			return 0, fmt.Errorf("%w: percent with zero divisor", ErrDivisionByZero)
		}
		return a / b * 100, nil
	case AbsDiff:
		return math.Abs(a - b), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, k)
}

// applyRoot computes the b-th root of a. Odd integer roots of negative
// numbers are computed sign-aware so root(-8, 3) yields -2.
func applyRoot(a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: root degree cannot be zero", ErrInvalidRoot)
	}
	if a < 0 {
		if !isOddInteger(b) {
			return 0, fmt.Errorf("%w: even root of negative number %v", ErrInvalidRoot, a)
		}
		return -math.Pow(-a, 1/b), nil
	}
	return math.Pow(a, 1/b), nil
}

func isOddInteger(v float64) bool {
	if v != math.Trunc(v) {
		return false
	}
	return math.Mod(math.Abs(v), 2) == 1
}
