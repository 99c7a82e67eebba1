package calculator

import (
	"errors"
	"fmt"
	"math"
)

// Validation errors
var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrOutOfRange    = errors.New("operand out of range")
)

// validate rejects operands that are not finite real numbers or whose
// magnitude exceeds the configured maximum.
func (c *Calculator) validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidNumber, v)
	}
	if math.Abs(v) > c.cfg.MaxInputValue {
		return fmt.Errorf("%w: %v exceeds maximum allowed value %v", ErrOutOfRange, v, c.cfg.MaxInputValue)
	}
	return nil
}
