package calc

import (
	"fmt"
	"math"
	"time"
)

// Calculation represents a single completed calculation. Values are
// never mutated after construction.
type Calculation struct {
	OperandA  float64   `json:"operand_a"`
	OperandB  float64   `json:"operand_b"`
	Operation Kind      `json:"operation"`
	Result    float64   `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the calculation in the "a op b = r" form used by the
// REPL history listing and log lines.
func (c Calculation) String() string {
	return fmt.Sprintf("%v %s %v = %v", c.OperandA, c.Operation, c.OperandB, c.Result)
}

// Equal reports whether two calculations are equal with numeric fields
// compared at the given decimal precision. Persistence is lossy up to
// the configured precision, so round-trip comparisons go through here.
func (c Calculation) Equal(other Calculation, precision int) bool {
	return c.Operation == other.Operation &&
		Round(c.OperandA, precision) == Round(other.OperandA, precision) &&
		Round(c.OperandB, precision) == Round(other.OperandB, precision) &&
		Round(c.Result, precision) == Round(other.Result, precision) &&
		c.Timestamp.Equal(other.Timestamp)
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	pow := math.Pow(10, float64(digits))
	r := math.Round(v*pow) / pow
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}
	return r
}
