package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		digits int
		want   float64
	}{
		{"rounds down", 1.23456, 2, 1.23},
		{"rounds up", 1.235, 2, 1.24},
		{"zero digits", 2.7, 0, 3},
		{"already exact", 8, 10, 8},
		{"negative value", -1.2345, 3, -1.234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round(tt.v, tt.digits), 1e-12)
		})
	}

	t.Run("negative digits is a no-op", func(t *testing.T) {
		assert.Equal(t, 1.23456, Round(1.23456, -1))
	})

	t.Run("huge values survive", func(t *testing.T) {
		assert.Equal(t, 1e308, Round(1e308, 10))
	})
}

func TestCalculationEqual(t *testing.T) {
	ts := time.Now()
	a := Calculation{OperandA: 5, OperandB: 3, Operation: Add, Result: 8, Timestamp: ts}

	t.Run("identical calculations are equal", func(t *testing.T) {
		assert.True(t, a.Equal(a, 10))
	})

	t.Run("differences below precision are equal", func(t *testing.T) {
		b := a
		b.Result = 8.00000000001
		assert.True(t, a.Equal(b, 10))
	})

	t.Run("differences above precision are not equal", func(t *testing.T) {
		b := a
		b.Result = 8.1
		assert.False(t, a.Equal(b, 10))
	})

	t.Run("operation difference is not equal", func(t *testing.T) {
		b := a
		b.Operation = Subtract
		assert.False(t, a.Equal(b, 10))
	})

	t.Run("timestamp difference is not equal", func(t *testing.T) {
		b := a
		b.Timestamp = ts.Add(time.Second)
		assert.False(t, a.Equal(b, 10))
	})
}

func TestCalculationString(t *testing.T) {
	c := Calculation{OperandA: 5, OperandB: 3, Operation: Add, Result: 8}
	assert.Equal(t, "5 add 3 = 8", c.String())
}
