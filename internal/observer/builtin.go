package observer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/history"
)

// Lister provides the current history entries. *history.Store
// satisfies it.
type Lister interface {
	List() []calc.Calculation
}

// Saver persists history entries. *csvfile.Adapter satisfies it.
type Saver interface {
	Save(entries []calc.Calculation) error
}

// NewLogging returns an observer that writes one structured log line
// per calculation.
func NewLogging(log zerolog.Logger) Observer {
	logger := log.With().Str("component", "calculator").Logger()
	return Func(func(c calc.Calculation) error {
		logger.Info().
			Str("operation", string(c.Operation)).
			Float64("operand_a", c.OperandA).
			Float64("operand_b", c.OperandB).
			Float64("result", c.Result).
			Msg("calculation")
		return nil
	})
}

// NewAutoSave returns an observer that persists the full history after
// each calculation. Save failures surface as observer errors, which
// the bus logs and swallows.
func NewAutoSave(source Lister, saver Saver) Observer {
	return Func(func(calc.Calculation) error {
		if err := saver.Save(source.List()); err != nil {
			return fmt.Errorf("auto-save failed: %w", err)
		}
		return nil
	})
}

// NewArchiver returns an observer that appends each calculation to
// the long-term archive.
func NewArchiver(archive history.Archive) Observer {
	return Func(func(c calc.Calculation) error {
		if _, err := archive.Add(context.Background(), c); err != nil {
			return fmt.Errorf("archive append failed: %w", err)
		}
		return nil
	})
}
