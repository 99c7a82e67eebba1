package calculator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/config"
	"github.com/artpar/tally/internal/history"
	"github.com/artpar/tally/internal/history/csvfile"
)

func testConfig() config.Config {
	return config.Config{
		MaxHistorySize: 100,
		AutoSave:       false,
		Precision:      10,
		MaxInputValue:  1e308,
	}
}

func newTestCalculator(t *testing.T, cfg config.Config, opts ...Option) *Calculator {
	t.Helper()
	return New(cfg, zerolog.Nop(), opts...)
}

func TestCompute(t *testing.T) {
	t.Run("computes and records", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())

		result, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		assert.Equal(t, 8.0, result)

		result, err = c.Compute("power", 2, 8)
		require.NoError(t, err)
		assert.Equal(t, 256.0, result)

		entries := c.History()
		require.Len(t, entries, 2)
		assert.Equal(t, calc.Add, entries[0].Operation)
		assert.Equal(t, 8.0, entries[0].Result)
		assert.Equal(t, calc.Power, entries[1].Operation)
		assert.Equal(t, 256.0, entries[1].Result)
	})

	t.Run("rounds results to the configured precision", func(t *testing.T) {
		cfg := testConfig()
		cfg.Precision = 3
		c := newTestCalculator(t, cfg)

		result, err := c.Compute("divide", 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.333, result)
	})

	t.Run("stamps records with the clock", func(t *testing.T) {
		ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
		c := newTestCalculator(t, testConfig(), WithClock(func() time.Time { return ts }))

		_, err := c.Compute("add", 1, 2)
		require.NoError(t, err)

		assert.True(t, ts.Equal(c.History()[0].Timestamp))
	})

	t.Run("rejects unknown operations without touching history", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())

		_, err := c.Compute("factorial", 5, 0)
		assert.ErrorIs(t, err, calc.ErrUnknownOperation)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("failed operation leaves history untouched", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Compute("add", 1, 1)
		require.NoError(t, err)

		_, err = c.Compute("divide", 1, 0)
		assert.ErrorIs(t, err, calc.ErrDivisionByZero)

		assert.Equal(t, 1, c.Len())
		// The failed compute must not have become undoable either.
		_, err = c.Undo()
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("rejects out-of-range operands", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxInputValue = 1000
		c := newTestCalculator(t, cfg)

		_, err := c.Compute("add", 1001, 1)
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = c.Compute("add", 1, -1001)
		assert.ErrorIs(t, err, ErrOutOfRange)

		assert.Equal(t, 0, c.Len())
	})

	t.Run("rejects NaN operands", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())

		nan := 0.0
		nan = nan / nan // quiet NaN without tripping vet

		_, err := c.Compute("add", nan, 1)
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})

	t.Run("enforces the history bound", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxHistorySize = 3
		c := newTestCalculator(t, cfg)

		for i := 0; i < 10; i++ {
			_, err := c.Compute("add", float64(i), 1)
			require.NoError(t, err)
			assert.LessOrEqual(t, c.Len(), 3)
		}

		entries := c.History()
		assert.Equal(t, 7.0, entries[0].OperandA)
	})
}

func TestUndoRedo(t *testing.T) {
	t.Run("undo after compute restores pre-compute history", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		_, err = c.Compute("power", 2, 8)
		require.NoError(t, err)

		n, err := c.Undo()
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		entries := c.History()
		require.Len(t, entries, 1)
		assert.Equal(t, calc.Add, entries[0].Operation)
		assert.Equal(t, 8.0, entries[0].Result)
	})

	t.Run("redo restores the undone computation", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		before := c.History()

		_, err = c.Undo()
		require.NoError(t, err)

		n, err := c.Redo()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, before, c.History())
	})

	t.Run("compute invalidates the redo branch", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Compute("add", 1, 1) // A
		require.NoError(t, err)
		_, err = c.Compute("add", 2, 2) // B
		require.NoError(t, err)

		_, err = c.Undo()
		require.NoError(t, err)

		_, err = c.Compute("add", 3, 3) // C
		require.NoError(t, err)

		_, err = c.Redo()
		assert.ErrorIs(t, err, history.ErrNothingToRedo)
	})

	t.Run("undo on fresh calculator fails", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Undo()
		assert.ErrorIs(t, err, history.ErrNothingToUndo)
	})
}

func TestClear(t *testing.T) {
	t.Run("clear then undo restores the pre-clear entries", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())
		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		_, err = c.Compute("subtract", 5, 3)
		require.NoError(t, err)
		before := c.History()

		c.Clear()
		assert.Equal(t, 0, c.Len())

		n, err := c.Undo()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, before, c.History())
	})
}

func TestSaveLoad(t *testing.T) {
	t.Run("save and load round-trip through the adapter", func(t *testing.T) {
		cfg := testConfig()
		adapter := csvfile.New(filepath.Join(t.TempDir(), "history.csv"), csvfile.WithPrecision(cfg.Precision))
		c := newTestCalculator(t, cfg, WithPersistence(adapter))

		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		_, err = c.Compute("power", 2, 8)
		require.NoError(t, err)
		saved := c.History()

		path, err := c.Save()
		require.NoError(t, err)
		assert.Equal(t, adapter.Path(), path)

		c.Clear()
		require.Equal(t, 0, c.Len())

		n, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		loaded := c.History()
		require.Len(t, loaded, 2)
		for i := range saved {
			assert.True(t, saved[i].Equal(loaded[i], cfg.Precision))
		}
	})

	t.Run("load with no file yields an empty history", func(t *testing.T) {
		adapter := csvfile.New(filepath.Join(t.TempDir(), "history.csv"))
		c := newTestCalculator(t, testConfig(), WithPersistence(adapter))

		n, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("save without persistence fails", func(t *testing.T) {
		c := newTestCalculator(t, testConfig())

		_, err := c.Save()
		assert.ErrorIs(t, err, ErrNoPersistence)

		_, err = c.Load()
		assert.ErrorIs(t, err, ErrNoPersistence)
	})
}

func TestAutoSave(t *testing.T) {
	t.Run("persists after every compute when enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.AutoSave = true
		adapter := csvfile.New(filepath.Join(t.TempDir(), "history.csv"), csvfile.WithPrecision(cfg.Precision))
		c := newTestCalculator(t, cfg, WithPersistence(adapter))

		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)

		loaded, err := adapter.Load()
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, 8.0, loaded[0].Result)
	})

	t.Run("does not persist when disabled", func(t *testing.T) {
		adapter := csvfile.New(filepath.Join(t.TempDir(), "history.csv"))
		c := newTestCalculator(t, testConfig(), WithPersistence(adapter))

		_, err := c.Compute("add", 5, 3)
		require.NoError(t, err)

		loaded, err := adapter.Load()
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("auto-save failure never surfaces to compute", func(t *testing.T) {
		cfg := testConfig()
		cfg.AutoSave = true
		// A directory path that cannot be created as a file.
		adapter := csvfile.New(t.TempDir())
		c := newTestCalculator(t, cfg, WithPersistence(adapter))

		result, err := c.Compute("add", 5, 3)
		require.NoError(t, err)
		assert.Equal(t, 8.0, result)
	})
}

type recordingObserver struct {
	got []calc.Calculation
}

func (r *recordingObserver) Update(c calc.Calculation) error {
	r.got = append(r.got, c)
	return nil
}

func TestExtraObservers(t *testing.T) {
	rec := &recordingObserver{}
	c := newTestCalculator(t, testConfig(), WithObserver(rec))

	_, err := c.Compute("add", 5, 3)
	require.NoError(t, err)
	_, err = c.Compute("divide", 1, 0)
	assert.Error(t, err)

	// Only the successful calculation was observed.
	require.Len(t, rec.got, 1)
	assert.Equal(t, 8.0, rec.got[0].Result)
}
