package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/tally/internal/calc"
)

// RunArchiveTests runs the standard archive test suite against any
// Archive implementation. Use this to verify that an implementation
// correctly implements the interface.
func RunArchiveTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("Add", func(t *testing.T) {
		runArchiveAddTests(t, newArchive)
	})
	t.Run("List", func(t *testing.T) {
		runArchiveListTests(t, newArchive)
	})
	t.Run("Prune", func(t *testing.T) {
		runArchivePruneTests(t, newArchive)
	})
	t.Run("Stats", func(t *testing.T) {
		runArchiveStatsTests(t, newArchive)
	})
	t.Run("Clear", func(t *testing.T) {
		runArchiveClearTests(t, newArchive)
	})
}

func testCalculation(op calc.Kind, a, b, result float64, ts time.Time) calc.Calculation {
	return calc.Calculation{
		OperandA:  a,
		OperandB:  b,
		Operation: op,
		Result:    result,
		Timestamp: ts,
	}
}

func runArchiveAddTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("adds calculation and returns ID", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		id, err := archive.Add(context.Background(), testCalculation(calc.Add, 5, 3, 8, time.Now()))

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("round-trips all fields", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		ts := time.Now().UTC().Truncate(time.Microsecond)
		c := testCalculation(calc.Power, 2, 8, 256, ts)

		id, err := archive.Add(context.Background(), c)
		require.NoError(t, err)

		got, err := archive.Get(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, got.ID)
		assert.Equal(t, c.Operation, got.Operation)
		assert.Equal(t, c.OperandA, got.OperandA)
		assert.Equal(t, c.OperandB, got.OperandB)
		assert.Equal(t, c.Result, got.Result)
		assert.True(t, ts.Equal(got.Timestamp), "timestamp mismatch: %v vs %v", ts, got.Timestamp)
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		ids := make(map[string]bool)
		for i := 0; i < 10; i++ {
			id, err := archive.Add(context.Background(), testCalculation(calc.Add, 1, 1, 2, time.Now()))
			require.NoError(t, err)
			assert.False(t, ids[id], "duplicate ID generated")
			ids[id] = true
		}
	})

	t.Run("get returns error for unknown ID", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		_, err := archive.Get(context.Background(), "no-such-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func runArchiveListTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("lists all records", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		for i := 0; i < 5; i++ {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, float64(i), 1, float64(i+1), time.Now()))
			require.NoError(t, err)
		}

		records, err := archive.List(context.Background(), QueryOptions{})

		require.NoError(t, err)
		assert.Len(t, records, 5)
	})

	t.Run("filters by operation", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		ops := []calc.Kind{calc.Add, calc.Divide, calc.Add, calc.Power, calc.Add}
		for _, op := range ops {
			_, err := archive.Add(context.Background(), testCalculation(op, 4, 2, 2, time.Now()))
			require.NoError(t, err)
		}

		records, err := archive.List(context.Background(), QueryOptions{Operation: calc.Add})

		require.NoError(t, err)
		assert.Len(t, records, 3)
		for _, r := range records {
			assert.Equal(t, calc.Add, r.Operation)
		}
	})

	t.Run("filters by time range", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		now := time.Now()
		times := []time.Time{
			now.Add(-48 * time.Hour),
			now.Add(-24 * time.Hour),
			now.Add(-1 * time.Hour),
			now,
		}
		for _, ts := range times {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, 1, 1, 2, ts))
			require.NoError(t, err)
		}

		records, err := archive.List(context.Background(), QueryOptions{
			After: now.Add(-25 * time.Hour),
		})

		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("applies pagination", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		for i := 0; i < 10; i++ {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, float64(i), 1, float64(i+1),
				time.Now().Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		page1, err := archive.List(context.Background(), QueryOptions{Limit: 3, Offset: 0})
		require.NoError(t, err)
		assert.Len(t, page1, 3)

		page2, err := archive.List(context.Background(), QueryOptions{Limit: 3, Offset: 3})
		require.NoError(t, err)
		assert.Len(t, page2, 3)

		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("sorts by timestamp descending by default", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		now := time.Now()
		for i := 0; i < 3; i++ {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, 1, 1, 2,
				now.Add(time.Duration(i)*time.Hour)))
			require.NoError(t, err)
		}

		records, err := archive.List(context.Background(), QueryOptions{})

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
		assert.True(t, records[1].Timestamp.After(records[2].Timestamp))
	})

	t.Run("counts matching records", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		ops := []calc.Kind{calc.Add, calc.Add, calc.Divide}
		for _, op := range ops {
			_, err := archive.Add(context.Background(), testCalculation(op, 4, 2, 2, time.Now()))
			require.NoError(t, err)
		}

		count, err := archive.Count(context.Background(), QueryOptions{Operation: calc.Add})

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func runArchivePruneTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("prunes records older than duration", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		now := time.Now()
		times := []time.Time{
			now.Add(-48 * time.Hour),
			now.Add(-47 * time.Hour),
			now.Add(-12 * time.Hour),
			now,
		}
		for _, ts := range times {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, 1, 1, 2, ts))
			require.NoError(t, err)
		}

		result, err := archive.Prune(context.Background(), PruneOptions{OlderThan: 24 * time.Hour})

		require.NoError(t, err)
		assert.Equal(t, int64(2), result.DeletedCount)

		remaining, err := archive.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("prunes keeping last N records", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		for i := 0; i < 10; i++ {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, float64(i), 1, float64(i+1),
				time.Now().Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		result, err := archive.Prune(context.Background(), PruneOptions{KeepLast: 5})

		require.NoError(t, err)
		assert.Equal(t, int64(5), result.DeletedCount)

		remaining, err := archive.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, remaining, 5)
	})
}

func runArchiveStatsTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("returns correct statistics", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		ops := []calc.Kind{calc.Add, calc.Add, calc.Add, calc.Divide, calc.Power}
		for i, op := range ops {
			_, err := archive.Add(context.Background(), testCalculation(op, 4, 2, 2,
				time.Now().Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		stats, err := archive.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.TotalEntries)
		assert.Equal(t, int64(3), stats.OperationCounts[calc.Add])
		assert.Equal(t, int64(1), stats.OperationCounts[calc.Divide])
		assert.True(t, stats.NewestEntry.After(stats.OldestEntry))
	})

	t.Run("returns empty stats for empty archive", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		stats, err := archive.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalEntries)
	})
}

func runArchiveClearTests(t *testing.T, newArchive func() (Archive, func())) {
	t.Run("clear removes all records", func(t *testing.T) {
		archive, cleanup := newArchive()
		defer cleanup()

		for i := 0; i < 5; i++ {
			_, err := archive.Add(context.Background(), testCalculation(calc.Add, 1, 1, 2, time.Now()))
			require.NoError(t, err)
		}

		err := archive.Clear(context.Background())
		require.NoError(t, err)

		records, err := archive.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, records, 0)
	})
}
