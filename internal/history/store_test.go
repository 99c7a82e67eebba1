package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/tally/internal/calc"
)

func newCalc(i int) calc.Calculation {
	return calc.Calculation{
		OperandA:  float64(i),
		OperandB:  1,
		Operation: calc.Add,
		Result:    float64(i + 1),
		Timestamp: time.Unix(int64(i), 0),
	}
}

func TestStoreRecord(t *testing.T) {
	t.Run("appends in order", func(t *testing.T) {
		store := New(10)

		for i := 0; i < 3; i++ {
			store.Record(newCalc(i))
		}

		entries := store.List()
		require.Len(t, entries, 3)
		for i, c := range entries {
			assert.Equal(t, float64(i), c.OperandA)
		}
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		store := New(5)

		for i := 0; i < 50; i++ {
			store.Record(newCalc(i))
			assert.LessOrEqual(t, store.Len(), 5)
		}
	})

	t.Run("evicts oldest first", func(t *testing.T) {
		store := New(3)

		for i := 0; i < 5; i++ {
			store.Record(newCalc(i))
		}

		entries := store.List()
		require.Len(t, entries, 3)
		assert.Equal(t, float64(2), entries[0].OperandA)
		assert.Equal(t, float64(4), entries[2].OperandA)
	})

	t.Run("list returns a copy", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))

		entries := store.List()
		entries[0].OperandA = 99

		assert.Equal(t, float64(0), store.List()[0].OperandA)
	})
}

func TestStoreUndoRedo(t *testing.T) {
	t.Run("undo with empty stack fails", func(t *testing.T) {
		store := New(10)

		_, err := store.Undo()
		assert.ErrorIs(t, err, ErrNothingToUndo)
	})

	t.Run("redo with empty stack fails", func(t *testing.T) {
		store := New(10)

		_, err := store.Redo()
		assert.ErrorIs(t, err, ErrNothingToRedo)
	})

	t.Run("undo restores pre-record state", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))
		store.Record(newCalc(1))

		n, err := store.Undo()
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		entries := store.List()
		require.Len(t, entries, 1)
		assert.Equal(t, float64(0), entries[0].OperandA)
	})

	t.Run("redo reverses undo", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))
		store.Record(newCalc(1))
		before := store.List()

		_, err := store.Undo()
		require.NoError(t, err)

		n, err := store.Redo()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, before, store.List())
	})

	t.Run("undo and redo are inverse over many steps", func(t *testing.T) {
		store := New(10)
		states := [][]calc.Calculation{store.List()}
		for i := 0; i < 5; i++ {
			store.Record(newCalc(i))
			states = append(states, store.List())
		}

		for i := 5; i > 0; i-- {
			_, err := store.Undo()
			require.NoError(t, err)
			assert.Equal(t, states[i-1], store.List())
		}

		for i := 1; i <= 5; i++ {
			_, err := store.Redo()
			require.NoError(t, err)
			assert.Equal(t, states[i], store.List())
		}
	})

	t.Run("record clears the redo stack", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0)) // A
		store.Record(newCalc(1)) // B

		_, err := store.Undo()
		require.NoError(t, err)
		assert.True(t, store.CanRedo())

		store.Record(newCalc(2)) // C invalidates the redo branch

		_, err = store.Redo()
		assert.ErrorIs(t, err, ErrNothingToRedo)
	})

	t.Run("undo crosses an eviction boundary", func(t *testing.T) {
		store := New(2)
		store.Record(newCalc(0))
		store.Record(newCalc(1))
		store.Record(newCalc(2)) // evicts 0

		n, err := store.Undo()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		entries := store.List()
		assert.Equal(t, float64(0), entries[0].OperandA)
		assert.Equal(t, float64(1), entries[1].OperandA)
	})
}

func TestStoreClear(t *testing.T) {
	t.Run("empties entries", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))
		store.Record(newCalc(1))

		store.Clear()

		assert.Equal(t, 0, store.Len())
	})

	t.Run("is undoable", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))
		store.Record(newCalc(1))
		before := store.List()

		store.Clear()

		n, err := store.Undo()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, before, store.List())
	})

	t.Run("invalidates the redo branch", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))
		_, err := store.Undo()
		require.NoError(t, err)

		store.Clear()

		_, err = store.Redo()
		assert.ErrorIs(t, err, ErrNothingToRedo)
	})
}

func TestStoreReplace(t *testing.T) {
	t.Run("swaps in loaded entries", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))

		n := store.Replace([]calc.Calculation{newCalc(5), newCalc(6)})

		assert.Equal(t, 2, n)
		assert.Equal(t, float64(5), store.List()[0].OperandA)
	})

	t.Run("keeps only the newest entries when over capacity", func(t *testing.T) {
		store := New(3)

		var entries []calc.Calculation
		for i := 0; i < 10; i++ {
			entries = append(entries, newCalc(i))
		}
		n := store.Replace(entries)

		assert.Equal(t, 3, n)
		assert.Equal(t, float64(7), store.List()[0].OperandA)
		assert.Equal(t, float64(9), store.List()[2].OperandA)
	})

	t.Run("does not touch the undo stack", func(t *testing.T) {
		store := New(10)
		store.Record(newCalc(0))

		store.Replace(nil)

		assert.True(t, store.CanUndo())
	})
}

func TestStoreAll(t *testing.T) {
	store := New(10)
	for i := 0; i < 3; i++ {
		store.Record(newCalc(i))
	}

	t.Run("yields entries oldest first", func(t *testing.T) {
		var got []float64
		for c := range store.All() {
			got = append(got, c.OperandA)
		}
		assert.Equal(t, []float64{0, 1, 2}, got)
	})

	t.Run("is restartable", func(t *testing.T) {
		seq := store.All()
		for range 2 {
			count := 0
			for range seq {
				count++
			}
			assert.Equal(t, 3, count)
		}
	})

	t.Run("supports early break", func(t *testing.T) {
		count := 0
		for range store.All() {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}

func TestStoreConcurrentRecord(t *testing.T) {
	store := New(50)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				store.Record(newCalc(g*100 + i))
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	assert.Equal(t, 50, store.Len())
}

func TestStoreDefaultCapacity(t *testing.T) {
	for _, size := range []int{0, -5} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			store := New(size)
			assert.Equal(t, DefaultMaxSize, store.MaxSize())
		})
	}
}
