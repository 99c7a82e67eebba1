package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/history"
)

func TestArchiveConformance(t *testing.T) {
	history.RunArchiveTests(t, func() (history.Archive, func()) {
		archive, err := NewInMemory()
		require.NoError(t, err)
		return archive, func() {
			archive.Close()
		}
	})
}

func TestArchivePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	archive, err := New(path)
	require.NoError(t, err)

	c := calc.Calculation{
		OperandA:  5,
		OperandB:  3,
		Operation: calc.Add,
		Result:    8,
		Timestamp: time.Now(),
	}
	id, err := archive.Add(context.Background(), c)
	require.NoError(t, err)
	require.NoError(t, archive.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, calc.Add, got.Operation)
	assert.Equal(t, 8.0, got.Result)
}

func TestArchiveClosed(t *testing.T) {
	archive, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, archive.Close())

	_, err = archive.Add(context.Background(), calc.Calculation{Operation: calc.Add, Timestamp: time.Now()})
	assert.ErrorIs(t, err, history.ErrArchiveClosed)

	_, err = archive.List(context.Background(), history.QueryOptions{})
	assert.ErrorIs(t, err, history.ErrArchiveClosed)

	err = archive.Clear(context.Background())
	assert.ErrorIs(t, err, history.ErrArchiveClosed)
}

func TestArchiveCloseIsIdempotent(t *testing.T) {
	archive, err := NewInMemory()
	require.NoError(t, err)

	require.NoError(t, archive.Close())
	require.NoError(t, archive.Close())
}
