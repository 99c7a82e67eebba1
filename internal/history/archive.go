package history

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/tally/internal/calc"
)

// Archive errors
var (
	ErrArchiveClosed = errors.New("archive is closed")
	ErrNotFound      = errors.New("archived calculation not found")
)

// Record is a calculation as stored in an archive.
type Record struct {
	ID string `json:"id"`
	calc.Calculation
}

// Archive is long-term storage for every calculation ever performed.
// Unlike the in-memory Store it is unbounded and queryable; it is fed
// best-effort by an observer and never participates in undo/redo.
type Archive interface {
	// Add stores a calculation and returns its ID.
	Add(ctx context.Context, c calc.Calculation) (string, error)

	// Get retrieves a single archived calculation by ID.
	Get(ctx context.Context, id string) (Record, error)

	// List retrieves archived calculations matching the query options.
	List(ctx context.Context, opts QueryOptions) ([]Record, error)

	// Count returns the number of records matching the query options.
	Count(ctx context.Context, opts QueryOptions) (int64, error)

	// Prune removes old records based on the prune options.
	Prune(ctx context.Context, opts PruneOptions) (PruneResult, error)

	// Stats returns aggregate statistics about the archive.
	Stats(ctx context.Context) (Stats, error)

	// Clear removes all archived calculations.
	Clear(ctx context.Context) error

	// Close closes the archive and releases resources.
	Close() error
}

// QueryOptions specifies filters and pagination for archive queries.
type QueryOptions struct {
	// Filters
	Operation calc.Kind // Filter by operation kind
	After     time.Time // Only records after this time
	Before    time.Time // Only records before this time

	// Pagination
	Limit  int // Maximum number of results (0 = no limit)
	Offset int // Number of results to skip

	// Sorting
	SortOrder string // "asc" or "desc" (default: desc by timestamp)
}

// PruneOptions specifies criteria for pruning old archive records.
type PruneOptions struct {
	OlderThan time.Duration // Delete records older than this duration
	Before    time.Time     // Delete records before this time
	KeepLast  int           // Keep only the last N records
}

// PruneResult contains the result of a prune operation.
type PruneResult struct {
	DeletedCount int64 `json:"deleted_count"`
}

// Stats provides aggregate statistics about an archive.
type Stats struct {
	TotalEntries    int64               `json:"total_entries"`
	OperationCounts map[calc.Kind]int64 `json:"operation_counts"`
	OldestEntry     time.Time           `json:"oldest_entry"`
	NewestEntry     time.Time           `json:"newest_entry"`
}
