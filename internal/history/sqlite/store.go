// Package sqlite implements history.Archive on top of a SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/history"
)

// Archive implements history.Archive using SQLite. Timestamps are
// stored as Unix nanoseconds so ordering and round-trips are exact.
type Archive struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a new SQLite-backed archive at the given path.
func New(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	archive := &Archive{db: db}
	if err := archive.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return archive, nil
}

// NewInMemory creates a new in-memory archive (useful for testing).
func NewInMemory() (*Archive, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	archive := &Archive{db: db}
	if err := archive.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return archive, nil
}

// initialize creates the necessary tables and indexes.
func (a *Archive) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS calculations (
			id TEXT PRIMARY KEY,
			operand_a REAL NOT NULL,
			operand_b REAL NOT NULL,
			operation TEXT NOT NULL,
			result REAL NOT NULL,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_calculations_timestamp ON calculations(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_calculations_operation ON calculations(operation);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Add stores a calculation and returns its generated ID.
func (a *Archive) Add(ctx context.Context, c calc.Calculation) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return "", history.ErrArchiveClosed
	}

	id := uuid.New().String()

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO calculations (id, operand_a, operand_b, operation, result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, c.OperandA, c.OperandB, string(c.Operation), c.Result, c.Timestamp.UnixNano())

	if err != nil {
		return "", fmt.Errorf("failed to insert calculation: %w", err)
	}

	return id, nil
}

// Get retrieves a single archived calculation by ID.
func (a *Archive) Get(ctx context.Context, id string) (history.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return history.Record{}, history.ErrArchiveClosed
	}

	row := a.db.QueryRowContext(ctx, `
		SELECT id, operand_a, operand_b, operation, result, timestamp
		FROM calculations WHERE id = ?
	`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return history.Record{}, history.ErrNotFound
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("failed to get calculation: %w", err)
	}

	return record, nil
}

// List retrieves archived calculations matching the query options.
func (a *Archive) List(ctx context.Context, opts history.QueryOptions) ([]history.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, history.ErrArchiveClosed
	}

	query := `SELECT id, operand_a, operand_b, operation, result, timestamp FROM calculations`
	where, args := buildWhere(opts)
	query += where

	order := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		order = "ASC"
	}
	query += " ORDER BY timestamp " + order

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Count returns the number of records matching the query options.
func (a *Archive) Count(ctx context.Context, opts history.QueryOptions) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return 0, history.ErrArchiveClosed
	}

	query := `SELECT COUNT(*) FROM calculations`
	where, args := buildWhere(opts)
	query += where

	var count int64
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count calculations: %w", err)
	}

	return count, nil
}

// Prune removes old records based on the prune options.
func (a *Archive) Prune(ctx context.Context, opts history.PruneOptions) (history.PruneResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return history.PruneResult{}, history.ErrArchiveClosed
	}

	var conditions []string
	var args []any

	if opts.OlderThan > 0 {
		cutoff := time.Now().Add(-opts.OlderThan)
		conditions = append(conditions, "timestamp < ?")
		args = append(args, cutoff.UnixNano())
	}
	if !opts.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, opts.Before.UnixNano())
	}
	if opts.KeepLast > 0 {
		conditions = append(conditions, `id NOT IN (
			SELECT id FROM calculations ORDER BY timestamp DESC LIMIT ?
		)`)
		args = append(args, opts.KeepLast)
	}

	if len(conditions) == 0 {
		return history.PruneResult{}, nil
	}

	query := "DELETE FROM calculations WHERE " + strings.Join(conditions, " AND ")

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return history.PruneResult{}, fmt.Errorf("failed to prune calculations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return history.PruneResult{}, fmt.Errorf("failed to count pruned rows: %w", err)
	}

	return history.PruneResult{DeletedCount: deleted}, nil
}

// Stats returns aggregate statistics about the archive.
func (a *Archive) Stats(ctx context.Context) (history.Stats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return history.Stats{}, history.ErrArchiveClosed
	}

	stats := history.Stats{
		OperationCounts: make(map[calc.Kind]int64),
	}

	var oldest, newest sql.NullInt64
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(timestamp), MAX(timestamp) FROM calculations
	`).Scan(&stats.TotalEntries, &oldest, &newest)
	if err != nil {
		return history.Stats{}, fmt.Errorf("failed to read archive stats: %w", err)
	}

	if oldest.Valid {
		stats.OldestEntry = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		stats.NewestEntry = time.Unix(0, newest.Int64)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT operation, COUNT(*) FROM calculations GROUP BY operation
	`)
	if err != nil {
		return history.Stats{}, fmt.Errorf("failed to read operation counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op string
		var count int64
		if err := rows.Scan(&op, &count); err != nil {
			return history.Stats{}, fmt.Errorf("failed to scan operation count: %w", err)
		}
		stats.OperationCounts[calc.Kind(op)] = count
	}

	return stats, rows.Err()
}

// Clear removes all archived calculations.
func (a *Archive) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return history.ErrArchiveClosed
	}

	if _, err := a.db.ExecContext(ctx, `DELETE FROM calculations`); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}

	return nil
}

// Close closes the archive and releases resources.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	return a.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (history.Record, error) {
	var record history.Record
	var op string
	var ts int64

	if err := s.Scan(&record.ID, &record.OperandA, &record.OperandB, &op, &record.Result, &ts); err != nil {
		return history.Record{}, err
	}

	record.Operation = calc.Kind(op)
	record.Timestamp = time.Unix(0, ts)

	return record, nil
}

func buildWhere(opts history.QueryOptions) (string, []any) {
	var conditions []string
	var args []any

	if opts.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(opts.Operation))
	}
	if !opts.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, opts.After.UnixNano())
	}
	if !opts.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, opts.Before.UnixNano())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
