// Package csvfile persists calculation history to a CSV file.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/artpar/tally/internal/calc"
)

// Common errors
var (
	ErrCorruptHistory = errors.New("corrupt history file")
)

// DefaultPrecision is the number of decimal digits written when no
// precision option is given.
const DefaultPrecision = 10

// header is the fixed column order of the history file.
var header = []string{"operand_a", "operand_b", "operation", "result", "timestamp"}

// Adapter reads and writes calculation history as CSV. The format is
// one header row followed by one row per calculation, with floats
// canonicalized to the configured decimal precision and timestamps in
// RFC 3339 form. The round-trip is lossy up to that precision.
type Adapter struct {
	path      string
	precision int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPrecision sets the decimal precision used when writing floats.
func WithPrecision(digits int) Option {
	return func(a *Adapter) {
		if digits >= 0 {
			a.precision = digits
		}
	}
}

// New creates an Adapter writing to the given path.
func New(path string, opts ...Option) *Adapter {
	a := &Adapter{
		path:      path,
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Path returns the file path this adapter reads and writes.
func (a *Adapter) Path() string {
	return a.path
}

// Save writes all entries to the history file, creating the parent
// directory if needed. An existing file is replaced.
func (a *Adapter) Save(entries []calc.Calculation) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}

	for _, c := range entries {
		row := []string{
			a.formatFloat(c.OperandA),
			a.formatFloat(c.OperandB),
			string(c.Operation),
			a.formatFloat(c.Result),
			c.Timestamp.Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush history file: %w", err)
	}

	return f.Close()
}

// Load reads all entries from the history file, oldest first. A
// missing file is not an error and yields no entries. Any malformed
// row aborts the whole load; the store is never partially hydrated.
func (a *Adapter) Load() ([]calc.Calculation, error) {
	f, err := os.Open(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	if !equalHeader(rows[0]) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrCorruptHistory, rows[0])
	}

	entries := make([]calc.Calculation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		c, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorruptHistory, i+2, err)
		}
		entries = append(entries, c)
	}

	return entries, nil
}

func (a *Adapter) formatFloat(v float64) string {
	return strconv.FormatFloat(calc.Round(v, a.precision), 'g', -1, 64)
}

func parseRow(row []string) (calc.Calculation, error) {
	if len(row) != len(header) {
		return calc.Calculation{}, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	operandA, err := strconv.ParseFloat(row[0], 64)
	if err != nil {
		return calc.Calculation{}, fmt.Errorf("bad operand_a %q", row[0])
	}

	operandB, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return calc.Calculation{}, fmt.Errorf("bad operand_b %q", row[1])
	}

	kind, err := calc.Resolve(row[2])
	if err != nil {
		return calc.Calculation{}, fmt.Errorf("bad operation %q", row[2])
	}

	result, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return calc.Calculation{}, fmt.Errorf("bad result %q", row[3])
	}

	ts, err := time.Parse(time.RFC3339Nano, row[4])
	if err != nil {
		return calc.Calculation{}, fmt.Errorf("bad timestamp %q", row[4])
	}

	return calc.Calculation{
		OperandA:  operandA,
		OperandB:  operandB,
		Operation: kind,
		Result:    result,
		Timestamp: ts,
	}, nil
}

func equalHeader(row []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i := range header {
		if row[i] != header[i] {
			return false
		}
	}
	return true
}
