package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/artpar/tally/internal/history"
)

// CSVExporter renders records as CSV with a header row.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Name() string {
	return "CSV document"
}

func (e *CSVExporter) Format() Format {
	return FormatCSV
}

func (e *CSVExporter) FileExtension() string {
	return ".csv"
}

func (e *CSVExporter) Export(ctx context.Context, records []history.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "operand_a", "operand_b", "operation", "result", "timestamp"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	for _, r := range records {
		row := []string{
			r.ID,
			strconv.FormatFloat(r.OperandA, 'g', -1, 64),
			strconv.FormatFloat(r.OperandB, 'g', -1, 64),
			string(r.Operation),
			strconv.FormatFloat(r.Result, 'g', -1, 64),
			r.Timestamp.Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}
