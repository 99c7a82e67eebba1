package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artpar/tally/internal/history"
)

// JSONExporter renders records as an indented JSON array.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Name() string {
	return "JSON document"
}

func (e *JSONExporter) Format() Format {
	return FormatJSON
}

func (e *JSONExporter) FileExtension() string {
	return ".json"
}

func (e *JSONExporter) Export(ctx context.Context, records []history.Record) ([]byte, error) {
	if records == nil {
		records = []history.Record{}
	}
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return append(content, '\n'), nil
}
