package export

import (
	"context"
	"errors"

	"github.com/artpar/tally/internal/history"
)

// Common errors
var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrExportFailed  = errors.New("export failed")
)

// Format represents a supported export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Exporter defines the interface for rendering archive records into an
// external format.
type Exporter interface {
	// Name returns the name of this exporter.
	Name() string

	// Format returns the format this exporter produces.
	Format() Format

	// FileExtension returns the file extension for exported files.
	FileExtension() string

	// Export renders the records to the target format.
	Export(ctx context.Context, records []history.Record) ([]byte, error)
}

// Result contains the result of an export operation.
type Result struct {
	Content       []byte
	Format        Format
	FileExtension string
}

// Registry holds all registered exporters.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry creates a registry with all built-in exporters registered.
func NewRegistry() *Registry {
	r := &Registry{
		exporters: make(map[Format]Exporter),
	}
	r.Register(NewJSONExporter())
	r.Register(NewCSVExporter())
	r.Register(NewMarkdownExporter())
	return r
}

// Register adds an exporter to the registry.
func (r *Registry) Register(exp Exporter) {
	r.exporters[exp.Format()] = exp
}

// Get returns an exporter by format.
func (r *Registry) Get(format Format) (Exporter, bool) {
	exp, ok := r.exporters[format]
	return exp, ok
}

// Export renders the records using the specified format.
func (r *Registry) Export(ctx context.Context, format Format, records []history.Record) (*Result, error) {
	exp, ok := r.exporters[format]
	if !ok {
		return nil, ErrUnknownFormat
	}

	content, err := exp.Export(ctx, records)
	if err != nil {
		return nil, err
	}

	return &Result{
		Content:       content,
		Format:        format,
		FileExtension: exp.FileExtension(),
	}, nil
}

// ListFormats returns all registered formats.
func (r *Registry) ListFormats() []Format {
	formats := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	return formats
}
