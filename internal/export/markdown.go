package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/tally/internal/history"
)

// MarkdownExporter renders records as a Markdown table.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

func (e *MarkdownExporter) Name() string {
	return "Markdown table"
}

func (e *MarkdownExporter) Format() Format {
	return FormatMarkdown
}

func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func (e *MarkdownExporter) Export(ctx context.Context, records []history.Record) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("| Timestamp | Operation | A | B | Result |\n")
	sb.WriteString("|---|---|---|---|---|\n")

	for _, r := range records {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Operation,
			strconv.FormatFloat(r.OperandA, 'g', -1, 64),
			strconv.FormatFloat(r.OperandB, 'g', -1, 64),
			strconv.FormatFloat(r.Result, 'g', -1, 64),
		))
	}

	return []byte(sb.String()), nil
}
