package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/export"
	"github.com/artpar/tally/internal/history"
)

// HistoryExportOptions holds options for the history export command.
type HistoryExportOptions struct {
	Format string
	Output string
	Limit  int
}

func newHistoryExportCommand(root *Options) *cobra.Command {
	opts := &HistoryExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived calculations to json, csv, or markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := export.NewRegistry()
			format := export.Format(strings.ToLower(opts.Format))
			if _, ok := registry.Get(format); !ok {
				return fmt.Errorf("%w: %q (available: %s)",
					export.ErrUnknownFormat, opts.Format, availableFormats(registry))
			}

			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			records, err := archive.List(context.Background(), history.QueryOptions{Limit: opts.Limit})
			if err != nil {
				return fmt.Errorf("failed to list archive: %w", err)
			}

			result, err := registry.Export(context.Background(), format, records)
			if err != nil {
				return err
			}

			if opts.Output == "" {
				_, err = cmd.OutOrStdout().Write(result.Content)
				return err
			}

			if err := os.WriteFile(opts.Output, result.Content, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d calculations to %s\n", len(records), opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Export format (json, csv, markdown)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum number of records (0 for all)")

	return cmd
}

func availableFormats(r *export.Registry) string {
	formats := r.ListFormats()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
