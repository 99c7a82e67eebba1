package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/config"
	"github.com/artpar/tally/internal/history"
	"github.com/artpar/tally/internal/history/sqlite"
)

// HistoryListOptions holds options for the history list command.
type HistoryListOptions struct {
	Operation string
	Limit     int
}

// HistoryPruneOptions holds options for the history prune command.
type HistoryPruneOptions struct {
	OlderThan time.Duration
	KeepLast  int
}

// NewHistoryCommand creates the history command group, which queries
// the long-term archive.
func NewHistoryCommand(root *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the calculation archive",
	}

	cmd.AddCommand(newHistoryListCommand(root))
	cmd.AddCommand(newHistoryStatsCommand(root))
	cmd.AddCommand(newHistoryPruneCommand(root))
	cmd.AddCommand(newHistoryClearCommand(root))
	cmd.AddCommand(newHistoryBrowseCommand(root))
	cmd.AddCommand(newHistoryExportCommand(root))

	return cmd
}

// openArchive loads config and opens the SQLite archive.
func openArchive(root *Options) (history.Archive, config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, config.Config{}, err
	}

	archive, err := sqlite.New(cfg.ArchiveFile)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to open archive: %w", err)
	}
	return archive, cfg, nil
}

func newHistoryListCommand(root *Options) *cobra.Command {
	opts := &HistoryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived calculations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			query := history.QueryOptions{Limit: opts.Limit}
			if opts.Operation != "" {
				kind, err := calc.Resolve(opts.Operation)
				if err != nil {
					return err
				}
				query.Operation = kind
			}

			records, err := archive.List(context.Background(), query)
			if err != nil {
				return fmt.Errorf("failed to list archive: %w", err)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived calculations")
				return nil
			}

			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), r.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Operation, "operation", "", "Filter by operation kind")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of records")

	return cmd
}

func newHistoryStatsCommand(root *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			stats, err := archive.Stats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to read archive stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total calculations: %d\n", stats.TotalEntries)
			if stats.TotalEntries > 0 {
				fmt.Fprintf(out, "Oldest: %s\n", stats.OldestEntry.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Newest: %s\n", stats.NewestEntry.Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out, "By operation:")
				for _, k := range calc.Kinds() {
					if n := stats.OperationCounts[k]; n > 0 {
						fmt.Fprintf(out, "  %-12s %d\n", k, n)
					}
				}
			}
			return nil
		},
	}
}

func newHistoryPruneCommand(root *Options) *cobra.Command {
	opts := &HistoryPruneOptions{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old archived calculations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OlderThan == 0 && opts.KeepLast == 0 {
				return fmt.Errorf("specify --older-than or --keep-last")
			}

			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			result, err := archive.Prune(context.Background(), history.PruneOptions{
				OlderThan: opts.OlderThan,
				KeepLast:  opts.KeepLast,
			})
			if err != nil {
				return fmt.Errorf("failed to prune archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d archived calculations\n", result.DeletedCount)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.OlderThan, "older-than", 0, "Delete records older than this duration (e.g. 720h)")
	cmd.Flags().IntVar(&opts.KeepLast, "keep-last", 0, "Keep only the most recent N records")

	return cmd
}

func newHistoryClearCommand(root *Options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all archived calculations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the archive without --yes")
			}

			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			if err := archive.Clear(context.Background()); err != nil {
				return fmt.Errorf("failed to clear archive: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Archive cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the archive")

	return cmd
}
