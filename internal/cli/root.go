// Package cli implements the tally command-line interface: the REPL
// and the non-interactive subcommands around it.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/calculator"
	"github.com/artpar/tally/internal/config"
	"github.com/artpar/tally/internal/history/csvfile"
	"github.com/artpar/tally/internal/history/sqlite"
)

// Options holds flags shared by all commands.
type Options struct {
	ConfigPath string
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".tally", "config.yaml")
}

// NewRootCommand creates the root command. Running tally with no
// subcommand starts the REPL.
func NewRootCommand(version string) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:     "tally",
		Short:   "Tally - an interactive calculator with undoable history",
		Long:    "Tally is a command-line calculator that keeps a bounded, undoable history\nof calculations, persists it to CSV, and archives every calculation to SQLite.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			return runREPL(cmd, cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", DefaultConfigPath(), "path to config file")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewOpsCommand())

	return cmd
}

// buildCalculator wires a Calculator with CSV persistence and the
// SQLite archive. The returned cleanup closes the archive.
func buildCalculator(cfg config.Config) (*calculator.Calculator, func(), error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, err
	}

	adapter := csvfile.New(cfg.HistoryFile, csvfile.WithPrecision(cfg.Precision))

	opts := []calculator.Option{calculator.WithPersistence(adapter)}
	cleanup := func() {}

	archive, err := sqlite.New(cfg.ArchiveFile)
	if err != nil {
		// The archive is best-effort; the calculator works without it.
		log.Warn().Err(err).Str("path", cfg.ArchiveFile).Msg("archive unavailable")
	} else {
		opts = append(opts, calculator.WithArchive(archive))
		cleanup = func() {
			if err := archive.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close archive")
			}
		}
	}

	return calculator.New(cfg, log.Logger, opts...), cleanup, nil
}

func runREPL(cmd *cobra.Command, cfg config.Config) error {
	calc, cleanup, err := buildCalculator(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up calculator: %w", err)
	}
	defer cleanup()

	repl := NewREPL(calc, cmd.InOrStdin(), cmd.OutOrStdout())
	repl.Run()
	return nil
}
