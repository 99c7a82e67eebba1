package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/config"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	JSON bool
}

// NewEvalCommand creates the eval command for one-shot calculations.
func NewEvalCommand(root *Options) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval OPERATION A B",
		Short: "Evaluate a single calculation",
		Long:  "Evaluate a single calculation and record it in the history.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.ConfigPath)
			if err != nil {
				return err
			}
			return runEval(cmd, cfg, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output result as JSON")

	return cmd
}

func runEval(cmd *cobra.Command, cfg config.Config, args []string, opts *EvalOptions) error {
	a, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid operand: %q", args[1])
	}
	b, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid operand: %q", args[2])
	}

	calc, cleanup, err := buildCalculator(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up calculator: %w", err)
	}
	defer cleanup()

	// One-shot evaluations still participate in the persisted history.
	if _, err := calc.Load(); err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	result, err := calc.Compute(args[0], a, b)
	if err != nil {
		return err
	}

	if opts.JSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"operation": args[0],
			"operand_a": a,
			"operand_b": b,
			"result":    result,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(result, 'g', -1, 64))
	return nil
}
