package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/calc"
)

// NewOpsCommand creates the ops command, which lists the supported
// operations.
func NewOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List supported operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range calc.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
