package cmd

import (
	"fmt"

	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint the repository content",
	Long: `Lint the whole repository with the pinned linter release.

The linter is looked up in the project tool directory (.tools) and then on
PATH. If it is missing, its release archive is downloaded with curl or wget,
unpacked, and the binary installed into .tools for later runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		if err := d.orchestrator.Lint(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Lint passed."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
