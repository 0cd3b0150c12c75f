package cmd

import (
	"fmt"

	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [--build]",
	Short: "Serve the site locally",
	Long: `Prepare the virtual environment and start the site generator's development
server. The server runs until interrupted with Ctrl-C.

With --build, the static site is generated before the server starts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		build, _ := cmd.Flags().GetBool("build")
		if err := d.orchestrator.Serve(cmd.Context(), build); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("Server stopped."))
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("build", false, "Build the site before serving")
	rootCmd.AddCommand(runCmd)
}
