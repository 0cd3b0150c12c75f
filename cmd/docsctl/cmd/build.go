package cmd

import (
	"fmt"

	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site",
	Long: `Create the virtual environment if needed, install requirements.txt into it,
and generate the static site into the site directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		if err := d.orchestrator.Build(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Site built in "+d.config.Path(d.config.SiteDir)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
