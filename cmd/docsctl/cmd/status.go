package cmd

import (
	"fmt"

	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the environment and tools",
	Long: `Show whether the virtual environment, requirements file, generated site,
site generator and linter are present. Nothing is installed or changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		st := d.orchestrator.Status()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Project: %s\n", st.ProjectDir)
		fmt.Fprintln(out, ui.Check("Environment", st.EnvPresent, st.EnvDir))
		fmt.Fprintln(out, ui.Check("Manifest", st.ManifestPresent, st.Manifest))
		fmt.Fprintln(out, ui.Check("Site", st.SitePresent, st.SiteDir))
		fmt.Fprintln(out, ui.Check("Generator", st.GeneratorPath != "", orName(st.GeneratorPath, st.Generator)))
		fmt.Fprintln(out, ui.Check("Linter", st.LinterPath != "", orName(st.LinterPath, st.Linter)))
		return nil
	},
}

// orName returns path if resolved, otherwise the bare tool name.
func orName(path, name string) string {
	if path != "" {
		return path
	}
	return name
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
