package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/barysiuk/docsctl/internal/core"
	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the generated site, cache and virtual environment",
	Long: `Remove the site output directory, the generator cache and the virtual
environment. Directories that do not exist are skipped. Clean never fails:
a directory that cannot be removed is reported as a warning.

A configured directory that resolves to the project root or to a path
outside the project is never removed; clean warns and leaves it in place.

If .docsctl.json or mkdocs.yml cannot be read, clean warns and falls back
to the default directories (site, .cache, .venv).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}

		cfg, err := core.Load(dir)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning("loading configuration: "+err.Error()+"; using defaults"))
			abs, absErr := filepath.Abs(dir)
			if absErr != nil {
				return fmt.Errorf("resolving project directory: %w", absErr)
			}
			cfg = core.Default(abs)
		}

		d, err := wireDeps(cmd, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range d.orchestrator.Clean() {
			switch {
			case r.Err != nil:
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning(r.Err.Error()))
			case r.Removed:
				fmt.Fprintf(out, "Removed: %s\n", r.Path)
			default:
				fmt.Fprintln(out, ui.Muted("Already clean: "+r.Path))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
