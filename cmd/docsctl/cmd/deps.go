package cmd

import (
	"fmt"
	"os"

	"github.com/barysiuk/docsctl/internal/core"
	"github.com/barysiuk/docsctl/internal/ui"
	"github.com/spf13/cobra"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	config       *core.Config
	orchestrator *core.Orchestrator
}

// newDeps loads the configuration once and wires the components that the
// workflows share. Called lazily by commands that need them.
func newDeps(cmd *cobra.Command) (*deps, error) {
	dir, err := resolveTargetDir(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := core.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return wireDeps(cmd, cfg)
}

// wireDeps builds the shared components for an already loaded configuration.
func wireDeps(cmd *cobra.Command, cfg *core.Config) (*deps, error) {
	runner := core.NewExecRunner(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	transports, err := core.NewTransports(cfg.Transports, runner, logger)
	if err != nil {
		return nil, err
	}
	locator := core.NewLocator(cfg, transports, logger)

	orch := core.NewOrchestrator(cfg, runner, locator, logger)
	out := cmd.OutOrStdout()
	orch.OnStep = func(title string) {
		fmt.Fprintln(out, ui.Step(title))
	}

	return &deps{
		config:       cfg,
		orchestrator: orch,
	}, nil
}

// resolveTargetDir resolves the --dir flag or falls back to cwd.
func resolveTargetDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}
