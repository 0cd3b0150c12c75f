package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/barysiuk/docsctl/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// logger is replaced with a development logger when --verbose is set.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "docsctl <command>",
	Short: "Build, serve and lint the curriculum documentation site",
	Long: `docsctl drives the documentation site for the learning curriculum.

It keeps a Python virtual environment with the site generator and theme
installed from requirements.txt, builds or serves the site, lints the
content with a pinned linter release, and cleans up generated files.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	// The root only runs when no subcommand matched.
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Usage()
		if len(args) == 0 {
			return &core.Error{Kind: core.KindUnknownCommand, Detail: "no command given"}
		}
		return &core.Error{Kind: core.KindUnknownCommand, Subject: args[0]}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docsctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every step and external command to stderr")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		_ = cmd.Usage()
		return &core.Error{Kind: core.KindUnknownFlag, Subject: cmd.Name(), Err: err}
	})
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, which stops a running server cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
