// Command sfops-migrate upgrades a repository's legacy *_DEVSBX variables
// into CONTEXT_<issue> records.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flxbl-io/sfops-migrator/internal/config"
	"github.com/flxbl-io/sfops-migrator/internal/debug"
	"github.com/flxbl-io/sfops-migrator/internal/ui"
)

// cliFlags holds the values bound to command-line flags.
type cliFlags struct {
	noCleanup  bool
	dryRun     bool
	apiURL     string
	jsonOutput bool
	format     string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "sfops-migrate <owner> <repo> [token]",
		Short: "Upgrade legacy *_DEVSBX variables to CONTEXT_ records",
		Long: `Upgrade every *_DEVSBX repository variable into a CONTEXT_<issue> record
enriched with the source sandbox, retention and user email from its request issue.

The token may be passed as the third argument or configured via:
  github.token / SFOPS_GITHUB_TOKEN / GITHUB_TOKEN

Other settings (config.yaml in .sfops/ or the user config dir, or SFOPS_* env):
  github.api-url      GitHub API base URL (default: https://api.github.com)
  migrate.cleanup     annotate issues and delete legacy variables (default: true)
  migrate.dry-run     read everything, write nothing
  http.timeout        per-request timeout (default: 30s)
  http.max-retries    retries on rate limiting and 5xx (default: 3)`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Initialize(); err != nil {
				return err
			}
			applyViperOverrides(cmd, flags)
			debug.SetVerbose(config.GetBool(config.KeyVerbose))
			debug.SetQuiet(config.GetBool(config.KeyQuiet))
			ui.ConfigureColor()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, flags)
		},
	}

	rootCmd.Flags().BoolVar(&flags.noCleanup, "no-cleanup", false, "Keep legacy variables and leave request issues untouched")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be migrated without writing anything")
	rootCmd.Flags().StringVar(&flags.apiURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Output in JSON format (same as --format json)")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", formatText, "Summary format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.AddCommand(newVersionCmd(flags))
	return rootCmd
}

// applyViperOverrides lets explicitly set flags win over config and env.
func applyViperOverrides(cmd *cobra.Command, flags *cliFlags) {
	if cmd.Flags().Changed("no-cleanup") {
		config.Set(config.KeyCleanup, !flags.noCleanup)
	}
	if cmd.Flags().Changed("dry-run") {
		config.Set(config.KeyDryRun, flags.dryRun)
	}
	if cmd.Flags().Changed("api-url") {
		config.Set(config.KeyGitHubAPIURL, flags.apiURL)
	}
	if cmd.Flags().Changed("verbose") {
		config.Set(config.KeyVerbose, flags.verbose)
	}
	if cmd.Flags().Changed("quiet") {
		config.Set(config.KeyQuiet, flags.quiet)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		FatalError("%v", err)
	}
}
