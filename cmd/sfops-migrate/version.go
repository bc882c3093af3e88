package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of sfops-migrate (overridden by ldflags at build time)
	Version = "1.0.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
	// Commit is the git revision the binary was built from (optional ldflag)
	Commit = ""
)

func newVersionCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			commit := resolveCommitHash()

			format, err := resolveFormat(flags)
			if err != nil {
				return err
			}
			if format != formatText {
				result := map[string]string{
					"version": Version,
					"build":   Build,
				}
				if commit != "" {
					result["commit"] = commit
				}
				if format == formatYAML {
					return outputYAML(out, result)
				}
				return outputJSON(out, result)
			}

			if commit != "" {
				_, err = fmt.Fprintf(out, "sfops-migrate version %s (%s: %s)\n", Version, Build, shortCommit(commit))
			} else {
				_, err = fmt.Fprintf(out, "sfops-migrate version %s (%s)\n", Version, Build)
			}
			return err
		},
	}
}

func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
