package main

import (
	"context"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/flxbl-io/sfops-migrator/internal/config"
	"github.com/flxbl-io/sfops-migrator/internal/debug"
	"github.com/flxbl-io/sfops-migrator/internal/github"
	"github.com/flxbl-io/sfops-migrator/internal/migrate"
	"github.com/flxbl-io/sfops-migrator/internal/telemetry"
)

// newGateway builds the GitHub-backed gateway for a resolved configuration.
func newGateway(cfg config.MigrationConfig) migrate.Gateway {
	client := github.NewClient(cfg.Token, cfg.Owner, cfg.Repo).
		WithBaseURL(cfg.APIURL).
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}).
		WithRetryPolicy(cfg.MaxRetries, nil)
	return telemetry.WrapGateway(client)
}

func runMigrate(cmd *cobra.Command, args []string, flags *cliFlags) error {
	cfg := config.Resolve(args)
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := resolveFormat(flags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := telemetry.Init(ctx, "sfops-migrate", Version); err != nil {
		WarnError("failed to initialize telemetry: %v", err)
	}
	defer telemetry.Shutdown(context.Background())

	if path := config.ConfigFileUsed(); path != "" {
		debug.Logf("sfops-migrate: using config %s\n", path)
	}
	debug.Logf("sfops-migrate: %s/%s via %s (token %s, cleanup=%v, dry-run=%v, retries=%d)\n",
		cfg.Owner, cfg.Repo, cfg.APIURL, config.MaskToken(cfg.Token), cfg.PerformCleanup, cfg.DryRun, cfg.MaxRetries)

	out := cmd.OutOrStdout()
	progress := out
	if format != formatText || debug.IsQuiet() {
		progress = io.Discard
	}

	m := migrate.New(newGateway(cfg), migrate.Options{
		Owner:          cfg.Owner,
		Repo:           cfg.Repo,
		PerformCleanup: cfg.PerformCleanup,
		DryRun:         cfg.DryRun,
	}, progress)

	summary, runErr := m.Run(ctx)
	if summary != nil && (format != formatText || (runErr == nil && !debug.IsQuiet())) {
		if err := writeSummary(out, summary, format); err != nil && runErr == nil {
			return err
		}
	}
	return runErr
}
