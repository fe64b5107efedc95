package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/school-timetable/internal/config"
	"github.com/example/school-timetable/internal/logging"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
	// loadConfig is swapped in tests.
	loadConfig func() (config.Config, error)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return (&app{stdout: stdout, stderr: stderr, loadConfig: config.Load}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timetable",
		Short:         "School timetable generator and editor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.generateCmd())
	return root
}

// execute runs the command tree with a context cancelled on SIGINT or SIGTERM.
func execute(root *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

func (a *app) newLogger(level slog.Level) *slog.Logger {
	return logging.New(a.stderr, level)
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := a.newLogger(cfg.LogLevel)

			storage, err := openStorage(cfg, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			if err := storage.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			status, err := storage.MigrationStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			fmt.Fprintf(a.stdout, "schema version %s (%d applied)\n", status.CurrentVersion, len(status.AppliedMigrations))
			return nil
		},
	}
}
