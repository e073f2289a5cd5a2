package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/weatherreportd/internal/config"
	"github.com/chadmayfield/weatherreportd/internal/store"
)

var dryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if dryRun {
		slog.Info("dry run mode, showing pending migrations")
		return showPendingMigrations(cmd, cfg)
	}

	// Opening the store automatically runs migrations.
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	slog.Info("migrations complete", "driver", cfg.Storage.Driver)
	return nil
}

func showPendingMigrations(cmd *cobra.Command, cfg *config.Config) error {
	var driverName string
	switch cfg.Storage.Driver {
	case "sqlite":
		driverName = "sqlite"
	case "postgres":
		driverName = "pgx"
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	current, pending, err := store.MigrationStatus(db, cfg.Storage.Driver)
	if err != nil {
		return err
	}

	slog.Info("migration status", "current_version", current, "pending", len(pending), "driver", cfg.Storage.Driver)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "current version: %d\n", current)
	if len(pending) == 0 {
		fmt.Fprintln(out, "no pending migrations")
		return nil
	}
	for _, v := range pending {
		fmt.Fprintf(out, "pending: %05d\n", v)
	}
	return nil
}
