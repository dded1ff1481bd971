// Command budget-sync replicates the local store into the configured
// destination in one shot, or applies the local migrations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budgetbook/internal/backend"
	"budgetbook/internal/config"
	"budgetbook/internal/log"
	"budgetbook/internal/storage"

	"github.com/spf13/cobra"
)

// errFailures makes the exit status reflect a partially failed run.
var errFailures = errors.New("sync finished with failures")

var (
	cfg     *config.Config
	logger  *log.Logger
	dbPath  string
	mapping string
)

var rootCmd = &cobra.Command{
	Use:   "budget-sync",
	Short: "Copy the local budget database into the remote store.",
	Long: `budget-sync replaces every table of the remote store with the rows of the
local SQLite database. Tables and columns are matched by name, with the
renames of the column mapping applied.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger = log.Setup(cfg.LogLevel, cfg.LogFormat, log.ComponentSync)
		if dbPath != "" {
			cfg.SQLiteDBPath = dbPath
		}
		if mapping != "" {
			cfg.SyncMappingFile = mapping
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one synchronization and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		defer repo.Close()

		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return err
		}
		syncer, err := backend.NewSynchronizer(repo, bcfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rep, err := syncer.SyncAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rep.Summary())
		if rep.HasFailures() {
			return errFailures
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the local database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := storage.RunMigrations(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", "path", cfg.SQLiteDBPath, "version", version)
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	runCmd.Flags().StringVar(&mapping, "mapping", "", "YAML column mapping file (overrides SYNC_MAPPING_FILE)")
	rootCmd.AddCommand(runCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
