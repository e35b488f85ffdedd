package main

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/platform/config"
	"github.com/SscSPs/neuron_ledger/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Example:   "  neuronctl migrate up\n  neuronctl migrate down --source file://migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("source", "", "Migration source URL (defaults to MIGRATIONS_PATH)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("PGSQL_URL must be set to run migrations")
	}

	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = cfg.MigrationsPath
	}
	return database.RunMigrations(cfg.DatabaseURL, source, database.MigrationDirection(args[0]))
}
