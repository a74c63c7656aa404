package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suteetoe/repurpose/pkg/database"
	"go.uber.org/zap"
)

// migrateCmd applies the schema and exits
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Migrations completed", zap.Int("tables", len(database.Models())))
	return nil
}
