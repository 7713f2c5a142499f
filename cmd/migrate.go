package cmd

import (
	"fmt"

	"auction-escrow/internal/journal"
	"auction-escrow/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the journal tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}

		db, err := journal.Open(appConfig.DatabaseDriver, appConfig.DatabaseURL)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := journal.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
		utils.Info("Journal migrated", map[string]any{"driver": appConfig.DatabaseDriver})
		return nil
	},
}
