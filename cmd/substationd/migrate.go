package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"substation-maintenance/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			gormDB, err := db.Open(&cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			if err := db.Migrate(gormDB, log); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
