package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-recurrence-engine/migrations"
)

func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Apply or roll back the embedded schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("up", migrations.Up)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("down", migrations.Down)
		},
	})

	return migrateCmd
}

func runMigration(direction string, step func(*sql.DB) (bool, error)) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	changed, err := step(db.DB)
	if err != nil {
		return err
	}

	if !changed {
		log.Info("no migrations to run")
		return nil
	}
	log.Infof("migration %s completed successfully", direction)
	return nil
}
