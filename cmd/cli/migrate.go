package main

import (
	"github.com/spf13/cobra"

	"github.com/iho/smartlink/internal/infrastructure/config"
	"github.com/iho/smartlink/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator()
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator()
			if err != nil {
				return err
			}
			return m.Down(steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func newMigrator() (*postgres.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, newLogger(cfg)), nil
}
