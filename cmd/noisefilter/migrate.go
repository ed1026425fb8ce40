package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-filter/internal/infrastructure/database"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Apply or roll back the SQL migrations in ./migrations against the database
configured by the DB_* environment variables.`,
	}

	cmd.AddCommand(newMigrateDirectionCmd(root, "up", "Apply pending migrations", migrate.Up))
	cmd.AddCommand(newMigrateDirectionCmd(root, "down", "Roll back applied migrations", migrate.Down))

	return cmd
}

func newMigrateDirectionCmd(root *rootOptions, use, short string, dir migrate.MigrationDirection) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			n, err := database.Migrate(db, dir, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations (%s)\n", n, use)
			return nil
		},
	}

	defaultMax := 0
	if dir == migrate.Down {
		defaultMax = 1
	}
	cmd.Flags().IntVar(&limit, "max", defaultMax, "Maximum number of migrations to run (0 = all)")

	return cmd
}
