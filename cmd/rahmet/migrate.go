package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/storage/postgres"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var (
		dsn       string
		upSteps   int
		downSteps int
	)

	openStore := func(cmd *cobra.Command) (*postgres.Store, error) {
		if dsn == "" {
			dsn = c.cfg.PostgresDSN
		}
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn is required: set --dsn or RAHMET_POSTGRES_DSN")
		}
		return postgres.Open(cmd.Context(), dsn)
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Миграции схемы чеков в Postgres",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres DSN (overrides postgres_dsn)")

	up := &cobra.Command{
		Use:   "up",
		Short: "Применить миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.MigrateUp(cmd.Context(), upSteps); err != nil {
				return err
			}
			return printMigrationVersion(c, cmd, store)
		},
	}
	up.Flags().IntVar(&upSteps, "steps", 0, "number of migrations to apply, 0 for all")

	down := &cobra.Command{
		Use:   "down",
		Short: "Откатить миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.MigrateDown(cmd.Context(), downSteps); err != nil {
				return err
			}
			return printMigrationVersion(c, cmd, store)
		},
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")

	ver := &cobra.Command{
		Use:   "version",
		Short: "Текущая версия схемы",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			return printMigrationVersion(c, cmd, store)
		},
	}

	cmd.AddCommand(up, down, ver)
	return cmd
}

func printMigrationVersion(c *cli, cmd *cobra.Command, store *postgres.Store) error {
	status, err := store.MigrationVersion(cmd.Context())
	if err != nil {
		return err
	}
	if !status.Applied {
		fmt.Fprintln(c.out, "schema version: none")
		return nil
	}
	fmt.Fprintf(c.out, "schema version: %d", status.Version)
	if status.Dirty {
		fmt.Fprint(c.out, " (dirty)")
	}
	fmt.Fprintln(c.out)
	return nil
}
