package main

import (
	"fmt"
	"strconv"

	"github.com/nikolayk812/cartstore-demo/internal/config"
	"github.com/nikolayk812/cartstore-demo/internal/migrations"
	"github.com/spf13/cobra"
)

func (a *app) newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the cart database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDSN(a.cfg); err != nil {
				return err
			}
			return migrations.Up(cmd.Context(), a.cfg.Database.DSN, a.logger)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid down steps %q: %w", args[0], err)
				}
				steps = n
			}

			if err := requireDSN(a.cfg); err != nil {
				return err
			}
			return migrations.Down(cmd.Context(), a.cfg.Database.DSN, steps, a.logger)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)

	return migrateCmd
}

func requireDSN(cfg config.Config) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database dsn is empty, set database.dsn or %s", config.EnvDatabaseDSN)
	}
	return nil
}
