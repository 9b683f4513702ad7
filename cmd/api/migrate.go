// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/migration"
)

// newMigrateCmd creates the migrate command with its up and down subcommands.
func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadMigrationFile(opts.envFile)
			if err != nil {
				return err
			}

			cmd.Println("Running migrations...")
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false)); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadMigrationFile(opts.envFile)
			if err != nil {
				return err
			}

			cmd.Printf("Reverting %d migration(s)...\n", steps)
			if err := migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, newLogger(false)); err != nil {
				return err
			}
			cmd.Println("Revert completed successfully")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	cmd.AddCommand(down)

	return cmd
}
