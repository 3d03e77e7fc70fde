// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/lexica/internal/platform/migration"
)

func migrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, log, err := setup()
				if err != nil {
					return err
				}
				return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, log, err := setup()
				if err != nil {
					return err
				}
				return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, log)
			},
		},
	)

	return migrateCmd
}
