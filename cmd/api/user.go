// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	pgstore "github.com/taibuivan/lexica/internal/platform/postgres"
	"github.com/taibuivan/lexica/internal/platform/sec"
	"github.com/taibuivan/lexica/internal/users/auth"
)

func userCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	userCmd.AddCommand(userCreateCommand())
	return userCmd
}

func userCreateCommand() *cobra.Command {
	var (
		input auth.RegisterInput
		role  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account without going through the registration form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
			defer cancel()

			pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			// Account creation never signs a token, so no key material is loaded.
			service := auth.NewService(auth.NewAccountRepository(pool), nil, log)

			account, err := service.Create(ctx, input, sec.UserRole(role))
			if err != nil {
				return err
			}

			log.Info("account_bootstrapped", slog.String("account_id", account.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", account.Username, account.ID, account.Role)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input.Username, "username", "", "Login name")
	flags.StringVar(&input.Email, "email", "", "Email address")
	flags.StringVar(&input.Password, "password", "", "Initial password")
	flags.StringVar(&input.DisplayName, "display-name", "", "Name shown in the navigation bar")
	flags.StringVar(&role, "role", string(sec.RoleAdmin), "Account role (admin or member)")

	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
