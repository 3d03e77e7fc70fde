// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Lexica server.
//
// # Commands
//
//   - serve (default): run migrations and start the HTTP server.
//   - migrate up|down: apply or roll back the SQL migrations.
//   - user create: bootstrap an account, typically the first admin.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/lexica/internal/platform/config"
	"github.com/taibuivan/lexica/internal/platform/constants"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCommand builds the command tree. Running the binary without a
// subcommand serves HTTP.
func rootCommand() *cobra.Command {
	serveCmd := serveCommand()

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Lexica corpus registration server",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          serveCmd.RunE,
	}

	rootCmd.AddCommand(serveCmd, migrateCommand(), userCommand())
	return rootCmd
}

// setup loads configuration and returns the JSON logger every command uses.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, newLogger(false), err
	}

	log := newLogger(cfg.Debug)
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)
	return cfg, log, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}
