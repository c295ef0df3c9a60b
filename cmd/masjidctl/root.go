package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"masjid/internal/platform/config"
	"masjid/internal/platform/database"
	"masjid/internal/platform/logger"
)

// app is shared by every subcommand once the root pre-run has loaded config.
type app struct {
	cfg config.Config
	log *slog.Logger
}

func rootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "masjidctl",
		Short:         "Operator tooling for the mosque directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Log)
			return nil
		},
	}
	root.AddCommand(
		migrateCommand(a),
		seedCommand(a),
		tokenCommand(a),
	)
	return root
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	if a.cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return database.Open(ctx, database.Config{
		URL:          a.cfg.Database.URL,
		MaxOpenConns: 2,
	})
}
