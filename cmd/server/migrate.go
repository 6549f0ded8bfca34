package main

import (
	"github.com/rongwang/stonks/internal/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := config.RunMigrations(cfg); err != nil {
				return err
			}
			logger.Info("Database %s is up to date", cfg.Database.Driver)
			return nil
		},
	}
}
