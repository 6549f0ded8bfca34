package main

import (
	"github.com/rongwang/stonks/internal/config"
	"github.com/rongwang/stonks/internal/utils"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "stonks",
		Short:         "stonks is a multi-user personal ledger server",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "set the config file path")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newTokenCmd(opts))
	return rootCmd
}

func (o *rootOptions) load() (*config.Config, *utils.Logger, error) {
	cfg, err := config.LoadConfig(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
