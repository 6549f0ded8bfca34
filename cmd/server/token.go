package main

import (
	"fmt"
	"time"

	"github.com/rongwang/stonks/internal/api"
	"github.com/rongwang/stonks/internal/config"
	"github.com/rongwang/stonks/internal/models"
	"github.com/spf13/cobra"
)

// token issues bearer tokens for development; user management lives elsewhere.
func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := models.ParseID(user)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(opts.cfgFile)
			if err != nil {
				return err
			}
			token, err := api.IssueToken([]byte(cfg.Auth.JWTSecret), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "unsigned decimal user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
