package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/guildqueue/internal/auth"
)

func tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an admin API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := fromCmd(cmd)
			if !c.cfg.Admin.Enabled() {
				return errors.New("admin.jwt_secret is not configured")
			}

			m := auth.NewJWTManager(c.cfg.Admin.JWTSecret, c.cfg.Admin.JWTIssuer, c.cfg.Admin.TokenTTL)
			token, err := m.Issue(args[0])
			if err != nil {
				return err
			}

			c.logger.Info("admin token issued",
				slog.String("subject", args[0]),
				slog.Duration("ttl", c.cfg.Admin.TokenTTL),
			)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
