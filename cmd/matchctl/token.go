package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	var adminID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}

			auth := authsvc.NewService(
				authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
				access.NewAllowlist(cfg.Bot.AdminIDs),
			)
			token, err := auth.IssueAdminToken(adminID)
			if err != nil {
				return fmt.Errorf("issue token for %d: %w", adminID, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", token.AccessExpires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Int64Var(&adminID, "admin-id", 0, "telegram id of an admin from bot.admin_ids")
	_ = cmd.MarkFlagRequired("admin-id")
	return cmd
}
