package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"masjid/internal/auth/token"
	"masjid/pkg/domain"
)

func tokenCommand(a *app) *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			signed, err := token.New(a.cfg.Auth.JWTSigningKey, a.cfg.Auth.JWTIssuer).
				GenerateAccessToken(domain.Principal{UserID: domain.UserID(userID), Role: r}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 1, "user id carried in the token")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAuthenticated), "authenticated, moderator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
