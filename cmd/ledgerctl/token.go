package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"accounting/internal/auth"
)

func newTokenCmd(e *env) *cobra.Command {
	var (
		userID string
		roles  []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed access token for the API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			for _, role := range roles {
				if role != auth.RoleAccountant && role != auth.RoleViewer {
					return fmt.Errorf("unknown role %q", role)
				}
			}
			if ttl <= 0 {
				ttl = e.cfg.TokenTTL
			}
			token, err := auth.GenerateToken(e.cfg.JWTSecret, userID, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleViewer}, "roles to grant (accountant, viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to LEDGER_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
