package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/auth"
	"github.com/iho/smartlink/internal/infrastructure/config"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "API access tokens",
	}

	var (
		userID int64
		role   string
		ttl    time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if userID <= 0 {
				return fmt.Errorf("invalid --user-id %d", userID)
			}
			r := domain.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("invalid --role %q", role)
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).Generate(userID, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().Int64Var(&userID, "user-id", 0, "User the token authenticates")
	issue.Flags().StringVar(&role, "role", string(domain.RoleUser), "Role claim (user or admin)")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")

	cmd.AddCommand(issue)
	return cmd
}
