package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/config"
	"github.com/Vasu1712/soundboard-backend/internal/models"
)

// newTokenCmd signs a session token with the configured secret, for local
// testing against a server running in jwt mode.
func newTokenCmd(v *viper.Viper) *cobra.Command {
	var (
		subject string
		name    string
		role    string
		picture string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			secret := v.GetString(config.KeyAuthJWTSecret)
			if secret == "" {
				return errors.Errorf("%s is required", config.KeyAuthJWTSecret)
			}
			if subject == "" {
				return errors.New("--subject is required")
			}
			if models.ParseRole(role) == models.RoleUnknown {
				return errors.Errorf("unknown role %q", role)
			}

			now := time.Now()
			token, err := auth.NewJWTAuthenticator(secret).IssueToken(auth.SessionClaims{
				Name:    name,
				Role:    role,
				Picture: picture,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   subject,
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			})
			if err != nil {
				return errors.Wrap(err, "signing token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&subject, "subject", "", "user id carried as the token subject")
	flags.StringVar(&name, "name", "", "display name")
	flags.StringVar(&role, "role", string(models.RoleContributor), "site role")
	flags.StringVar(&picture, "picture", "", "avatar URL")
	flags.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flags.String("jwt-secret", "", "signing secret")
	cobra.CheckErr(v.BindPFlag(config.KeyAuthJWTSecret, flags.Lookup("jwt-secret")))
	return cmd
}
