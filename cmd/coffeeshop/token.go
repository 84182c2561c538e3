package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

func newTokenCmd(c *cli) *cobra.Command {
	var tokenURL string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Fetch an access token with the client-credentials grant",
		Long: `Fetch an access token for AUTH_AUDIENCE from the identity provider using
AUTH0_CLIENT_ID and AUTH0_CLIENT_SECRET, and print it. Intended for manual testing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := c.cfg.Auth
			if auth.ClientID == "" || auth.ClientSecret == "" {
				return errors.New("AUTH0_CLIENT_ID and AUTH0_CLIENT_SECRET are required")
			}
			if tokenURL == "" {
				tokenURL = auth.TokenURL()
			}
			if tokenURL == "" {
				return errors.New("no token endpoint: set AUTH0_DOMAIN or pass --token-url")
			}

			cc := clientcredentials.Config{
				ClientID:       auth.ClientID,
				ClientSecret:   auth.ClientSecret,
				TokenURL:       tokenURL,
				EndpointParams: url.Values{"audience": {auth.Audience}},
			}

			token, err := cc.Token(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch token: %w", err)
			}

			c.logger.Debug("token issued",
				zap.String("token_type", token.TokenType),
				zap.Time("expiry", token.Expiry),
			)
			fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenURL, "token-url", "", "token endpoint (default: derived from AUTH0_DOMAIN)")

	return cmd
}
