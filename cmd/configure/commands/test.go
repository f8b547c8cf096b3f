package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pawcare/pawcare-api/internal/config"
	"github.com/pawcare/pawcare-api/internal/services/auth"
	"github.com/spf13/cobra"
)

// NewTestCmd checks that the configured JWKS endpoint serves usable keys
func NewTestCmd() *cobra.Command {
	var jwksURL string

	cmd := &cobra.Command{
		Use:   "test-auth",
		Short: "Test the JWT verification key set",
		Long:  "Fetch the JWKS used to verify bearer tokens and list its keys.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jwksURL == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				jwksURL = cfg.AuthJWKSURL
			}
			if jwksURL == "" {
				return fmt.Errorf("--jwks-url is required when AUTH_JWKS_URL is not set")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Testing JWKS endpoint: %s\n", jwksURL)

			set, err := auth.NewJWKSManager(auth.DefaultJWKSTTL).GetJWKS(ctx, jwksURL)
			if err != nil {
				return fmt.Errorf("fetch JWKS: %w", err)
			}
			if set.Len() == 0 {
				return fmt.Errorf("JWKS contains no keys")
			}

			for i := 0; i < set.Len(); i++ {
				key, _ := set.Key(i)
				fmt.Fprintf(out, "  key %d: kid=%q type=%s alg=%s\n", i+1, key.KeyID(), key.KeyType(), key.Algorithm())
			}
			fmt.Fprintf(out, "JWKS endpoint is usable (%d keys)\n", set.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (defaults to AUTH_JWKS_URL)")

	return cmd
}
