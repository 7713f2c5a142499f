package cmd

import (
	"fmt"
	"time"

	"auction-escrow/internal/auth"
	model "auction-escrow/internal/models"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an identity",
	Example: "  auctiond token --subject alice\n" +
		"  auctiond token --subject bob --ttl 1h",
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl := tokenTTL
		if ttl == 0 {
			ttl = appConfig.TokenTTL
		}

		signed, expiresAt, err := auth.NewToken([]byte(appConfig.JWTSecret), model.Identity(tokenSubject), ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), signed)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "identity carried by the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("subject")
}
