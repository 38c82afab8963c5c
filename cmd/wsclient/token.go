package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsupload/service/internal/auth"
)

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token",
		Long:  `Mint an HS256 token signed with the server's AUTH_JWT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("AUTH_JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no secret: pass --secret or set AUTH_JWT_SECRET")
			}

			tok, err := auth.NewIssuer(secret).Issue(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default $AUTH_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "wsclient", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
