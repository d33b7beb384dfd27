package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Raymond9734/voicemail-drop-backend/internal/auth"
)

var (
	tokenSecret string
	tokenOrg    string
	tokenUser   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development auth token",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret, same as VMDROP_AUTH_SECRET")
	tokenCmd.Flags().StringVar(&tokenOrg, "org", "org-1", "organization id")
	tokenCmd.Flags().StringVar(&tokenUser, "user", "dev", "user id")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenSecret == "" {
		return errors.New("--secret is required")
	}

	token, err := auth.NewIssuer(tokenSecret, tokenTTL).Issue(tokenUser, tokenOrg)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
