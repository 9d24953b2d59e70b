package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token <client>",
	Short: "Issue an API bearer token for a named client",
	Long:  "Signs a token with server.jwt_secret (JWT_SECRET). The token expires after server.token_expiration_hours.",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	jwtConfig, ok := a.cfg.Server.JWT()
	if !ok {
		return fmt.Errorf("server.jwt_secret is not set; set JWT_SECRET to enable API tokens")
	}
	svc, err := server.NewJWTService(jwtConfig)
	if err != nil {
		return err
	}

	token, err := svc.GenerateToken(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
