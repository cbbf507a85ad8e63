package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Signs a bearer token with JWT_SECRET for local testing of the signed-in endpoints. Production
tokens are issued by the identity provider sharing that secret.`,
	RunE: runToken,
}

var (
	tokenConfigPath string
	tokenUserID     string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenConfigPath, "config", "", "Path to config.json file")
	tokenCmd.Flags().StringVarP(&tokenUserID, "user-id", "u", "", "User ID to embed (default: a new random ID)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(tokenConfigPath)
	if err != nil {
		return err
	}
	jwtCfg := cfg.JWT()
	if jwtCfg == nil {
		return fmt.Errorf("JWT_SECRET environment variable or jwt_secret config is required")
	}

	userID := uuid.New()
	if tokenUserID != "" {
		if userID, err = uuid.Parse(tokenUserID); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
