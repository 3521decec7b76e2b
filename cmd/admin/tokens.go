package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/auth"
)

var cleanupTokensCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Delete revoked refresh tokens that have already expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Only the blacklist table is touched, so no signing secret is needed.
		removed, err := auth.NewService(nil, auth.TokenConfig{}).CleanupRevokedTokens()
		if err != nil {
			return fmt.Errorf("token cleanup failed: %w", err)
		}
		fmt.Printf("✓ Removed %d expired revoked tokens\n", removed)
		return nil
	},
}
