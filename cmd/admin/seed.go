package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/seed"
)

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create or refresh the deterministic demo dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := seed.NewSeeder(database.DB).SeedDemo(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Printf("✓ Demo data seeded\n%s\n", stats)
		return nil
	},
}

var resetDemoCmd = &cobra.Command{
	Use:   "reset-demo",
	Short: "Delete every demo user and their content",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := seed.NewSeeder(database.DB).ResetDemo(cmd.Context())
		if err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Printf("✓ Demo data removed\n%s\n", stats)
		return nil
	},
}

var createDevUsersCmd = &cobra.Command{
	Use:   "create-dev-users",
	Short: "Ensure the local development accounts exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := seed.NewSeeder(database.DB).CreateDevUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to create dev users: %w", err)
		}
		if len(created) == 0 {
			fmt.Println("✓ Dev users already present, passwords and roles reset")
			return nil
		}
		fmt.Printf("✓ Created dev users: %s\n", strings.Join(created, ", "))
		for _, dev := range seed.DevUsers {
			fmt.Printf("  %s / %s\n", dev.Username, dev.Password)
		}
		return nil
	},
}
