package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/models"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Install default lookup rows such as todo priorities",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.EnsureDefaultPriorities(database.DB); err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}

		var priorities []models.TodoPriority
		if err := database.DB.Order("sort_order ASC, id ASC").Find(&priorities).Error; err != nil {
			return fmt.Errorf("failed to list priorities: %w", err)
		}
		fmt.Printf("✓ %d priorities installed\n", len(priorities))
		for _, p := range priorities {
			marker := ""
			if p.IsDefault {
				marker = " (default)"
			}
			fmt.Printf("  %-8s %s%s\n", p.Key, p.Color, marker)
		}
		return nil
	},
}
