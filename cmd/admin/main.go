// Command admin runs Trailium management tasks against the configured database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trailium-admin",
	Short: "Trailium management commands",
	Long: `trailium-admin seeds demo data, manages development accounts and
runs maintenance tasks such as purging non-admin users.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.Initialize(cfg.Log.Level, "-"); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := database.Initialize(cfg.Database, false); err != nil {
			return err
		}
		return database.Migrate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
		_ = logger.Close()
	},
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults to TRAILIUM_CONFIG or ./config.yaml)")

	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(seedDemoCmd)
	rootCmd.AddCommand(resetDemoCmd)
	rootCmd.AddCommand(createDevUsersCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(cleanupTokensCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
