package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/client"
	"github.com/emrealmaoglu/trailium/cli/pkg/config"
	"github.com/emrealmaoglu/trailium/cli/pkg/credentials"
	"github.com/emrealmaoglu/trailium/cli/pkg/logger"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
	"github.com/emrealmaoglu/trailium/cli/pkg/service"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "trailium-cli",
	Short: "Trailium CLI - posts, follows and todo lists from the terminal",
	Long: `Trailium CLI talks to a Trailium API server. Log in once and the
session is stored under your config directory and refreshed automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if outputFmt != "" {
			if !output.ValidateOutputFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (text, json, table)", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		client.Init()
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}

// requireSession loads the stored session and installs its token
func requireSession() (*credentials.Credentials, error) {
	return service.NewAuthService().Session()
}

func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return uint(id), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/trailium/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL, overrides api.base_url")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
