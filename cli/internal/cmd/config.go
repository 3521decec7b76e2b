package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/config"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord("Config", map[string]interface{}{
			"file":          config.GetConfigFilePath(),
			"api.base_url":  config.GetString("api.base_url"),
			"api.timeout":   config.GetInt("api.timeout"),
			"output.format": config.GetString("output.format"),
			"log.level":     config.GetString("log.level"),
			"log.file":      config.GetString("log.file"),
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting to config.toml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "api.base_url", "api.timeout", "log.level", "log.file":
		case "output.format":
			if !output.ValidateOutputFormat(value) {
				return fmt.Errorf("invalid output format %q", value)
			}
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
		if err := config.SetString(key, value); err != nil {
			return err
		}
		output.PrintSuccess("%s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
