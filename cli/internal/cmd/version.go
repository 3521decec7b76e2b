package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/output"
)

// Version is overridden at build time with -ldflags "-X .../internal/cmd.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		output.PrintInfo("Trailium CLI v%s", Version)
	},
}
