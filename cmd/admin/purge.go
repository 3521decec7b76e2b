package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/purge"
)

var (
	purgeKeep    []string
	purgeExecute bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge-non-admin-users",
	Short: "Delete every non-superuser account and its content",
	Long: `Deletes every user that is not a superuser and not named in --keep,
together with their posts, comments, likes, albums, follows and todo lists.

Without --execute only the counts are reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := purge.New(database.DB).Run(cmd.Context(), purgeKeep, !purgeExecute)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		if purgeExecute {
			fmt.Println("✓ Purge completed")
		} else {
			fmt.Println("Dry run, nothing was deleted. Re-run with --execute to purge.")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	purgeCmd.Flags().StringSliceVar(&purgeKeep, "keep", nil, "Usernames or emails to preserve (repeatable or comma separated)")
	purgeCmd.Flags().BoolVar(&purgeExecute, "execute", false, "Actually delete; the default is a dry run")
}
