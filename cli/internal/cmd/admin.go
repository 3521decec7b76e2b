package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
	"github.com/emrealmaoglu/trailium/cli/pkg/prompter"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Superuser tools",
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every non-superuser account and its content",
	Long: `Deletes every user that is not a superuser and not named in --keep,
together with their posts, albums, follows and todo lists.

Without --execute the server only reports what would be deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetStringSlice("keep")
		execute, _ := cmd.Flags().GetBool("execute")
		yes, _ := cmd.Flags().GetBool("yes")

		creds, err := requireSession()
		if err != nil {
			return err
		}
		if !creds.IsSuperuser {
			return fmt.Errorf("purge requires a superuser account, %s is not one", creds.Username)
		}

		if execute && !yes {
			ok, err := prompter.PromptPhrase("This permanently deletes data.", api.PurgeConfirmPhrase)
			if err != nil {
				return err
			}
			if !ok {
				output.PrintWarning("Purge cancelled")
				return nil
			}
		}

		resp, err := api.PurgeNonAdminUsers(keep, !execute)
		if err != nil {
			return err
		}

		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", resp)
		}
		s := resp.Summary()
		if s == nil {
			return fmt.Errorf("server returned no purge summary")
		}
		title := "Would delete"
		if resp.Mode == "executed" {
			title = "Deleted"
		}
		if err := output.PrintRecord(title, map[string]interface{}{
			"users":          s.Users,
			"posts":          s.Posts,
			"comments":       s.Comments,
			"likes":          s.Likes,
			"albums":         s.Albums,
			"photos":         s.Photos,
			"follows":        s.Follows,
			"todo_lists":     s.TodoLists,
			"todo_items":     s.TodoItems,
			"todo_sub_items": s.TodoSubItems,
			"total_related":  s.TotalRelated,
		}); err != nil {
			return err
		}
		output.PrintInfo("Kept %d users: %v", s.KeptUsers, s.KeptUsernames)
		if !execute {
			output.PrintInfo("Dry run only. Re-run with --execute to delete.")
		}
		return nil
	},
}

func init() {
	purgeCmd.Flags().StringSlice("keep", nil, "Usernames or emails to keep (repeatable or comma separated)")
	purgeCmd.Flags().Bool("execute", false, "Actually delete instead of a dry run")
	purgeCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	adminCmd.AddCommand(purgeCmd)
}
