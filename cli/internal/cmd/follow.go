package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow users and answer follow requests",
}

// followActionCmd builds a command that runs action against a user id
func followActionCmd(use, short string, action func(uint) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if _, err := requireSession(); err != nil {
				return err
			}
			msg, err := action(id)
			if err != nil {
				return err
			}
			output.PrintSuccess("%s", msg)
			return nil
		},
	}
}

var followStatusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show your follow status towards a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "user")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		status, err := api.FollowStatus(id)
		if err != nil {
			return err
		}
		return output.PrintRecord("", map[string]interface{}{"user_id": id, "status": status})
	},
}

func printFollows(follows []api.Follow, other func(api.Follow) api.UserBrief) error {
	rows := make([][]string, 0, len(follows))
	for _, f := range follows {
		u := other(f)
		rows = append(rows, []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Username,
			f.Status,
			f.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	return output.PrintTable(follows, []string{"USER ID", "USERNAME", "STATUS", "SINCE"}, rows)
}

func followListCmd(use, short string, list func() ([]api.Follow, error), other func(api.Follow) api.UserBrief) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			follows, err := list()
			if err != nil {
				return err
			}
			return printFollows(follows, other)
		},
	}
}

func follower(f api.Follow) api.UserBrief { return f.Follower }
func followed(f api.Follow) api.UserBrief { return f.Followed }

func init() {
	followCmd.AddCommand(followActionCmd("send", "Send a follow request", api.SendFollowRequest))
	followCmd.AddCommand(followActionCmd("unfollow", "Stop following, or withdraw a request", api.Unfollow))
	followCmd.AddCommand(followActionCmd("accept", "Accept a follow request", api.AcceptFollow))
	followCmd.AddCommand(followActionCmd("reject", "Reject a follow request", api.RejectFollow))
	followCmd.AddCommand(followStatusCmd)
	followCmd.AddCommand(followListCmd("followers", "List your followers", api.Followers, follower))
	followCmd.AddCommand(followListCmd("following", "List users you follow", api.Following, followed))
	followCmd.AddCommand(followListCmd("requests", "List pending follow requests", api.FollowRequests, follower))
}
