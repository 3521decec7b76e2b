package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
	"github.com/emrealmaoglu/trailium/cli/pkg/prompter"
	"github.com/emrealmaoglu/trailium/cli/pkg/service"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Log in to a Trailium server and manage the stored session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with username and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		remember, _ := cmd.Flags().GetBool("remember")

		var err error
		if username == "" {
			if username, err = prompter.PromptString("Username: "); err != nil {
				return err
			}
		}
		password, err := prompter.PromptPassword("Password: ")
		if err != nil {
			return err
		}

		creds, err := service.NewAuthService().Login(username, password, remember)
		if err != nil {
			return err
		}
		output.PrintSuccess("Logged in as %s", creds.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewAuthService().Logout(); err != nil {
			return err
		}
		output.PrintSuccess("Logged out")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		user, err := api.GetCurrentUser()
		if err != nil {
			return err
		}
		return output.PrintRecord("User", map[string]interface{}{
			"id":           user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"full_name":    user.FullName,
			"visibility":   user.Visibility,
			"is_staff":     user.IsStaff,
			"is_superuser": user.IsSuperuser,
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := service.NewAuthService().Refresh()
		if err != nil {
			return err
		}
		output.PrintSuccess("Access token valid until %s", creds.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().Bool("remember", false, "Request a long-lived refresh token")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(refreshCmd)
}
