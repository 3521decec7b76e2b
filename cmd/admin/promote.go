package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/repository"
)

var (
	promoteSuperuser bool
	promoteRevoke    bool
)

var promoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant or revoke staff privileges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		staff, superuser := !promoteRevoke, promoteSuperuser && !promoteRevoke

		users := repository.NewUserRepository(database.DB)
		user, err := users.SetRoles(cmd.Context(), args[0], staff, superuser)
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("user not found: %s", args[0])
		}
		if err != nil {
			return err
		}

		if promoteRevoke {
			fmt.Printf("✓ Privileges revoked for %s (%s)\n", user.Username, user.Email)
			return nil
		}
		role := "staff"
		if user.IsSuperuser {
			role = "staff + superuser"
		}
		fmt.Printf("✓ %s is now %s\n", user.Username, role)
		return nil
	},
}

func init() {
	promoteCmd.Flags().BoolVar(&promoteSuperuser, "superuser", false, "Also grant superuser")
	promoteCmd.Flags().BoolVar(&promoteRevoke, "revoke", false, "Revoke staff and superuser instead of granting")
}
