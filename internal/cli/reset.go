package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/pkg/validx"
)

var resetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Set a new password using a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		next, err := promptSecret("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptSecret("Confirm password: ")
		if err != nil {
			return err
		}

		if next != confirm {
			fmt.Println(failureMsg("the passwords do not match"))
			return fmt.Errorf("validation failed")
		}
		if issues := validx.PasswordIssues(next); issues != "" {
			fmt.Println(failureMsg("password still needs " + issues))
			return fmt.Errorf("validation failed")
		}

		s, cleanup := startSpinner("Resetting password...")
		resp, err := newClient().ResetPassword(ctx, args[0], next)
		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("reset failed")
		}

		note := resp.Note
		if note == "" {
			note = "Password updated."
		}
		s.FinalMSG = successMsg(note)
		cleanup()
		return nil
	},
}
