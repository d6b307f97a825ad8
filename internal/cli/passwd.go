package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/pkg/validx"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master password",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, stored, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		current, err := promptSecret("Current password: ")
		if err != nil {
			return err
		}
		next, err := promptSecret("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptSecret("Confirm password: ")
		if err != nil {
			return err
		}

		// Same ordering as the signup checks: presence, match, policy.
		if current == "" {
			fmt.Println(failureMsg("enter your current password"))
			return fmt.Errorf("validation failed")
		}
		if next != confirm {
			fmt.Println(failureMsg("the passwords do not match"))
			return fmt.Errorf("validation failed")
		}
		if issues := validx.PasswordIssues(next); issues != "" {
			fmt.Println(failureMsg("password still needs " + issues))
			return fmt.Errorf("validation failed")
		}

		s, cleanup := startSpinner("Changing password...")
		resp, err := sess.ChangePassword(ctx, current, next)
		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("change failed")
		}

		// A fresh token may have been minted; persist whatever the
		// session holds now.
		expiresAt := stored.ExpiresAt
		if resp.Token != "" && !resp.ExpiresAt.IsZero() {
			expiresAt = resp.ExpiresAt
		}
		if err := st.Sessions().SaveSession(ctx, storedWithToken(stored, sess.Token(), expiresAt)); err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return err
		}

		note := resp.Note
		if note == "" {
			note = "Password changed."
		}
		s.FinalMSG = successMsg(note)
		cleanup()
		return nil
	},
}
