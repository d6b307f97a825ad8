package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
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

		fmt.Println("Profile:  " + color.YellowString(stored.Profile))
		fmt.Println("Server:   " + stored.BaseURL)
		if claims, err := sess.Claims(); err == nil {
			if claims.Subject != "" {
				fmt.Println("User:     " + claims.Subject)
			}
			if !claims.ExpiresAt.IsZero() {
				fmt.Println("Expires:  " + claims.ExpiresAt.Local().Format(time.RFC1123))
			}
		}

		s, cleanup := startSpinner("Checking session...")
		state, err := sess.GetSession(ctx)
		if err != nil {
			s.FinalMSG = failureMsg("session rejected by the server: " + err.Error())
			cleanup()
			return fmt.Errorf("status failed")
		}

		if state.Unlocked {
			s.FinalMSG = successMsg("Vault " + color.YellowString(state.Vault) + " is unlocked")
		} else {
			s.FinalMSG = hintMsg("Vault is locked")
		}
		cleanup()
		return nil
	},
}
