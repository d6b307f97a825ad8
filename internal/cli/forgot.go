package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/internal/vault/flow"
)

var forgotCmd = &cobra.Command{
	Use:   "forgot <email>",
	Short: "Request a password reset link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		controller := flow.New(newClient())
		controller.SetMode(flow.ModeForgotPassword)

		snap, err := submitWithSpinner("Requesting reset link...", func() (flow.Snapshot, error) {
			return controller.RequestPasswordReset(ctx, args[0])
		})
		if err != nil {
			return err
		}

		if snap.State == flow.StateFailed {
			fmt.Println(failureMsg(snap.Failure.Message))
			return fmt.Errorf("reset request failed")
		}

		note := snap.Note
		if note == "" {
			note = "If the account exists, a reset link is on its way."
		}
		fmt.Println(successMsg(note))
		return nil
	},
}
