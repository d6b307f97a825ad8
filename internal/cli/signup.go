package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/internal/vault/flow"
)

var (
	signupUsername string
	signupEmail    string
)

func init() {
	signupCmd.Flags().StringVarP(&signupUsername, "user", "u", "", "username for the new account")
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "email address for the new account")
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and enroll a second factor",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		username := signupUsername
		if username == "" {
			var err error
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}
		email := signupEmail
		if email == "" {
			var err error
			email, err = promptLine("Email: ")
			if err != nil {
				return err
			}
		}
		password, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptSecret("Confirm password: ")
		if err != nil {
			return err
		}

		controller := flow.New(newClient())
		controller.SetMode(flow.ModeSignup)

		snap, err := submitWithSpinner("Creating account...", func() (flow.Snapshot, error) {
			return controller.SubmitSignup(ctx, username, email, password, confirm)
		})
		if err != nil {
			return err
		}

		if snap.State == flow.StateEnrollmentPending {
			printEnrollment(snap.Enrollment)
			snap, err = verifyChallenge(ctx, controller)
			if err != nil {
				return err
			}
		}

		return finishAuth(ctx, snap)
	},
}

// printEnrollment shows the one-time provisioning material. It is never
// shown again, so the secret is printed in full.
func printEnrollment(e *flow.EnrollmentSecret) {
	fmt.Println(hintMsg("Add this secret to your authenticator app. It is shown only once."))
	if e == nil {
		return
	}
	fmt.Println("  Secret: " + color.YellowString(e.Secret))
	if e.URI != "" {
		fmt.Println("  URI:    " + e.URI)
	}
}
