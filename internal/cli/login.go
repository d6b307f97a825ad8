package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/internal/vault/flow"
)

var loginIdentifier string

func init() {
	loginCmd.Flags().StringVarP(&loginIdentifier, "user", "u", "", "username or email to sign in as")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store a session for this profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		identifier := loginIdentifier
		if identifier == "" {
			var err error
			identifier, err = promptLine("Username or email: ")
			if err != nil {
				return err
			}
		}
		password, err := promptSecret("Password: ")
		if err != nil {
			return err
		}

		controller := flow.New(newClient())

		snap, err := submitWithSpinner("Signing in...", func() (flow.Snapshot, error) {
			return controller.SubmitLogin(ctx, identifier, password)
		})
		if err != nil {
			return err
		}

		if snap.State == flow.StateAwaitingSecondFactor {
			fmt.Println(hintMsg("A second factor is required."))
			snap, err = verifyChallenge(ctx, controller)
			if err != nil {
				return err
			}
		}

		return finishAuth(ctx, snap)
	},
}

// submitWithSpinner runs one controller operation behind a spinner.
func submitWithSpinner(message string, op func() (flow.Snapshot, error)) (flow.Snapshot, error) {
	s, cleanup := startSpinner(message)
	snap, err := op()
	if err != nil {
		s.FinalMSG = failureMsg(err.Error())
	}
	cleanup()
	return snap, err
}

// verifyChallenge prompts for a one-time code and submits it.
func verifyChallenge(ctx context.Context, controller *flow.Controller) (flow.Snapshot, error) {
	code, err := promptLine("Code: ")
	if err != nil {
		return flow.Snapshot{}, err
	}
	return submitWithSpinner("Verifying code...", func() (flow.Snapshot, error) {
		return controller.VerifySecondFactor(ctx, code)
	})
}

// finishAuth renders the terminal state of an authentication flow and,
// on success, persists the minted session for the active profile.
func finishAuth(ctx context.Context, snap flow.Snapshot) error {
	switch snap.State {
	case flow.StateAuthenticated:
		sess := snap.Session

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		user := ""
		if claims, err := newClient().NewSessionFromToken(sess.Token).Claims(); err == nil {
			user = claims.Subject
		}
		if err := saveSession(ctx, st, user, sess.Token, sess.Vault, sess.ExpiresAt); err != nil {
			return err
		}

		msg := successMsg("Signed in")
		if user != "" {
			msg += " as " + color.YellowString(user)
		}
		fmt.Println(msg)
		return nil

	case flow.StateFailed:
		fmt.Println(failureMsg(snap.Failure.Message))
		if snap.Failure.Kind == flow.FailureChallengeExpired {
			fmt.Println(hintMsg("Run " + color.YellowString("vaultcli login") + " to start again"))
		}
		return fmt.Errorf("authentication failed")

	default:
		return fmt.Errorf("authentication did not complete (state %s)", snap.State)
	}
}
