package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault and discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		s, cleanup := startSpinner("Locking vault...")
		err = sess.Lock(ctx)

		// The stored token is dropped regardless: even if the server
		// call failed the local copy must not outlive the intent to lock.
		if dropErr := st.Sessions().DeleteSession(ctx, cfg.Profile); dropErr != nil && err == nil {
			err = dropErr
		}

		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("lock failed")
		}
		s.FinalMSG = successMsg("Vault locked")
		cleanup()
		return nil
	},
}
