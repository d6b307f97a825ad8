// Package cli implements the vaultcli command tree. Commands are thin:
// they collect input, drive the flow controller or an authenticated
// session, persist the resulting token, and render the outcome.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/pkg/slogx"
)

var (
	cfg    Config
	logger *slog.Logger

	flagBaseURL string
	flagProfile string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "vaultcli",
	Short: "VaultCraft - a command-line client for the VaultCraft password vault",
	Long: `vaultcli talks to a VaultCraft vault service: sign up, log in with a
second factor, and manage the logins, cards and notes in your vault.

Sessions are stored per profile in a local database, so you stay logged
in between invocations until the token expires or you lock the vault.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = LoadConfig()
		if flagBaseURL != "" {
			cfg.BaseURL = flagBaseURL
		}
		if flagProfile != "" {
			cfg.Profile = flagProfile
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		logger = slogx.New(slogx.Config{
			Service: "vaultcli",
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "vault service base URL (overrides VAULTCRAFT_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "session profile name (overrides VAULTCRAFT_PROFILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(forgotCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(totpCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
