package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/vaultcraft/vaultcraft/internal/vault/store"
	"github.com/vaultcraft/vaultcraft/internal/vault/store/drivers/sqlite"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

var errNotLoggedIn = errors.New("not logged in; run " + color.YellowString("vaultcli login"))

// startSpinner creates and starts a spinner unless verbose mode is on.
// Set spinner.FinalMSG before the returned cleanup runs; cleanup stops
// the spinner and prints the final message on its own line.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Ignore color errors and continue with a plain spinner.
	_ = s.Color("cyan")

	if !verbose {
		s.Start()
	}

	cleanup := func() {
		finalMsg := s.FinalMSG
		s.FinalMSG = ""
		if !verbose {
			s.Stop()
		}
		if finalMsg != "" {
			if !strings.HasSuffix(finalMsg, "\n") {
				finalMsg += "\n"
			}
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

func successMsg(msg string) string { return color.GreenString("✓") + " " + msg }
func failureMsg(msg string) string { return color.RedString("✗") + " " + msg }
func hintMsg(msg string) string    { return color.CyanString("→") + " " + msg }

// openStore opens the local session database, creating its directory
// and schema on first use.
func openStore() (*sqlite.Store, error) {
	if dir := filepath.Dir(cfg.DatabaseFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	s, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}
	return s, nil
}

func newClient() *vaultsdk.Client {
	return vaultsdk.NewClient(cfg.BaseURL).WithLogging(logger)
}

// restoreSession loads the stored session for the active profile and
// wraps it in an authenticated SDK session. Expired sessions are
// dropped and reported as not logged in.
func restoreSession(ctx context.Context, s *sqlite.Store) (*vaultsdk.Session, store.Session, error) {
	stored, err := s.Sessions().GetSession(ctx, cfg.Profile)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.Session{}, errNotLoggedIn
	}
	if err != nil {
		return nil, store.Session{}, err
	}

	if stored.Expired(time.Now()) {
		_ = s.Sessions().DeleteSession(ctx, cfg.Profile)
		return nil, store.Session{}, errNotLoggedIn
	}

	client := vaultsdk.NewClient(stored.BaseURL).WithLogging(logger)
	return client.NewSessionFromToken(stored.Token), stored, nil
}

// saveSession persists a freshly minted token for the active profile.
func saveSession(ctx context.Context, s *sqlite.Store, user, token, vault string, expiresAt time.Time) error {
	return s.Sessions().SaveSession(ctx, store.Session{
		Profile:   cfg.Profile,
		BaseURL:   cfg.BaseURL,
		User:      user,
		Token:     token,
		Vault:     vault,
		ExpiresAt: expiresAt,
	})
}

// storedWithToken returns a copy of a stored session with a rotated
// token and deadline.
func storedWithToken(s store.Session, token string, expiresAt time.Time) store.Session {
	s.Token = token
	s.ExpiresAt = expiresAt
	return s
}

// promptLine reads one line of visible input from stdin.
func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echoing when stdin is a terminal,
// falling back to a visible read when it is not (tests, pipes).
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}

	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(secret), nil
}
