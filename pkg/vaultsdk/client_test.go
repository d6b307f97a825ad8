package vaultsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

func newTestClient(t *testing.T, handler http.Handler) *vaultsdk.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := vaultsdk.NewClient(srv.URL)
	client.Limiter = nil // local fake, no throttling
	return client
}

func TestLoginReturnsToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "jane", req["identifier"])
		require.Equal(t, "hunter2hunter2!A", req["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "t1",
			"expires_at": time.Now().Add(time.Hour).UTC(),
			"vault":      "jane.vlt",
		})
	}))

	resp, err := client.Login(context.Background(), "jane", "hunter2hunter2!A")
	require.NoError(t, err)
	require.Equal(t, "t1", resp.Token)
	require.Empty(t, resp.ChallengeID)
	require.Equal(t, "jane.vlt", resp.Vault)
}

func TestLoginReturnsChallenge(t *testing.T) {
	t.Parallel()

	expires := time.Now().Add(3 * time.Minute).UTC().Truncate(time.Second)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"challenge_id": "c1",
			"expires_at":   expires,
			"note":         "Submit the 6-digit code from your authenticator app.",
		})
	}))

	resp, err := client.Login(context.Background(), "jane", "pw")
	require.NoError(t, err)
	require.Empty(t, resp.Token)
	require.Equal(t, "c1", resp.ChallengeID)
	require.True(t, resp.ExpiresAt.Equal(expires))
}

func TestErrorMessagePrefersBodyText(t *testing.T) {
	t.Parallel()

	t.Run("body text", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
		}))

		_, err := client.Login(context.Background(), "jane", "wrong")
		require.Error(t, err)

		var apiErr *vaultsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "invalid credentials", apiErr.Message)
		require.True(t, vaultsdk.IsAuthFailure(err))
	})

	t.Run("status text fallback", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.Login(context.Background(), "jane", "pw")
		var apiErr *vaultsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.Status)
		require.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
		require.False(t, vaultsdk.IsAuthFailure(err))
	})
}

func TestSignupEnrollmentShape(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/signup", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"challenge_id": "c9",
			"expires_at":   time.Now().Add(10 * time.Minute).UTC(),
			"totp_secret":  "JBSWY3DPEHPK3PXP",
			"totp_uri":     "otpauth://totp/VaultCraft:jane?secret=JBSWY3DPEHPK3PXP&issuer=VaultCraft",
		})
	}))

	resp, err := client.Signup(context.Background(), "jane", "jane@example.com", "Abcdef1!gH23")
	require.NoError(t, err)
	require.Empty(t, resp.Token)
	require.Equal(t, "c9", resp.ChallengeID)
	require.Equal(t, "JBSWY3DPEHPK3PXP", resp.TOTPSecret)
	require.Contains(t, resp.TOTPURI, "otpauth://")
}

func TestForgotPasswordAdvisoryNote(t *testing.T) {
	t.Parallel()

	const note = "If the account exists, you'll receive a reset link shortly."
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/password/forgot", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"note": note})
	}))

	resp, err := client.ForgotPassword(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, note, resp.Note)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/password/reset", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "reset-tok", req["token"])
		require.Equal(t, "Abcdef1!gH23", req["next"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"note": "Password updated."})
	}))

	resp, err := client.ResetPassword(context.Background(), "reset-tok", "Abcdef1!gH23")
	require.NoError(t, err)
	require.Equal(t, "Password updated.", resp.Note)
}
