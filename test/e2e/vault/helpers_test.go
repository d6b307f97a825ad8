package vault_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/vaultcraft/vaultcraft/pkg/idx"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

// fakeVault is an in-process stand-in for the vault service. It speaks
// the same wire protocol, mints real HS256 tokens and verifies real
// TOTP codes, so the SDK and flow controller are exercised end to end
// without a backend image.
type fakeVault struct {
	t *testing.T

	mu          sync.Mutex
	users       map[string]*fakeUser
	challenges  map[string]*fakeChallenge
	tokens      map[string]string // token -> username
	items       map[string]vaultsdk.Item
	idempotency map[string]string // idempotency key -> item ID
	resetTokens map[string]string // reset token -> username

	// LastResetToken holds the most recent reset token "mailed" out, so
	// tests can complete the forgot-password loop.
	LastResetToken string

	// ChallengeTTL is the second-factor window for new challenges.
	ChallengeTTL time.Duration
}

type fakeUser struct {
	Username   string
	Email      string
	Password   string
	TOTPSecret string
	Enrolled   bool
	Vault      string
	Locked     bool
}

type fakeChallenge struct {
	Username  string
	ExpiresAt time.Time
	Enroll    bool
}

var signingKey = []byte("e2e-signing-key")

func newFakeVault(t *testing.T) (*fakeVault, string) {
	t.Helper()

	fv := &fakeVault{
		t:            t,
		users:        make(map[string]*fakeUser),
		challenges:   make(map[string]*fakeChallenge),
		tokens:       make(map[string]string),
		items:        make(map[string]vaultsdk.Item),
		idempotency:  make(map[string]string),
		resetTokens:  make(map[string]string),
		ChallengeTTL: 3 * time.Minute,
	}

	srv := httptest.NewServer(fv.handler())
	t.Cleanup(srv.Close)
	return fv, srv.URL
}

func newTestClient(t *testing.T, baseURL string) *vaultsdk.Client {
	t.Helper()
	client := vaultsdk.NewClient(baseURL)
	client.Limiter = nil
	return client
}

// code computes the current TOTP code for a user's secret, the way an
// authenticator app would.
func code(t *testing.T, secret string) string {
	t.Helper()
	c, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return c
}

func (fv *fakeVault) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", fv.handleLogin)
	mux.HandleFunc("POST /api/login/verify", fv.handleVerify)
	mux.HandleFunc("POST /api/signup", fv.handleSignup)
	mux.HandleFunc("POST /api/password/forgot", fv.handleForgot)
	mux.HandleFunc("POST /api/password/reset", fv.handleReset)
	mux.HandleFunc("GET /api/session", fv.handleSession)
	mux.HandleFunc("POST /api/lock", fv.handleLock)
	mux.HandleFunc("PUT /api/password", fv.handleChangePassword)
	mux.HandleFunc("POST /api/items", fv.handleCreateItem)
	mux.HandleFunc("GET /api/items", fv.handleListItems)
	mux.HandleFunc("GET /api/items/{id}", fv.handleGetItem)
	mux.HandleFunc("PUT /api/items/{id}", fv.handleUpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", fv.handleDeleteItem)
	return mux
}

func (fv *fakeVault) mintToken(username string) (string, time.Time) {
	expires := time.Now().Add(time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(signingKey)
	require.NoError(fv.t, err)
	fv.tokens[signed] = username
	return signed, expires
}

// authedUser resolves the bearer token of a request; writes a 401 and
// returns nil when the token is unknown.
func (fv *fakeVault) authedUser(w http.ResponseWriter, r *http.Request) *fakeUser {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	username, ok := fv.tokens[token]
	if !ok {
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return nil
	}
	return fv.users[username]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (fv *fakeVault) handleLogin(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	user := fv.findUser(req.Identifier)
	if user == nil || user.Password != req.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if user.Enrolled {
		id := idx.New().String()
		expires := time.Now().Add(fv.ChallengeTTL)
		fv.challenges[id] = &fakeChallenge{Username: user.Username, ExpiresAt: expires}
		writeJSON(w, map[string]any{
			"challenge_id": id,
			"expires_at":   expires.UTC(),
			"note":         "Submit the 6-digit code from your authenticator app.",
		})
		return
	}

	token, expires := fv.mintToken(user.Username)
	user.Locked = false
	writeJSON(w, map[string]any{
		"token":      token,
		"expires_at": expires.UTC(),
		"vault":      user.Vault,
	})
}

func (fv *fakeVault) handleVerify(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	var req struct {
		ChallengeID string `json:"challenge_id"`
		Code        string `json:"code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	challenge, ok := fv.challenges[req.ChallengeID]
	if !ok {
		http.Error(w, "unknown challenge", http.StatusUnauthorized)
		return
	}
	// One attempt per challenge.
	delete(fv.challenges, req.ChallengeID)

	if time.Now().After(challenge.ExpiresAt) {
		http.Error(w, "challenge expired", http.StatusUnauthorized)
		return
	}

	user := fv.users[challenge.Username]
	if !totp.Validate(req.Code, user.TOTPSecret) {
		http.Error(w, "invalid code", http.StatusUnauthorized)
		return
	}

	if challenge.Enroll {
		user.Enrolled = true
	}
	user.Locked = false
	token, expires := fv.mintToken(user.Username)
	writeJSON(w, map[string]any{
		"token":      token,
		"expires_at": expires.UTC(),
		"vault":      user.Vault,
	})
}

func (fv *fakeVault) handleSignup(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if fv.findUser(req.Username) != nil || fv.findUser(req.Email) != nil {
		http.Error(w, "account already exists", http.StatusConflict)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "VaultCraft",
		AccountName: req.Username,
	})
	require.NoError(fv.t, err)

	fv.users[req.Username] = &fakeUser{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		TOTPSecret: key.Secret(),
		Vault:      req.Username + ".vlt",
	}

	id := idx.New().String()
	expires := time.Now().Add(10 * time.Minute)
	fv.challenges[id] = &fakeChallenge{Username: req.Username, ExpiresAt: expires, Enroll: true}

	writeJSON(w, map[string]any{
		"challenge_id": id,
		"expires_at":   expires.UTC(),
		"totp_secret":  key.Secret(),
		"totp_uri":     key.URL(),
		"note":         "Scan the secret into your authenticator app, then confirm a code.",
	})
}

func (fv *fakeVault) handleForgot(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	// The note never reveals whether the account exists.
	if user := fv.findUser(req.Email); user != nil {
		token := idx.New().String()
		fv.resetTokens[token] = user.Username
		fv.LastResetToken = token
	}
	writeJSON(w, map[string]string{
		"note": "If the account exists, you'll receive a reset link shortly.",
	})
}

func (fv *fakeVault) handleReset(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	var req struct {
		Token string `json:"token"`
		Next  string `json:"next"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	username, ok := fv.resetTokens[req.Token]
	if !ok {
		http.Error(w, "invalid reset token", http.StatusUnauthorized)
		return
	}
	delete(fv.resetTokens, req.Token)
	fv.users[username].Password = req.Next
	writeJSON(w, map[string]string{"note": "Password updated."})
}

func (fv *fakeVault) handleSession(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	user := fv.authedUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, map[string]any{
		"user":     user.Username,
		"unlocked": !user.Locked,
		"vault":    user.Vault,
	})
}

func (fv *fakeVault) handleLock(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	user := fv.authedUser(w, r)
	if user == nil {
		return
	}
	user.Locked = true
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	delete(fv.tokens, token)
	w.WriteHeader(http.StatusNoContent)
}

func (fv *fakeVault) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	user := fv.authedUser(w, r)
	if user == nil {
		return
	}

	var req struct {
		Current string `json:"current"`
		Next    string `json:"next"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Current != user.Password {
		http.Error(w, "current password is incorrect", http.StatusUnauthorized)
		return
	}
	user.Password = req.Next

	// Rotate the session token along with the master.
	old := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	delete(fv.tokens, old)
	token, expires := fv.mintToken(user.Username)
	writeJSON(w, map[string]any{
		"token":      token,
		"expires_at": expires.UTC(),
		"note":       "Password updated; vault master rotated.",
	})
}

func (fv *fakeVault) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	if fv.authedUser(w, r) == nil {
		return
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		if id, ok := fv.idempotency[key]; ok {
			writeJSON(w, fv.items[id])
			return
		}
	}

	var item vaultsdk.Item
	_ = json.NewDecoder(r.Body).Decode(&item)
	item.ID = idx.New().String()
	item.Created = time.Now().UTC()
	item.Updated = item.Created
	item.Version = 1
	fv.items[item.ID] = item

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		fv.idempotency[key] = item.ID
	}
	writeJSON(w, item)
}

func (fv *fakeVault) handleListItems(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	if fv.authedUser(w, r) == nil {
		return
	}

	filter := r.URL.Query().Get("type")
	items := make([]vaultsdk.Item, 0, len(fv.items))
	for _, item := range fv.items {
		if filter == "" || item.Type == filter {
			items = append(items, item)
		}
	}
	writeJSON(w, map[string]any{"items": items})
}

func (fv *fakeVault) handleGetItem(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	if fv.authedUser(w, r) == nil {
		return
	}
	item, ok := fv.items[r.PathValue("id")]
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, item)
}

func (fv *fakeVault) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	if fv.authedUser(w, r) == nil {
		return
	}
	existing, ok := fv.items[r.PathValue("id")]
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	var item vaultsdk.Item
	_ = json.NewDecoder(r.Body).Decode(&item)
	item.ID = existing.ID
	item.Created = existing.Created
	item.Updated = time.Now().UTC()
	item.Version = existing.Version + 1
	fv.items[item.ID] = item
	writeJSON(w, item)
}

func (fv *fakeVault) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	if fv.authedUser(w, r) == nil {
		return
	}
	if _, ok := fv.items[r.PathValue("id")]; !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	delete(fv.items, r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (fv *fakeVault) findUser(identifier string) *fakeUser {
	if user, ok := fv.users[identifier]; ok {
		return user
	}
	for _, user := range fv.users {
		if user.Email == identifier {
			return user
		}
	}
	return nil
}
