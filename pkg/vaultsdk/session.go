package vaultsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated handle on the vault service. It holds the
// session token minted by a completed authentication and attaches it to
// every request. Only an explicit Lock or a backend-signalled
// invalidation retires the token; the Session itself never refreshes or
// re-mints it.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
}

// Token returns the current session token, e.g. for persisting in the
// local session store.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// setToken swaps the session token; used when change-password returns a
// fresh one.
func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Claims holds the subset of token claims the client cares about for
// display. The token is parsed without signature verification: only the
// server can vouch for it, the client just reads what it carries.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims parses the session token's claims without verifying the
// signature.
func (s *Session) Claims() (*Claims, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	out := &Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// doAuthRequest performs an authenticated request with the session token.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, reqBody, target any, headers map[string]string) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	resp, err := s.client.send(ctx, method, path, reqBody, token, headers)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

// GetSession fetches the server's view of this session: whether the
// vault is unlocked, for whom, and which vault file backs it. This is a
// one-time bootstrap read, not something to poll.
func (s *Session) GetSession(ctx context.Context) (*SessionState, error) {
	var out SessionState
	if err := s.doAuthRequest(ctx, http.MethodGet, "/api/session", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lock locks the vault server-side and retires this session's token.
// The Session must not be reused afterwards.
func (s *Session) Lock(ctx context.Context) error {
	return s.doAuthRequest(ctx, http.MethodPost, "/api/lock", nil, nil, nil)
}

// ChangePassword rotates the master password. The caller is responsible
// for local validation (current non-empty, policy check on next) before
// calling. When the response carries a fresh token the session adopts it.
func (s *Session) ChangePassword(ctx context.Context, current, next string) (*AuthResponse, error) {
	var out AuthResponse
	err := s.doAuthRequest(ctx, http.MethodPut, "/api/password", changePasswordRequest{
		Current: current,
		Next:    next,
	}, &out, nil)
	if err != nil {
		return nil, err
	}
	if out.Token != "" {
		s.setToken(out.Token)
	}
	return &out, nil
}
