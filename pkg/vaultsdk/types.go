package vaultsdk

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// AuthResponse is returned from the login and verify endpoints. Exactly
// one of Token or ChallengeID is populated: a token means the session is
// minted directly, a challenge ID means a second factor is required and
// ExpiresAt carries the challenge deadline.
type AuthResponse struct {
	// Token is the session token, present when authentication completed
	Token string `json:"token,omitempty"`

	// ChallengeID references a pending second-factor challenge
	ChallengeID string `json:"challenge_id,omitempty"`

	// ExpiresAt is the token or challenge expiry, depending on which is set
	ExpiresAt time.Time `json:"expires_at"`

	// Vault is the display name of the vault file backing this account
	Vault string `json:"vault,omitempty"`

	// Note is an advisory message for display, never branched on
	Note string `json:"note,omitempty"`
}

// SignupResponse is returned from the signup endpoint. When the server
// requires second-factor enrollment it carries the one-time TOTP secret
// and provisioning URI alongside a challenge; otherwise Token completes
// the session directly.
type SignupResponse struct {
	Token       string    `json:"token,omitempty"`
	ChallengeID string    `json:"challenge_id,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	Note        string    `json:"note,omitempty"`

	// TOTPSecret is the base32 enrollment secret, shown exactly once
	TOTPSecret string `json:"totp_secret,omitempty"`

	// TOTPURI is the otpauth:// provisioning URI for authenticator apps
	TOTPURI string `json:"totp_uri,omitempty"`
}

// NoteResponse is the advisory-only response of the password reset
// endpoints. The note is identical whether or not the account exists.
type NoteResponse struct {
	Note string `json:"note"`
}

// SessionState is the one-time bootstrap read of the server-side session.
type SessionState struct {
	User     string `json:"user,omitempty"`
	Unlocked bool   `json:"unlocked"`
	Vault    string `json:"vault,omitempty"`
}

// ============================================================================
// Item Types
// ============================================================================

// Item is a secret item held by the vault. Fields is a flat mapping of
// field name to string value; which names are required depends on Type
// and is enforced client-side by the payload builder.
type Item struct {
	// ID is assigned by the backend; absent until the item is persisted
	ID string `json:"id,omitempty"`

	// Type is the variant tag: "login", "card" or "note"
	Type string `json:"type"`

	// Fields maps field names (site, username, number, ...) to values
	Fields map[string]string `json:"fields"`

	Created time.Time `json:"created,omitzero"`
	Updated time.Time `json:"updated,omitzero"`
	Version int       `json:"version,omitempty"`
}

// ItemFilter narrows ListItems results. Zero value lists everything.
type ItemFilter struct {
	// Type restricts results to one variant tag
	Type string
}

// ============================================================================
// Request Types
// ============================================================================

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

type resetPasswordRequest struct {
	Token string `json:"token"`
	Next  string `json:"next"`
}

type changePasswordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}
