package vaultsdk

import (
	"context"
	"net/http"
)

// Login submits first-factor credentials. The response carries either a
// session token or a second-factor challenge; callers should branch on
// which field is populated. A 401 means the credentials were rejected,
// with no distinction between wrong password and unknown user.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login", loginRequest{
		Identifier: identifier,
		Password:   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyChallenge echoes a challenge ID back with a one-time code to
// complete authentication. A challenge is consumed by the attempt
// whether or not the code is accepted.
func (c *Client) VerifyChallenge(ctx context.Context, challengeID, code string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login/verify", verifyRequest{
		ChallengeID: challengeID,
		Code:        code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. Servers that require second-factor
// enrollment return the TOTP secret, provisioning URI and a challenge to
// confirm the authenticator; otherwise a token is returned directly.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*SignupResponse, error) {
	var out SignupResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/signup", signupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset link. The response note is identical
// whether or not the account exists; callers must treat it as advisory
// display text only.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*NoteResponse, error) {
	var out NoteResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/password/forgot", forgotPasswordRequest{
		Email: email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a reset token from the
// forgot-password email.
func (c *Client) ResetPassword(ctx context.Context, resetToken, next string) (*NoteResponse, error) {
	var out NoteResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/password/reset", resetPasswordRequest{
		Token: resetToken,
		Next:  next,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
