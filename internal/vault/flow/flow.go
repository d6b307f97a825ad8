// Package flow drives the client side of the authentication protocol:
// credential submission, second-factor challenge verification, factor
// enrollment during signup, and password reset requests.
//
// The controller is a small state machine. Pure validation runs
// synchronously; only backend calls block, and a single request may be
// outstanding per controller at a time. Every transition is published
// to subscribers so the UI reacts to the machine's own state instead of
// polling a status endpoint.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vaultcraft/vaultcraft/pkg/validx"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

// Backend is the slice of the vault service the controller needs.
// *vaultsdk.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, identifier, password string) (*vaultsdk.AuthResponse, error)
	VerifyChallenge(ctx context.Context, challengeID, code string) (*vaultsdk.AuthResponse, error)
	Signup(ctx context.Context, username, email, password string) (*vaultsdk.SignupResponse, error)
	ForgotPassword(ctx context.Context, email string) (*vaultsdk.NoteResponse, error)
}

// ErrBusy is returned when an operation is attempted while another
// request is still in flight. The attempt is rejected locally, never
// queued or raced.
var ErrBusy = errors.New("flow: request already in progress")

// ErrNoChallenge is returned when VerifySecondFactor is called outside
// the AwaitingSecondFactor or EnrollmentPending states.
var ErrNoChallenge = errors.New("flow: no second-factor challenge outstanding")

// Controller is the authentication flow state machine. Construct one
// per authentication surface and share it by reference; it must not be
// copied.
type Controller struct {
	backend Backend
	now     func() time.Time

	mu         sync.Mutex
	mode       Mode
	state      State
	epoch      uint64
	inFlight   bool
	challenge  *Challenge
	enrollment *EnrollmentSecret
	session    *Session
	failure    *Failure
	note       string
	subs       []Subscriber
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock used for challenge expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller in ModeLogin / StateIdle.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		now:     time.Now,
		mode:    ModeLogin,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn to be called after every state transition.
// Subscribers run synchronously in registration order, outside the
// controller's lock.
func (c *Controller) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Snapshot returns the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetMode switches between the login, signup and forgot-password modes.
// Switching discards any outstanding challenge and returns to Idle; a
// response still in flight for the previous mode is ignored on arrival.
func (c *Controller) SetMode(mode Mode) {
	c.mu.Lock()
	c.mode = mode
	c.epoch++
	c.discardLocked()
	snap := c.setStateLocked(StateIdle)
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
}

// Abandon discards the current flow, e.g. when the user navigates away.
// Any in-flight response is ignored when it arrives.
func (c *Controller) Abandon() {
	c.mu.Lock()
	c.epoch++
	c.discardLocked()
	snap := c.setStateLocked(StateIdle)
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
}

// ClearFailure dismisses a failure so the user can edit and resubmit.
// When a live challenge survived the failure (e.g. an empty code was
// rejected locally) the controller returns to the waiting state for it;
// otherwise it returns to Idle.
func (c *Controller) ClearFailure() {
	c.mu.Lock()
	if c.state != StateFailed {
		c.mu.Unlock()
		return
	}
	c.failure = nil
	next := StateIdle
	if c.challenge != nil {
		next = StateAwaitingSecondFactor
		if c.challenge.Origin == OriginSignupEnrollment {
			next = StateEnrollmentPending
		}
	}
	snap := c.setStateLocked(next)
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
}

// SubmitLogin submits first-factor credentials. Empty fields are
// rejected locally. Depending on the backend response the controller
// ends in Authenticated (session minted), AwaitingSecondFactor
// (challenge stored) or Failed.
func (c *Controller) SubmitLogin(ctx context.Context, identifier, secret string) (Snapshot, error) {
	if identifier == "" || secret == "" {
		return c.fail(FailureValidation, "enter identifier and password"), nil
	}

	epoch, err := c.begin()
	if err != nil {
		return c.Snapshot(), err
	}

	resp, callErr := c.backend.Login(ctx, identifier, secret)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		// The flow was abandoned or re-moded while we were waiting;
		// drop the response on the floor.
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}

	var snap Snapshot
	switch {
	case callErr != nil:
		snap = c.failLocked(mapBackendError(callErr))
	case resp.Token != "":
		snap = c.authenticateLocked(resp.Token, resp.Vault, resp.ExpiresAt)
	case resp.ChallengeID != "":
		c.challenge = &Challenge{
			ID:        resp.ChallengeID,
			ExpiresAt: resp.ExpiresAt,
			Origin:    OriginLogin,
		}
		c.note = resp.Note
		snap = c.setStateLocked(StateAwaitingSecondFactor)
	default:
		snap = c.failLocked(Failure{Kind: FailureUnexpected, Message: "unexpected response"})
	}
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return snap, nil
}

// SubmitSignup registers a new account. Local validation runs in order:
// username, email shape, secret confirmation, password policy; the
// first failure short-circuits with no network call.
func (c *Controller) SubmitSignup(ctx context.Context, username, email, secret, confirm string) (Snapshot, error) {
	switch {
	case strings.TrimSpace(username) == "":
		return c.fail(FailureValidation, "username required"), nil
	case !validx.ValidEmail(strings.TrimSpace(email)):
		return c.fail(FailureValidation, "valid email required"), nil
	case secret != confirm:
		return c.fail(FailureValidation, "the passwords do not match"), nil
	}
	if issues := validx.PasswordIssues(secret); issues != "" {
		return c.fail(FailureValidation, "password still needs "+issues), nil
	}

	epoch, err := c.begin()
	if err != nil {
		return c.Snapshot(), err
	}

	resp, callErr := c.backend.Signup(ctx, strings.TrimSpace(username), strings.TrimSpace(email), secret)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}

	var snap Snapshot
	switch {
	case callErr != nil:
		snap = c.failLocked(mapBackendError(callErr))
	case resp.ChallengeID != "":
		c.challenge = &Challenge{
			ID:        resp.ChallengeID,
			ExpiresAt: resp.ExpiresAt,
			Origin:    OriginSignupEnrollment,
		}
		if resp.TOTPSecret != "" {
			c.enrollment = &EnrollmentSecret{Secret: resp.TOTPSecret, URI: resp.TOTPURI}
		}
		c.note = resp.Note
		snap = c.setStateLocked(StateEnrollmentPending)
	case resp.Token != "":
		snap = c.authenticateLocked(resp.Token, "", resp.ExpiresAt)
	default:
		snap = c.failLocked(Failure{Kind: FailureUnexpected, Message: "unexpected response"})
	}
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return snap, nil
}

// VerifySecondFactor echoes the stored challenge back with a one-time
// code. The challenge expiry is checked locally first; an expired
// challenge fails with FailureChallengeExpired and no network call. A
// backend attempt consumes the challenge whether or not the code is
// accepted, so a rejected code requires restarting from SubmitLogin or
// SubmitSignup. A locally rejected empty code leaves it intact.
func (c *Controller) VerifySecondFactor(ctx context.Context, code string) (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateAwaitingSecondFactor && c.state != StateEnrollmentPending {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNoChallenge
	}
	if c.inFlight {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrBusy
	}
	challenge := c.challenge
	if challenge == nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNoChallenge
	}

	if code == "" {
		snap := c.failLocked(Failure{Kind: FailureValidation, Message: "enter the code from your authenticator app"})
		subs := c.subsLocked()
		c.mu.Unlock()
		publish(subs, snap)
		return snap, nil
	}

	if !c.now().Before(challenge.ExpiresAt) {
		c.discardLocked()
		snap := c.failLocked(Failure{Kind: FailureChallengeExpired, Message: "challenge expired; sign in again"})
		subs := c.subsLocked()
		c.mu.Unlock()
		publish(subs, snap)
		return snap, nil
	}

	c.inFlight = true
	epoch := c.epoch
	snap := c.setStateLocked(StateVerifying)
	subs := c.subsLocked()
	c.mu.Unlock()
	publish(subs, snap)

	resp, callErr := c.backend.VerifyChallenge(ctx, challenge.ID, code)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}

	// Consumed regardless of outcome.
	c.challenge = nil
	c.enrollment = nil

	switch {
	case callErr != nil:
		failure := mapBackendError(callErr)
		if failure.Kind == FailureAuth && strings.Contains(strings.ToLower(failure.Message), "expired") {
			failure.Kind = FailureChallengeExpired
		}
		snap = c.failLocked(failure)
	case resp.Token == "":
		snap = c.failLocked(Failure{Kind: FailureUnexpected, Message: "unexpected response"})
	default:
		snap = c.authenticateLocked(resp.Token, resp.Vault, resp.ExpiresAt)
	}
	subs = c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return snap, nil
}

// RequestPasswordReset asks the backend to mail a reset link. The
// response note is advisory and identical whether or not the account
// exists; the controller neither inspects nor branches on it.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) (Snapshot, error) {
	if !validx.ValidEmail(strings.TrimSpace(email)) {
		return c.fail(FailureValidation, "valid email required"), nil
	}

	epoch, err := c.begin()
	if err != nil {
		return c.Snapshot(), err
	}

	resp, callErr := c.backend.ForgotPassword(ctx, strings.TrimSpace(email))

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}

	var snap Snapshot
	if callErr != nil {
		snap = c.failLocked(mapBackendError(callErr))
	} else {
		c.note = resp.Note
		snap = c.setStateLocked(StateIdle)
	}
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return snap, nil
}

// begin moves the controller into Submitting and marks a request in
// flight, rejecting with ErrBusy if one already is. Returns the epoch
// the eventual response must match to be applied.
func (c *Controller) begin() (uint64, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return 0, ErrBusy
	}
	c.inFlight = true
	c.failure = nil
	epoch := c.epoch
	snap := c.setStateLocked(StateSubmitting)
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return epoch, nil
}

// fail transitions to Failed with a local failure and publishes it.
func (c *Controller) fail(kind FailureKind, msg string) Snapshot {
	c.mu.Lock()
	snap := c.failLocked(Failure{Kind: kind, Message: msg})
	subs := c.subsLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return snap
}

func (c *Controller) failLocked(f Failure) Snapshot {
	c.failure = &f
	return c.setStateLocked(StateFailed)
}

func (c *Controller) authenticateLocked(token, vault string, expiresAt time.Time) Snapshot {
	c.session = &Session{Token: token, Vault: vault, ExpiresAt: expiresAt}
	c.discardLocked()
	return c.setStateLocked(StateAuthenticated)
}

// discardLocked drops the outstanding challenge, enrollment secret and
// failure.
func (c *Controller) discardLocked() {
	c.challenge = nil
	c.enrollment = nil
	c.failure = nil
	c.note = ""
}

func (c *Controller) setStateLocked(next State) Snapshot {
	c.state = next
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State: c.state,
		Mode:  c.mode,
		Note:  c.note,
	}
	if c.failure != nil {
		f := *c.failure
		snap.Failure = &f
	}
	if c.challenge != nil {
		ch := *c.challenge
		snap.Challenge = &ch
	}
	if c.enrollment != nil {
		e := *c.enrollment
		snap.Enrollment = &e
	}
	if c.session != nil && c.state == StateAuthenticated {
		s := *c.session
		snap.Session = &s
	}
	return snap
}

func (c *Controller) subsLocked() []Subscriber {
	return append([]Subscriber(nil), c.subs...)
}

func publish(subs []Subscriber, snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// mapBackendError folds SDK and transport errors into the failure
// taxonomy. A 401 is an auth rejection; other API errors and transport
// failures are network failures.
func mapBackendError(err error) Failure {
	var apiErr *vaultsdk.APIError
	if errors.As(err, &apiErr) {
		if vaultsdk.IsAuthFailure(err) {
			return Failure{Kind: FailureAuth, Message: apiErr.Message}
		}
		return Failure{Kind: FailureNetwork, Message: apiErr.Message}
	}
	return Failure{Kind: FailureNetwork, Message: err.Error()}
}
