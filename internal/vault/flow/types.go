package flow

import "time"

// State is the controller's position in the authentication flow.
type State int

const (
	// StateIdle means no flow is in progress; inputs are being edited.
	StateIdle State = iota
	// StateSubmitting means first-factor credentials (or a signup or
	// reset request) are in flight.
	StateSubmitting
	// StateAwaitingSecondFactor means the backend issued a challenge
	// and the controller is waiting for the user's one-time code.
	StateAwaitingSecondFactor
	// StateEnrollmentPending means signup returned a factor-enrollment
	// challenge; the user must prove possession of the new factor.
	StateEnrollmentPending
	// StateVerifying means a second-factor code is in flight.
	StateVerifying
	// StateAuthenticated means a session token was minted.
	StateAuthenticated
	// StateFailed means the last operation failed; see Snapshot.Failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StateEnrollmentPending:
		return "enrollment_pending"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode selects which flow the controller is driving.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
	ModeForgotPassword
)

func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeSignup:
		return "signup"
	case ModeForgotPassword:
		return "forgot_password"
	default:
		return "unknown"
	}
}

// FailureKind classifies why a flow ended in StateFailed.
type FailureKind int

const (
	// FailureValidation means a local check rejected the input before
	// any network call.
	FailureValidation FailureKind = iota
	// FailureChallengeExpired means the second-factor window lapsed;
	// the user must restart from credentials.
	FailureChallengeExpired
	// FailureAuth means the backend rejected the credentials or code.
	FailureAuth
	// FailureNetwork means the request could not complete or the
	// backend returned a non-auth error.
	FailureNetwork
	// FailureUnexpected means the backend answered with a shape the
	// client does not understand.
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureChallengeExpired:
		return "challenge_expired"
	case FailureAuth:
		return "auth"
	case FailureNetwork:
		return "network"
	case FailureUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Failure describes a failed flow as data rather than an error value;
// failures are states the user recovers from, not conditions that
// unwind the caller.
type Failure struct {
	Kind    FailureKind
	Message string
}

// ChallengeOrigin records which flow produced a challenge, so the UI
// can phrase the prompt accordingly.
type ChallengeOrigin int

const (
	// OriginLogin is a routine second-factor check for an enrolled user.
	OriginLogin ChallengeOrigin = iota
	// OriginSignupEnrollment proves possession of a newly issued factor.
	OriginSignupEnrollment
)

// Challenge is an outstanding second-factor challenge. The ID is an
// opaque handle echoed back with the code; the secret behind it never
// leaves the backend.
type Challenge struct {
	ID        string
	ExpiresAt time.Time
	Origin    ChallengeOrigin
}

// EnrollmentSecret is the provisioning material issued during signup
// for the user to load into an authenticator app. It is shown once and
// dropped as soon as the challenge resolves.
type EnrollmentSecret struct {
	Secret string
	URI    string
}

// Session is the minted credential of an authenticated flow.
type Session struct {
	Token     string
	Vault     string
	ExpiresAt time.Time
}

// Snapshot is an immutable copy of the controller's state, safe to read
// after the controller has moved on. Pointer fields are nil when not
// applicable to the current state.
type Snapshot struct {
	State      State
	Mode       Mode
	Failure    *Failure
	Challenge  *Challenge
	Enrollment *EnrollmentSecret
	Session    *Session
	Note       string
}

// Subscriber receives every published snapshot, in order, on the
// goroutine that caused the transition. Keep it fast; the controller
// is usable from within a subscriber but re-entrant calls see the
// post-transition state.
type Subscriber func(Snapshot)
