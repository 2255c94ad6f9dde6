// Package forms holds the credential forms: sign-in, sign-up, password reset
// and email verification. Each form validates its input locally, delegates to
// the gateway, and reports an Outcome with a message fit for the user.
package forms

import (
	"context"
	"regexp"
	"strings"
	"sync"

	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/stepup"
)

// User facing messages
const (
	MsgSignInFailed          = "Sign in failed. Please check your credentials."
	MsgNetworkError          = "Network error. Please try again."
	MsgCredentialsRequired   = "Email and password are required."
	MsgRecaptchaRequired     = "Please complete the reCAPTCHA verification."
	MsgRoleMissing           = "Access denied. User role is missing or invalid."
	MsgRoleMismatch          = "Access denied. This account is not a %s account."
	MsgAccountNotVerified    = "Your account is not verified. Please check your email for the verification code."
	MsgTermsRequired         = "You must agree to the Terms of Service and Privacy Policy."
	MsgAllFieldsRequired     = "All fields are required."
	MsgManagerFieldsRequired = "All fields except attachment are required."
	MsgAttachmentRequired    = "Please upload the required document."
	MsgNationalIDFormat      = "CIN must be exactly 8 digits."
	MsgPhoneFormat           = "Phone number must be exactly 8 digits."
	MsgPasswordsDontMatch    = "Passwords do not match."
	MsgRegistrationFailed    = "Registration failed. Please try again."
	MsgManagerSignupFailed   = "Manager registration failed"
	MsgPendingApproval       = "Account created successfully! Your application is pending admin approval. You will receive an email once approved."
	MsgCheckEmail            = "Account created! Please check your email for the verification code."
	MsgEmailRequired         = "Please enter your email address."
	MsgResetLinkSent         = "If an account exists for this email, a password reset link has been sent."
	MsgResetEmailFailed      = "Failed to send reset email."
	MsgResetTokenMissing     = "Invalid or missing reset token."
	MsgPasswordReset         = "Password reset successfully. You can now sign in."
	MsgPasswordResetFailed   = "Failed to reset password."
	MsgVerificationRequired  = "Email and verification code are required."
	MsgEmailVerified         = "Email verified successfully. You can now sign in."
	MsgVerificationFailed    = "Verification failed."
)

var eightDigits = regexp.MustCompile(`^\d{8}$`)

type OutcomeKind int

const (
	OutcomeFailure OutcomeKind = iota
	OutcomeSuccess
	OutcomeStepUp
	OutcomeVerificationRequired
	OutcomePendingApproval
	// OutcomeDismissed means the form was dismissed while its request was in
	// flight and the response was discarded.
	OutcomeDismissed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "Success"
	case OutcomeStepUp:
		return "StepUp"
	case OutcomeVerificationRequired:
		return "VerificationRequired"
	case OutcomePendingApproval:
		return "PendingApproval"
	case OutcomeDismissed:
		return "Dismissed"
	}
	return "Failure"
}

// Outcome is the result of submitting a form. Err is set for failures and
// classifies them (ErrValidation, ErrRoleMismatch, ErrAuthentication,
// ErrTransport).
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Email   string
	Session sessions.Session
	Err     error
}

// Committer receives the session of a successful sign-in.
type Committer interface {
	Commit(ctx context.Context, session sessions.Session) error
}

// StepUpStarter hands a login over to the second factor flow.
type StepUpStarter interface {
	Begin(email, tempToken string, continuation stepup.Continuation) error
}

var (
	_ Committer     = (*sessions.Store)(nil)
	_ StepUpStarter = (*stepup.Flow)(nil)
)

// form is the loading and error state shared by every form. Each submit and
// each Dismiss starts a new generation; a response that comes back to a
// stale generation is discarded.
type form struct {
	mu         sync.Mutex
	loading    bool
	errMsg     string
	generation int
}

func (f *form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// ErrorMessage returns the message of the last failure, "" when there is
// none.
func (f *form) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Dismiss closes the form. Responses to requests already in flight are
// discarded.
func (f *form) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.loading = false
	f.errMsg = ""
}

func (f *form) start() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.loading = true
	f.errMsg = ""
	return f.generation
}

// stale reports whether the form was dismissed or resubmitted since gen
// started.
func (f *form) stale(gen int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation != gen
}

func (f *form) finish(gen int, outcome Outcome) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		return Outcome{Kind: OutcomeDismissed}
	}
	f.loading = false
	if outcome.Kind == OutcomeFailure || outcome.Kind == OutcomeVerificationRequired {
		f.errMsg = outcome.Message
	}
	return outcome
}

func failure(kind error, message string) Outcome {
	return Outcome{
		Kind:    OutcomeFailure,
		Message: message,
		Err:     sperrors.WithMessage(kind, message),
	}
}

func invalid(message string) Outcome {
	return failure(sperrors.ErrValidation, message)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// sentence capitalizes the first letter of a validation message.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
