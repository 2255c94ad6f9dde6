package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type SignInInput struct {
	Email    string
	Password string
	// RecaptchaToken is sent as the secondary proof token
	RecaptchaToken string
}

// SignIn is the sign-in form for one role. A credential that belongs to a
// different role is rejected even when the API accepted it.
type SignIn struct {
	form
	role             users.Role
	gateway          gateway.Gateway
	sessions         Committer
	stepUp           StepUpStarter
	requireRecaptcha bool
	logger           zerolog.Logger
}

// SignInOption defines a function type to modify the SignIn instance.
type SignInOption func(*SignIn)

// WithRecaptchaRequired makes the reCAPTCHA token mandatory. Only manager
// sign-in asks for one.
func WithRecaptchaRequired(required bool) SignInOption {
	return func(f *SignIn) {
		f.requireRecaptcha = required
	}
}

func WithLogger(logger zerolog.Logger) SignInOption {
	return func(f *SignIn) {
		f.logger = logger
	}
}

func NewPlayerSignIn(gw gateway.Gateway, committer Committer, stepUp StepUpStarter, options ...SignInOption) *SignIn {
	return newSignIn(users.RolePlayer, gw, committer, stepUp, options...)
}

func NewManagerSignIn(gw gateway.Gateway, committer Committer, stepUp StepUpStarter, options ...SignInOption) *SignIn {
	return newSignIn(users.RoleManager, gw, committer, stepUp, options...)
}

func newSignIn(role users.Role, gw gateway.Gateway, committer Committer, stepUp StepUpStarter, options ...SignInOption) *SignIn {
	f := &SignIn{
		role:     role,
		gateway:  gw,
		sessions: committer,
		stepUp:   stepUp,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *SignIn) Role() users.Role {
	return f.role
}

// Submit signs in. Possible outcomes are Success (session committed), StepUp
// (handed to the second factor flow, nothing committed yet),
// VerificationRequired (player has not confirmed their email), Failure and
// Dismissed.
func (f *SignIn) Submit(ctx context.Context, in SignInInput) Outcome {
	gen := f.start()
	email := strings.TrimSpace(in.Email)

	if blank(email, in.Password) {
		return f.finish(gen, invalid(MsgCredentialsRequired))
	}
	if f.role == users.RoleManager && f.requireRecaptcha && strings.TrimSpace(in.RecaptchaToken) == "" {
		return f.finish(gen, invalid(MsgRecaptchaRequired))
	}

	result, err := f.gateway.Login(ctx, f.role, gateway.Credentials{
		Email:               email,
		Password:            in.Password,
		SecondaryProofToken: in.RecaptchaToken,
	})
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		f.logger.Warn().Err(err).Str("role", string(f.role)).Msg("sign in request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}

	switch {
	case f.role == users.RolePlayer && result.NotVerified():
		return f.finish(gen, Outcome{
			Kind:    OutcomeVerificationRequired,
			Message: result.Message(MsgAccountNotVerified),
			Email:   email,
			Err:     sperrors.WithMessage(sperrors.ErrNotVerified, result.Message(MsgAccountNotVerified)),
		})

	case result.StepUpRequired():
		return f.finish(gen, f.beginStepUp(email, result.Body.TempToken))

	case !result.Succeeded():
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgSignInFailed)))
	}

	session, outcome, ok := f.sessionFrom(result)
	if !ok {
		return f.finish(gen, outcome)
	}
	if err := f.sessions.Commit(ctx, session); err != nil {
		f.logger.Error().Err(err).Msg("failed to commit session")
		return f.finish(gen, failure(sperrors.ErrInternal, MsgSignInFailed))
	}
	return f.finish(gen, Outcome{Kind: OutcomeSuccess, Email: session.Profile.Email, Session: session})
}

// beginStepUp suspends the login. The continuation applies the same role
// check before committing the session the second factor produced.
func (f *SignIn) beginStepUp(email, tempToken string) Outcome {
	if f.stepUp == nil {
		return failure(sperrors.ErrUnsupported, MsgSignInFailed)
	}

	err := f.stepUp.Begin(email, tempToken, func(ctx context.Context, session sessions.Session) error {
		if session.Profile.Role != f.role {
			return sperrors.WithMessage(sperrors.ErrRoleMismatch, f.roleMismatchMessage())
		}
		return f.sessions.Commit(ctx, session)
	})
	if err != nil {
		return failure(sperrors.ErrInternal, MsgSignInFailed)
	}
	return Outcome{Kind: OutcomeStepUp, Email: email}
}

func (f *SignIn) sessionFrom(result gateway.Result) (sessions.Session, Outcome, bool) {
	if strings.TrimSpace(result.Body.User.Role) == "" {
		return sessions.Session{}, failure(sperrors.ErrRoleMismatch, MsgRoleMissing), false
	}
	role, err := users.ParseRole(result.Body.User.Role)
	if err != nil {
		return sessions.Session{}, failure(sperrors.ErrRoleMismatch, MsgRoleMissing), false
	}
	if role != f.role {
		return sessions.Session{}, failure(sperrors.ErrRoleMismatch, f.roleMismatchMessage()), false
	}

	session, err := sessions.FromResult(result)
	if err != nil {
		return sessions.Session{}, failure(sperrors.ErrAuthentication, MsgSignInFailed), false
	}
	return session, Outcome{}, true
}

func (f *SignIn) roleMismatchMessage() string {
	return fmt.Sprintf(MsgRoleMismatch, f.role.Path())
}
