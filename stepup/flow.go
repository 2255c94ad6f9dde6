// Package stepup implements the second factor (2FA) verification that
// suspends a login until the user confirms a code.
package stepup

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MsgInvalidCode  = "Invalid verification code."
	MsgNetworkError = "Network error. Please try again."
)

type State int

const (
	Idle State = iota
	AwaitingCode
	Verified
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingCode:
		return "AwaitingCode"
	case Verified:
		return "Verified"
	case Cancelled:
		return "Cancelled"
	}
	return "Idle"
}

// Verifier confirms a second factor code.
type Verifier interface {
	VerifyTwoFactor(ctx context.Context, req gateway.TwoFactorRequest) (gateway.Result, error)
}

// Continuation resumes the suspended login with the final session.
type Continuation func(ctx context.Context, session sessions.Session) error

// Flow is the Idle -> AwaitingCode -> Verified | Cancelled state machine.
// The temporary token lives only in memory for the duration of one attempt.
type Flow struct {
	verifier Verifier
	logger   zerolog.Logger

	mu           sync.Mutex
	state        State
	email        string
	tempToken    string
	continuation Continuation
	once         *sync.Once
	attempt      int
}

// FlowOption defines a function type to modify the Flow instance.
type FlowOption func(*Flow)

func WithLogger(logger zerolog.Logger) FlowOption {
	return func(f *Flow) {
		f.logger = logger
	}
}

func NewFlow(verifier Verifier, options ...FlowOption) *Flow {
	f := &Flow{
		verifier: verifier,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the address the pending verification is for.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Begin suspends a login pending the second factor. A previous attempt that
// has not finished is abandoned and its continuation will never run.
func (f *Flow) Begin(email, tempToken string, continuation Continuation) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(tempToken) == "" {
		return sperrors.Wrapf(sperrors.ErrValidation, "[Flow.Begin] email and temporary token are required")
	}
	if continuation == nil {
		return sperrors.Wrapf(sperrors.ErrValidation, "[Flow.Begin] continuation is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempt++
	f.state = AwaitingCode
	f.email = email
	f.tempToken = tempToken
	f.continuation = continuation
	f.once = &sync.Once{}
	return nil
}

// Submit verifies code. On success the flow is Verified and the continuation
// has run exactly once; its error is returned. A rejected code keeps the flow
// AwaitingCode and returns a MessageError with the API's message. If the
// flow is cancelled while the request is in flight, the response is
// discarded and ErrStepUpCancelled returned.
func (f *Flow) Submit(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return sperrors.WithMessage(sperrors.ErrValidation, "Please enter the verification code.")
	}

	f.mu.Lock()
	if f.state != AwaitingCode {
		f.mu.Unlock()
		return sperrors.Wrapf(sperrors.ErrStepUpInactive, "[Flow.Submit] state %s", f.state)
	}
	attempt := f.attempt
	req := gateway.TwoFactorRequest{Email: f.email, TempToken: f.tempToken, Code: code}
	f.mu.Unlock()

	result, err := f.verifier.VerifyTwoFactor(ctx, req)
	if err != nil {
		f.logger.Warn().Err(err).Msg("second factor verification request failed")
		return sperrors.WithMessage(sperrors.ErrTransport, MsgNetworkError)
	}

	session, sessionErr := sessions.FromResult(result)

	f.mu.Lock()
	if f.attempt != attempt || f.state != AwaitingCode {
		state := f.state
		f.mu.Unlock()
		if state == Cancelled {
			return sperrors.Wrapf(sperrors.ErrStepUpCancelled, "[Flow.Submit]")
		}
		return sperrors.Wrapf(sperrors.ErrStepUpInactive, "[Flow.Submit] state %s", state)
	}
	if sessionErr != nil {
		f.mu.Unlock()
		return sperrors.WithMessage(sperrors.ErrAuthentication, result.Message(MsgInvalidCode))
	}
	f.state = Verified
	f.tempToken = ""
	continuation, once := f.continuation, f.once
	f.continuation = nil
	f.mu.Unlock()

	var contErr error
	once.Do(func() {
		contErr = continuation(ctx, session)
	})
	return contErr
}

// Cancel abandons the verification. The temporary token is discarded and the
// continuation will not run. Cancelling an idle or finished flow does nothing.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != AwaitingCode {
		return
	}
	f.state = Cancelled
	f.tempToken = ""
	f.continuation = nil
}
