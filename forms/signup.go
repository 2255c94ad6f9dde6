package forms

import (
	"context"
	"strings"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/rs/zerolog/log"
)

type PlayerSignUpInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// PlayerSignUp registers a player. Depending on the account state the API
// either signs the player in straight away or asks for email verification.
type PlayerSignUp struct {
	form
	gateway  gateway.Gateway
	sessions Committer
}

func NewPlayerSignUp(gw gateway.Gateway, committer Committer) *PlayerSignUp {
	return &PlayerSignUp{gateway: gw, sessions: committer}
}

func (f *PlayerSignUp) Submit(ctx context.Context, in PlayerSignUpInput) Outcome {
	gen := f.start()
	email := strings.TrimSpace(in.Email)

	switch {
	case !in.AcceptTerms:
		return f.finish(gen, invalid(MsgTermsRequired))
	case blank(in.FullName, email, in.Password, in.ConfirmPassword):
		return f.finish(gen, invalid(MsgAllFieldsRequired))
	case in.Password != in.ConfirmPassword:
		return f.finish(gen, invalid(MsgPasswordsDontMatch))
	}
	if err := users.ValidatePasswordStrength(in.Password); err != nil {
		return f.finish(gen, invalid(sentence(err.Error())))
	}

	result, err := f.gateway.PlayerSignup(ctx, gateway.PlayerSignupRequest{
		FullName: strings.TrimSpace(in.FullName),
		Email:    email,
		Password: in.Password,
	})
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		log.Warn().Err(err).Msg("player sign up request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}
	if !result.Succeeded() {
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgRegistrationFailed)))
	}

	if result.Body.User.Token == "" {
		return f.finish(gen, Outcome{
			Kind:    OutcomeVerificationRequired,
			Message: result.Message(MsgCheckEmail),
			Email:   email,
		})
	}

	session, err := sessions.FromResult(result)
	if err != nil {
		return f.finish(gen, failure(sperrors.ErrAuthentication, MsgRegistrationFailed))
	}
	if err := f.sessions.Commit(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to commit session after sign up")
		return f.finish(gen, failure(sperrors.ErrInternal, MsgRegistrationFailed))
	}
	return f.finish(gen, Outcome{Kind: OutcomeSuccess, Email: email, Session: session})
}

type ManagerSignUpInput struct {
	FullName    string
	Email       string
	CompanyName string
	NationalID  string
	PhoneNumber string
	Attachment  gateway.Attachment
	AcceptTerms bool
}

// ManagerSignUp submits a manager application. Success never creates a
// session: the account waits for an administrator's approval.
type ManagerSignUp struct {
	form
	gateway gateway.Gateway
}

func NewManagerSignUp(gw gateway.Gateway) *ManagerSignUp {
	return &ManagerSignUp{gateway: gw}
}

func (f *ManagerSignUp) Submit(ctx context.Context, in ManagerSignUpInput) Outcome {
	gen := f.start()
	if outcome, ok := validateManagerSignUp(in); !ok {
		return f.finish(gen, outcome)
	}

	result, err := f.gateway.ManagerSignup(ctx, gateway.ManagerSignupRequest{
		FullName:    strings.TrimSpace(in.FullName),
		Email:       strings.TrimSpace(in.Email),
		CompanyName: strings.TrimSpace(in.CompanyName),
		NationalID:  in.NationalID,
		PhoneNumber: in.PhoneNumber,
		Attachment:  in.Attachment,
	})
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		log.Warn().Err(err).Msg("manager sign up request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}
	if !result.Succeeded() {
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgManagerSignupFailed)))
	}
	return f.finish(gen, Outcome{
		Kind:    OutcomePendingApproval,
		Message: MsgPendingApproval,
		Email:   strings.TrimSpace(in.Email),
	})
}

func validateManagerSignUp(in ManagerSignUpInput) (Outcome, bool) {
	switch {
	case !in.AcceptTerms:
		return invalid(MsgTermsRequired), false
	case blank(in.FullName, in.Email, in.CompanyName, in.NationalID, in.PhoneNumber):
		return invalid(MsgManagerFieldsRequired), false
	case in.Attachment.Content == nil:
		return invalid(MsgAttachmentRequired), false
	case !eightDigits.MatchString(in.NationalID):
		return invalid(MsgNationalIDFormat), false
	case !eightDigits.MatchString(in.PhoneNumber):
		return invalid(MsgPhoneFormat), false
	}
	return Outcome{}, true
}
