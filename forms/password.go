package forms

import (
	"context"
	"strings"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/rs/zerolog/log"
)

// ForgotPassword asks the API to email a reset link.
type ForgotPassword struct {
	form
	gateway gateway.Gateway
}

func NewForgotPassword(gw gateway.Gateway) *ForgotPassword {
	return &ForgotPassword{gateway: gw}
}

func (f *ForgotPassword) Submit(ctx context.Context, email string) Outcome {
	gen := f.start()
	email = strings.TrimSpace(email)
	if email == "" {
		return f.finish(gen, invalid(MsgEmailRequired))
	}

	result, err := f.gateway.ForgotPassword(ctx, email)
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		log.Warn().Err(err).Msg("forgot password request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}
	if !result.Succeeded() {
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgResetEmailFailed)))
	}
	return f.finish(gen, Outcome{Kind: OutcomeSuccess, Message: result.Message(MsgResetLinkSent), Email: email})
}

type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// ResetPassword sets a new password using the token from the reset link.
type ResetPassword struct {
	form
	gateway gateway.Gateway
}

func NewResetPassword(gw gateway.Gateway) *ResetPassword {
	return &ResetPassword{gateway: gw}
}

func (f *ResetPassword) Submit(ctx context.Context, in ResetPasswordInput) Outcome {
	gen := f.start()

	switch {
	case strings.TrimSpace(in.Token) == "":
		return f.finish(gen, invalid(MsgResetTokenMissing))
	case blank(in.Password, in.ConfirmPassword):
		return f.finish(gen, invalid(MsgAllFieldsRequired))
	case in.Password != in.ConfirmPassword:
		return f.finish(gen, invalid(MsgPasswordsDontMatch))
	}
	if err := users.ValidatePasswordStrength(in.Password); err != nil {
		return f.finish(gen, invalid(sentence(err.Error())))
	}

	result, err := f.gateway.ResetPassword(ctx, strings.TrimSpace(in.Token), in.Password)
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		log.Warn().Err(err).Msg("reset password request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}
	if !result.Succeeded() {
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgPasswordResetFailed)))
	}
	return f.finish(gen, Outcome{Kind: OutcomeSuccess, Message: result.Message(MsgPasswordReset)})
}
