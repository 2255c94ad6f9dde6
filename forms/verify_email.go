package forms

import (
	"context"
	"strings"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/rs/zerolog/log"
)

// VerifyEmail confirms a player's email address with the emailed code. When
// the API answers with a token the player is signed in.
type VerifyEmail struct {
	form
	gateway  gateway.Gateway
	sessions Committer
}

func NewVerifyEmail(gw gateway.Gateway, committer Committer) *VerifyEmail {
	return &VerifyEmail{gateway: gw, sessions: committer}
}

func (f *VerifyEmail) Submit(ctx context.Context, email, code string) Outcome {
	gen := f.start()
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if blank(email, code) {
		return f.finish(gen, invalid(MsgVerificationRequired))
	}

	result, err := f.gateway.VerifyEmail(ctx, email, code)
	if f.stale(gen) {
		return Outcome{Kind: OutcomeDismissed}
	}
	if err != nil {
		log.Warn().Err(err).Msg("verify email request failed")
		return f.finish(gen, failure(sperrors.ErrTransport, MsgNetworkError))
	}
	if !result.Succeeded() {
		return f.finish(gen, failure(sperrors.ErrAuthentication, result.Message(MsgVerificationFailed)))
	}

	if result.Body.User.Token == "" {
		return f.finish(gen, Outcome{Kind: OutcomeSuccess, Message: result.Message(MsgEmailVerified), Email: email})
	}
	session, err := sessions.FromResult(result)
	if err != nil {
		return f.finish(gen, Outcome{Kind: OutcomeSuccess, Message: result.Message(MsgEmailVerified), Email: email})
	}
	if err := f.sessions.Commit(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to commit session after email verification")
		return f.finish(gen, failure(sperrors.ErrInternal, MsgVerificationFailed))
	}
	return f.finish(gen, Outcome{Kind: OutcomeSuccess, Message: result.Message(MsgEmailVerified), Email: email, Session: session})
}
