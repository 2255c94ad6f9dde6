// Package sessions owns the answer to "is a user logged in, and as whom".
package sessions

import (
	"strings"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/users"
)

// Status of the Store's state machine
type Status int

const (
	LoggedOut Status = iota
	LoggedIn
)

func (s Status) String() string {
	if s == LoggedIn {
		return "LoggedIn"
	}
	return "LoggedOut"
}

// Session is the authenticated user: an opaque bearer token plus the profile
// summary returned alongside it.
type Session struct {
	Token   string
	Profile users.Profile
}

// Valid reports whether the session is fully populated. Partial sessions are
// never persisted.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && s.Profile.Valid()
}

// State is a snapshot of the Store. Session is only set when Status is
// LoggedIn.
type State struct {
	Status  Status
	Session Session
}

func (s State) Authenticated() bool {
	return s.Status == LoggedIn
}

func (s State) Role() users.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Session.Profile.Role
}

func loggedIn(session Session) State {
	return State{Status: LoggedIn, Session: session}
}

// FromResult builds the session carried by a successful login, second factor
// or sign-up response.
func FromResult(result gateway.Result) (Session, error) {
	if !result.Succeeded() {
		return Session{}, sperrors.Wrapf(sperrors.ErrAuthentication, "[sessions.FromResult] status %d", result.Status)
	}
	profile, err := result.Profile()
	if err != nil {
		return Session{}, sperrors.Wrapf(sperrors.ErrIncompleteSession, "[sessions.FromResult] %v", err)
	}
	session := Session{Token: result.Body.User.Token, Profile: profile}
	if !session.Valid() {
		return Session{}, sperrors.Wrapf(sperrors.ErrIncompleteSession, "[sessions.FromResult]")
	}
	return session, nil
}
