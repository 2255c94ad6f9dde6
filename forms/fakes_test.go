package forms_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/users"
)

// fakeGateway answers every call with result/err and records the calls made.
type fakeGateway struct {
	mu     sync.Mutex
	calls  []string
	result gateway.Result
	err    error

	lastCredentials gateway.Credentials
	lastManager     gateway.ManagerSignupRequest
	// inFlight runs while a request is "on the wire"
	inFlight func()
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) record(call string) (gateway.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	inFlight := g.inFlight
	g.mu.Unlock()
	if inFlight != nil {
		inFlight()
	}
	return g.result, g.err
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) Login(_ context.Context, role users.Role, creds gateway.Credentials) (gateway.Result, error) {
	g.lastCredentials = creds
	return g.record("login_" + role.Path())
}

func (g *fakeGateway) FetchCurrentUser(context.Context, string) (gateway.Result, error) {
	return g.record("me")
}

func (g *fakeGateway) VerifyTwoFactor(context.Context, gateway.TwoFactorRequest) (gateway.Result, error) {
	return g.record("verify_2fa")
}

func (g *fakeGateway) PlayerSignup(context.Context, gateway.PlayerSignupRequest) (gateway.Result, error) {
	return g.record("signup_player")
}

func (g *fakeGateway) ManagerSignup(_ context.Context, req gateway.ManagerSignupRequest) (gateway.Result, error) {
	g.lastManager = req
	return g.record("signup_manager")
}

func (g *fakeGateway) VerifyEmail(context.Context, string, string) (gateway.Result, error) {
	return g.record("verify_email")
}

func (g *fakeGateway) ForgotPassword(context.Context, string) (gateway.Result, error) {
	return g.record("forgot_password")
}

func (g *fakeGateway) ResetPassword(context.Context, string, string) (gateway.Result, error) {
	return g.record("reset_password")
}

type fakeCommitter struct {
	commits []sessions.Session
	err     error
}

func (c *fakeCommitter) Commit(_ context.Context, session sessions.Session) error {
	if c.err != nil {
		return c.err
	}
	c.commits = append(c.commits, session)
	return nil
}

func loginOK(role string) gateway.Result {
	return gateway.Result{
		Status: http.StatusOK,
		Body: gateway.Response{User: gateway.UserPayload{
			FullName: "Test User",
			Email:    "user@example.com",
			Role:     role,
			Token:    "token-" + role,
		}},
	}
}

func stepUpRequired() gateway.Result {
	return gateway.Result{
		Status: http.StatusUnauthorized,
		Body:   gateway.Response{Msg: "2FA required", TempToken: "temp-abc"},
	}
}
