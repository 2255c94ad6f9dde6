package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/sportify-auth-client/gateway"
	"github.com/jrsteele09/sportify-auth-client/internal/config"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/mockapi"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "Secret123"

type fixture struct {
	api     *mockapi.Server
	outbox  *mockapi.Outbox
	gateway *gateway.HTTPGateway
	reg     *prometheus.Registry
}

func newFixture(t *testing.T, options ...mockapi.ServerOption) fixture {
	t.Helper()
	outbox := &mockapi.Outbox{}
	options = append([]mockapi.ServerOption{
		mockapi.WithMailer(outbox),
		mockapi.WithCodeGenerator(func() string { return "123456" }),
	}, options...)
	api := mockapi.New(config.New(), options...)

	seed := []mockapi.Account{
		{FullName: "Jane Player", Email: "jane@example.com", Role: users.RolePlayer, Verified: true, ProfileImage: "uploads/jane.png"},
		{FullName: "Max Manager", Email: "max@example.com", Role: users.RoleManager, Approved: true},
		{FullName: "Tess TwoFactor", Email: "tess@example.com", Role: users.RolePlayer, Verified: true, TwoFactor: true},
		{FullName: "Una Unverified", Email: "una@example.com", Role: users.RolePlayer},
	}
	for _, account := range seed {
		require.NoError(t, api.SeedAccount(account, password))
	}

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	gw, err := gateway.New(srv.URL+mockapi.APIPrefix, gateway.WithRegisterer(reg), gateway.WithTimeout(5*time.Second))
	require.NoError(t, err)

	return fixture{api: api, outbox: outbox, gateway: gw, reg: reg}
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := gateway.New("not a url")
	require.Error(t, err)

	_, err = gateway.New("/relative/api")
	require.Error(t, err)
}

func TestLogin_FlatResponse(t *testing.T) {
	f := newFixture(t)

	result, err := f.gateway.Login(context.Background(), users.RolePlayer, gateway.Credentials{Email: "jane@example.com", Password: password})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.NotEmpty(t, result.Body.User.Token)

	profile, err := result.Profile()
	require.NoError(t, err)
	require.Equal(t, users.Profile{
		FullName:         "Jane Player",
		Email:            "jane@example.com",
		Role:             users.RolePlayer,
		ProfileImagePath: "uploads/jane.png",
	}, profile)

	require.Equal(t, 1.0, testutil.ToFloat64(f.gateway.Metrics().Requests.WithLabelValues("login_player", "2xx")))
}

func TestLogin_Outcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		result, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "jane@example.com", Password: "nope"})
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, result.Status)
		require.Equal(t, "Invalid credentials", result.Message("fallback"))
		require.False(t, result.StepUpRequired())
	})

	t.Run("role mismatch is a successful exchange", func(t *testing.T) {
		result, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "max@example.com", Password: password})
		require.NoError(t, err)
		require.True(t, result.Succeeded())
		require.Equal(t, "Manager", result.Body.User.Role)
	})

	t.Run("step up", func(t *testing.T) {
		result, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "tess@example.com", Password: password})
		require.NoError(t, err)
		require.True(t, result.StepUpRequired())
		require.NotEmpty(t, result.Body.TempToken)
	})

	t.Run("not verified", func(t *testing.T) {
		result, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "una@example.com", Password: password})
		require.NoError(t, err)
		require.True(t, result.NotVerified())
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.gateway.Login(ctx, users.Role("coach"), gateway.Credentials{Email: "x@example.com", Password: password})
		require.ErrorIs(t, err, sperrors.ErrValidation)
	})
}

func TestVerifyTwoFactor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "tess@example.com", Password: password})
	require.NoError(t, err)
	require.True(t, login.StepUpRequired())

	mail, ok := f.outbox.Last("tess@example.com", mockapi.MailTwoFactor)
	require.True(t, ok)

	wrong, err := f.gateway.VerifyTwoFactor(ctx, gateway.TwoFactorRequest{Email: "tess@example.com", TempToken: login.Body.TempToken, Code: "000000"})
	require.NoError(t, err)
	require.False(t, wrong.Succeeded())

	result, err := f.gateway.VerifyTwoFactor(ctx, gateway.TwoFactorRequest{Email: "tess@example.com", TempToken: login.Body.TempToken, Code: mail.Code})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.NotEmpty(t, result.Body.User.Token)
	require.Equal(t, "Tess TwoFactor", result.Body.User.FullName)

	// the temporary token is single use
	again, err := f.gateway.VerifyTwoFactor(ctx, gateway.TwoFactorRequest{Email: "tess@example.com", TempToken: login.Body.TempToken, Code: mail.Code})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, again.Status)
}

func TestFetchCurrentUser_NestedResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.gateway.Login(ctx, users.RoleManager, gateway.Credentials{Email: "max@example.com", Password: password})
	require.NoError(t, err)

	result, err := f.gateway.FetchCurrentUser(ctx, login.Body.User.Token)
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Equal(t, "Max Manager", result.Body.User.FullName)
	require.Equal(t, "Manager", result.Body.User.Role)

	rejected, err := f.gateway.FetchCurrentUser(ctx, "garbage")
	require.NoError(t, err)
	require.True(t, rejected.Unauthorized())
	require.False(t, rejected.Succeeded())

	_, err = f.gateway.FetchCurrentUser(ctx, " ")
	require.ErrorIs(t, err, sperrors.ErrInvalidToken)
}

func TestPlayerSignupAndVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invalid, err := f.gateway.PlayerSignup(ctx, gateway.PlayerSignupRequest{Email: "new@example.com", Password: "weak"})
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, invalid.Status)
	require.Equal(t, "Full name is required", invalid.Message(""))

	created, err := f.gateway.PlayerSignup(ctx, gateway.PlayerSignupRequest{FullName: "New Player", Email: "new@example.com", Password: password})
	require.NoError(t, err)
	require.True(t, created.Succeeded())
	require.Empty(t, created.Body.User.Token)

	mail, ok := f.outbox.Last("new@example.com", mockapi.MailVerification)
	require.True(t, ok)

	verified, err := f.gateway.VerifyEmail(ctx, "new@example.com", mail.Code)
	require.NoError(t, err)
	require.True(t, verified.Succeeded())
	require.NotEmpty(t, verified.Body.User.Token)
	require.Equal(t, "Player", verified.Body.User.Role)
}

func TestManagerSignup_Multipart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.gateway.ManagerSignup(ctx, gateway.ManagerSignupRequest{
		FullName:    "Nina New",
		Email:       "nina@example.com",
		CompanyName: "Courts Inc",
		NationalID:  "12345678",
		PhoneNumber: "87654321",
		Attachment:  gateway.Attachment{Name: "registry.pdf", Content: strings.NewReader("%PDF-1.4")},
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded())

	account, err := f.api.Accounts().GetByEmail("nina@example.com")
	require.NoError(t, err)
	require.Equal(t, "registry.pdf", account.AttachmentName)
	require.Equal(t, "12345678", account.NationalID)
	require.False(t, account.Approved)

	// pending approval, sign in refused
	login, err := f.gateway.Login(ctx, users.RoleManager, gateway.Credentials{Email: "nina@example.com", Password: "whatever1A"})
	require.NoError(t, err)
	require.False(t, login.Succeeded())

	missing, err := f.gateway.ManagerSignup(ctx, gateway.ManagerSignupRequest{
		FullName:    "No File",
		Email:       "nofile@example.com",
		CompanyName: "Courts Inc",
		NationalID:  "12345678",
		PhoneNumber: "87654321",
	})
	require.NoError(t, err)
	require.Equal(t, "Attachment is required", missing.Message(""))
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.gateway.ForgotPassword(ctx, "jane@example.com")
	require.NoError(t, err)
	require.True(t, result.Succeeded())

	mail, ok := f.outbox.Last("jane@example.com", mockapi.MailPasswordReset)
	require.True(t, ok)

	reset, err := f.gateway.ResetPassword(ctx, mail.Code, "BrandNew99")
	require.NoError(t, err)
	require.True(t, reset.Succeeded())

	login, err := f.gateway.Login(ctx, users.RolePlayer, gateway.Credentials{Email: "jane@example.com", Password: "BrandNew99"})
	require.NoError(t, err)
	require.True(t, login.Succeeded())

	reused, err := f.gateway.ResetPassword(ctx, mail.Code, "Another99")
	require.NoError(t, err)
	require.Equal(t, "Invalid or expired reset token", reused.Message(""))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	reg := prometheus.NewRegistry()
	gw, err := gateway.New(url+"/api", gateway.WithRegisterer(reg))
	require.NoError(t, err)

	_, err = gw.Login(context.Background(), users.RolePlayer, gateway.Credentials{Email: "a@example.com", Password: "b"})
	require.ErrorIs(t, err, sperrors.ErrTransport)
	require.Equal(t, 1.0, testutil.ToFloat64(gw.Metrics().Requests.WithLabelValues("login_player", "transport_error")))
}

func TestNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL + "/api")
	require.NoError(t, err)

	result, err := gw.ForgotPassword(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, result.Status)
	require.Equal(t, "fallback", result.Message("fallback"))
}
