package mockapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/sportify-auth-client/internal/config"
	"github.com/jrsteele09/sportify-auth-client/mockapi"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const password = "Secret123"

func newServer(t *testing.T, options ...mockapi.ServerOption) (*mockapi.Server, *mockapi.Outbox) {
	t.Helper()
	outbox := &mockapi.Outbox{}
	options = append([]mockapi.ServerOption{mockapi.WithMailer(outbox)}, options...)
	return mockapi.New(config.New(), options...), outbox
}

func do(t *testing.T, h http.Handler, method, path string, payload any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestLogin(t *testing.T) {
	s, _ := newServer(t)
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Jane", Email: "Jane@Example.com", Role: users.RolePlayer, Verified: true}, password))

	status, body := do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "jane@example.com", "password": password})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Player", body["role"])
	require.Equal(t, "jane@example.com", body["email"])
	require.NotEmpty(t, body["token"])

	status, body = do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "jane@example.com"})
	require.Equal(t, http.StatusBadRequest, status)
	require.NotEmpty(t, body["msg"])

	status, _ = do(t, s, http.MethodPost, "/api/auth/admin/login", map[string]string{"email": "jane@example.com", "password": password})
	require.Equal(t, http.StatusNotFound, status)

	series, err := testutil.GatherAndCount(s.Registry(), "sportify_mockapi_logins_total")
	require.NoError(t, err)
	require.Equal(t, 1, series)
}

func TestCurrentUser(t *testing.T) {
	s, _ := newServer(t)
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Max", Email: "max@example.com", Role: users.RoleManager, Approved: true, ProfileImage: "uploads/max.png"}, password))

	_, login := do(t, s, http.MethodPost, "/api/auth/manager/login", map[string]string{"email": "max@example.com", "password": password})
	token := login["token"].(string)

	status, body := do(t, s, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	require.Equal(t, "Max", user["fullName"])
	require.Equal(t, "uploads/max.png", user["profileImage"])

	status, body = do(t, s, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, false, body["success"])
}

func TestCurrentUser_ExpiredToken(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	s, _ := newServer(t, mockapi.WithNowTime(clock))
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Jane", Email: "jane@example.com", Role: users.RolePlayer, Verified: true}, password))

	_, login := do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "jane@example.com", "password": password})
	token := login["token"].(string)

	now = now.Add(2 * time.Hour)
	status, _ := do(t, s, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestTwoFactor_TempTokenExpires(t *testing.T) {
	now := time.Now()
	s, outbox := newServer(t, mockapi.WithNowTime(func() time.Time { return now }))
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Tess", Email: "tess@example.com", Role: users.RolePlayer, Verified: true, TwoFactor: true}, password))

	status, login := do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "tess@example.com", "password": password})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "2FA required", login["msg"])

	mail, ok := outbox.Last("tess@example.com", mockapi.MailTwoFactor)
	require.True(t, ok)
	require.Len(t, mail.Code, 6)

	now = now.Add(10 * time.Minute)
	status, _ = do(t, s, http.MethodPost, "/api/auth/2fa/verify", map[string]string{
		"email":     "tess@example.com",
		"tempToken": login["tempToken"].(string),
		"code":      mail.Code,
	})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestManagerApprovalFlow(t *testing.T) {
	s, outbox := newServer(t)
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Max", Email: "max@example.com", Role: users.RoleManager}, password))

	status, body := do(t, s, http.MethodPost, "/api/auth/manager/login", map[string]string{"email": "max@example.com", "password": password})
	require.Equal(t, http.StatusForbidden, status)
	require.Contains(t, body["msg"], "pending")

	status, _ = do(t, s, http.MethodPost, "/api/admin/managers/max@example.com/approve", nil)
	require.Equal(t, http.StatusOK, status)

	mail, ok := outbox.Last("max@example.com", mockapi.MailPasswordReset)
	require.True(t, ok)

	status, _ = do(t, s, http.MethodPost, "/api/auth/reset-password/"+mail.Code, map[string]string{"password": "Chosen123"})
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, s, http.MethodPost, "/api/auth/manager/login", map[string]string{"email": "max@example.com", "password": "Chosen123"})
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, s, http.MethodPost, "/api/admin/managers/nobody@example.com/approve", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestPlayerSignup_AutoVerify(t *testing.T) {
	s, outbox := newServer(t, mockapi.WithAutoVerify(true))

	status, body := do(t, s, http.MethodPost, "/api/auth/player/signup", map[string]string{
		"fullName": "Auto",
		"email":    "auto@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, body["token"])
	_, sent := outbox.Last("auto@example.com", mockapi.MailVerification)
	require.False(t, sent)

	status, body = do(t, s, http.MethodPost, "/api/auth/player/signup", map[string]string{
		"fullName": "Auto",
		"email":    "AUTO@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "User already exists", body["msg"])
}

func TestCors(t *testing.T) {
	s, _ := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/player/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/player/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t)
	do(t, s, http.MethodGet, "/api/auth/me", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `sportify_mockapi_requests_total{code="401",route="me"} 1`)
}

func TestRecoverMiddleware(t *testing.T) {
	s, _ := newServer(t)
	h := mockapi.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, s.RecoverMiddleware)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTwoFactor_WrongCodesRevokeTempToken(t *testing.T) {
	s, _ := newServer(t, mockapi.WithCodeGenerator(func() string { return "123456" }))
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Tess", Email: "tess@example.com", Role: users.RolePlayer, Verified: true, TwoFactor: true}, password))

	_, login := do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "tess@example.com", "password": password})
	tempToken := login["tempToken"].(string)

	verify := func(code string) int {
		status, _ := do(t, s, http.MethodPost, "/api/auth/2fa/verify", map[string]string{
			"email":     "tess@example.com",
			"tempToken": tempToken,
			"code":      code,
		})
		return status
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, verify("000000"))
	}
	require.Equal(t, http.StatusUnauthorized, verify("123456"))
}

func TestTwoFactor_CorrectCodeAfterFewMistakes(t *testing.T) {
	s, _ := newServer(t, mockapi.WithCodeGenerator(func() string { return "123456" }))
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Tess", Email: "tess@example.com", Role: users.RolePlayer, Verified: true, TwoFactor: true}, password))

	_, login := do(t, s, http.MethodPost, "/api/auth/player/login", map[string]string{"email": "tess@example.com", "password": password})
	payload := map[string]string{"email": "tess@example.com", "tempToken": login["tempToken"].(string), "code": "000000"}

	for i := 0; i < 4; i++ {
		status, _ := do(t, s, http.MethodPost, "/api/auth/2fa/verify", payload)
		require.Equal(t, http.StatusUnauthorized, status)
	}
	payload["code"] = "123456"
	status, body := do(t, s, http.MethodPost, "/api/auth/2fa/verify", payload)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])
}

func TestApproveManager_DevelopmentOnly(t *testing.T) {
	t.Setenv("SPORTIFY_ENV", "prod")
	s, _ := newServer(t)
	require.NoError(t, s.SeedAccount(mockapi.Account{FullName: "Max", Email: "max@example.com", Role: users.RoleManager}, password))

	status, _ := do(t, s, http.MethodPost, "/api/admin/managers/max@example.com/approve", nil)
	require.NotEqual(t, http.StatusOK, status)

	account, err := s.Accounts().GetByEmail("max@example.com")
	require.NoError(t, err)
	require.False(t, account.Approved)
}
