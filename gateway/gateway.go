// Package gateway is the single collaborator through which authentication
// requests reach the Sportify API. It performs no persistence and touches no
// global state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// API paths relative to the configured base URL
const (
	PathLogin          = "/auth/%s/login"
	PathSignup         = "/auth/%s/signup"
	PathCurrentUser    = "/auth/me"
	PathVerifyTwoFA    = "/auth/2fa/verify"
	PathVerifyEmail    = "/auth/verify-email"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password/%s"
)

const maxResponseBytes = 1 << 20

// Gateway wraps every authentication network call.
type Gateway interface {
	Login(ctx context.Context, role users.Role, creds Credentials) (Result, error)
	FetchCurrentUser(ctx context.Context, token string) (Result, error)
	VerifyTwoFactor(ctx context.Context, req TwoFactorRequest) (Result, error)
	PlayerSignup(ctx context.Context, req PlayerSignupRequest) (Result, error)
	ManagerSignup(ctx context.Context, req ManagerSignupRequest) (Result, error)
	VerifyEmail(ctx context.Context, email, code string) (Result, error)
	ForgotPassword(ctx context.Context, email string) (Result, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (Result, error)
}

type Credentials struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	SecondaryProofToken string `json:"secondaryProofToken,omitempty"`
}

type TwoFactorRequest struct {
	Email     string `json:"email"`
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

type PlayerSignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Attachment is the supporting document uploaded with a manager sign-up.
type Attachment struct {
	Name    string
	Content io.Reader
}

type ManagerSignupRequest struct {
	FullName    string
	Email       string
	CompanyName string
	NationalID  string
	PhoneNumber string
	Attachment  Attachment
}

// HTTPGateway talks to the API over HTTP.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
	metrics    *Metrics
}

var _ Gateway = (*HTTPGateway)(nil)

// HTTPGatewayOption defines a function type to modify the HTTPGateway instance.
type HTTPGatewayOption func(*HTTPGateway)

func WithHTTPClient(client *http.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.httpClient = client
	}
}

// WithTimeout bounds every request. It applies to a copy of the client, so
// a client passed with WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.logger = logger
	}
}

// WithRegisterer records request metrics into reg.
func WithRegisterer(reg prometheus.Registerer) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.metrics = NewMetrics(reg)
	}
}

func WithMetrics(m *Metrics) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.metrics = m
	}
}

// New creates a gateway for the API at baseURL (e.g. "https://api.example.com/api").
func New(baseURL string, options ...HTTPGatewayOption) (*HTTPGateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[gateway.New] invalid API url %q", baseURL)
	}

	g := &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.timeout > 0 {
		client := *g.httpClient
		client.Timeout = g.timeout
		g.httpClient = &client
	}
	return g, nil
}

// Metrics returns the gateway's metrics, nil when none were configured.
func (g *HTTPGateway) Metrics() *Metrics {
	return g.metrics
}

func (g *HTTPGateway) Login(ctx context.Context, role users.Role, creds Credentials) (Result, error) {
	if !role.Valid() {
		return Result{}, fmt.Errorf("[HTTPGateway.Login] role %q: %w", role, sperrors.ErrValidation)
	}
	return g.postJSON(ctx, "login_"+role.Path(), fmt.Sprintf(PathLogin, role.Path()), creds)
}

// FetchCurrentUser re-hydrates a session from the bearer token alone.
func (g *HTTPGateway) FetchCurrentUser(ctx context.Context, token string) (Result, error) {
	if strings.TrimSpace(token) == "" {
		return Result{}, fmt.Errorf("[HTTPGateway.FetchCurrentUser] %w", sperrors.ErrInvalidToken)
	}

	client := &http.Client{
		Timeout: g.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   g.httpClient.Transport,
		},
	}
	return g.do(ctx, client, "me", http.MethodGet, PathCurrentUser, nil, "")
}

func (g *HTTPGateway) VerifyTwoFactor(ctx context.Context, req TwoFactorRequest) (Result, error) {
	return g.postJSON(ctx, "verify_2fa", PathVerifyTwoFA, req)
}

func (g *HTTPGateway) PlayerSignup(ctx context.Context, req PlayerSignupRequest) (Result, error) {
	return g.postJSON(ctx, "signup_player", fmt.Sprintf(PathSignup, users.RolePlayer.Path()), req)
}

// ManagerSignup uploads the manager's details and supporting document as one
// multipart submission.
func (g *HTTPGateway) ManagerSignup(ctx context.Context, req ManagerSignupRequest) (Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"fullName", req.FullName},
		{"email", req.Email},
		{"companyName", req.CompanyName},
		{"cin", req.NationalID},
		{"phoneNumber", req.PhoneNumber},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return Result{}, fmt.Errorf("[HTTPGateway.ManagerSignup] field %s: %w", f.name, err)
		}
	}

	if req.Attachment.Content != nil {
		part, err := mw.CreateFormFile("attachment", req.Attachment.Name)
		if err != nil {
			return Result{}, fmt.Errorf("[HTTPGateway.ManagerSignup] attachment: %w", err)
		}
		if _, err := io.Copy(part, req.Attachment.Content); err != nil {
			return Result{}, fmt.Errorf("[HTTPGateway.ManagerSignup] attachment copy: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("[HTTPGateway.ManagerSignup] close multipart: %w", err)
	}

	return g.do(ctx, g.httpClient, "signup_manager", http.MethodPost,
		fmt.Sprintf(PathSignup, users.RoleManager.Path()), &buf, mw.FormDataContentType())
}

func (g *HTTPGateway) VerifyEmail(ctx context.Context, email, code string) (Result, error) {
	return g.postJSON(ctx, "verify_email", PathVerifyEmail, map[string]string{
		"email": email,
		"code":  code,
	})
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, email string) (Result, error) {
	return g.postJSON(ctx, "forgot_password", PathForgotPassword, map[string]string{
		"email": email,
	})
}

func (g *HTTPGateway) ResetPassword(ctx context.Context, resetToken, newPassword string) (Result, error) {
	return g.postJSON(ctx, "reset_password", fmt.Sprintf(PathResetPassword, url.PathEscape(resetToken)), map[string]string{
		"password": newPassword,
	})
}

func (g *HTTPGateway) postJSON(ctx context.Context, endpoint, path string, body any) (Result, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("[HTTPGateway] marshal %s request: %w", endpoint, err)
	}
	return g.do(ctx, g.httpClient, endpoint, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

// do performs the exchange. Only a failed exchange is an error (wrapping
// ErrTransport); any HTTP status is returned as a Result.
func (g *HTTPGateway) do(ctx context.Context, client *http.Client, endpoint, method, path string, body io.Reader, contentType string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("[HTTPGateway] create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		g.metrics.observe(endpoint, "transport_error", time.Since(start))
		g.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("auth API request failed")
		return Result{}, sperrors.Wrapf(sperrors.ErrTransport, "[HTTPGateway] %s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.metrics.observe(endpoint, "transport_error", time.Since(start))
		return Result{}, sperrors.Wrapf(sperrors.ErrTransport, "[HTTPGateway] %s read body: %v", endpoint, err)
	}

	g.metrics.observe(endpoint, outcomeLabel(resp.StatusCode), time.Since(start))
	g.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("auth API response")

	return Result{Status: resp.StatusCode, Body: normalize(data)}, nil
}
