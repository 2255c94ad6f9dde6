// Package mockapi is a development implementation of the Sportify auth API.
// It serves the same routes and response shapes as the deployed API so the
// client can be run and tested without it.
package mockapi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/sportify-auth-client/internal/config"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the part of the configuration the mock API reads.
type Config interface {
	config.EnvConfig
	config.ServerConfig
	config.CorsConfig
}

type pendingStepUp struct {
	accountID string
	code      string
	expires   time.Time
	attempts  int
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   Config
	accounts *AccountStore
	tokens   *TokenIssuer
	mailer   Mailer
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics

	nowTime      func() time.Time
	generateCode func() string
	autoVerify   bool
	pendingLock  sync.Mutex
	stepUps      map[string]pendingStepUp // temp token to pending second factor
	verifyCodes  map[string]string        // email to verification code
	resetTokens  map[string]string        // reset token to email
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

func WithAccountStore(accounts *AccountStore) ServerOption {
	return func(s *Server) {
		s.accounts = accounts
	}
}

func WithMailer(mailer Mailer) ServerOption {
	return func(s *Server) {
		s.mailer = mailer
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithCodeGenerator replaces the random six digit code generator.
func WithCodeGenerator(fn func() string) ServerOption {
	return func(s *Server) {
		s.generateCode = fn
	}
}

// WithAutoVerify signs players in straight after sign-up instead of asking
// them to verify their email.
func WithAutoVerify(autoVerify bool) ServerOption {
	return func(s *Server) {
		s.autoVerify = autoVerify
	}
}

func New(cfg Config, options ...ServerOption) *Server {
	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		accounts:     NewAccountStore(),
		logger:       log.Logger,
		registry:     prometheus.NewRegistry(),
		nowTime:      time.Now,
		generateCode: randomCode,
		stepUps:      make(map[string]pendingStepUp),
		verifyCodes:  make(map[string]string),
		resetTokens:  make(map[string]string),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = LogMailer{Logger: s.logger}
	}
	s.tokens = NewTokenIssuer(cfg.GetJWTSecret(), cfg.GetTokenExpiry(), s.nowTime)
	s.metrics = newMetrics(s.registry)

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Accounts() *AccountStore {
	return s.accounts
}

func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SeedAccount registers an account with a plain text password.
func (s *Server) SeedAccount(account Account, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("[Server.SeedAccount] %w", err)
	}
	account.PasswordHash = hash
	return s.accounts.Create(&account)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.logger.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
