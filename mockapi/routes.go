package mockapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// LOGIN & SIGNUP
	login := ChainMiddleware(s.LoginHandler(), s.APIMiddleware("login")...)
	signup := ChainMiddleware(s.SignupHandler(), s.APIMiddleware("signup")...)
	s.RegisterRouteFunc("POST "+RouteAuthAction, func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("action") {
		case ActionLogin:
			login(w, r)
		case ActionSignup:
			signup(w, r)
		default:
			writeJSON(w, http.StatusNotFound, message("Not found"))
		}
	})

	// SESSION
	s.RegisterRouteFunc("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware("me")...))
	s.RegisterRouteFunc("POST "+RouteVerifyTwoFA, ChainMiddleware(s.VerifyTwoFactorHandler(), s.APIMiddleware("verify_2fa")...))

	// EMAIL VERIFICATION & PASSWORDS
	s.RegisterRouteFunc("POST "+RouteVerifyEmail, ChainMiddleware(s.VerifyEmailHandler(), s.APIMiddleware("verify_email")...))
	s.RegisterRouteFunc("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware("forgot_password")...))
	s.RegisterRouteFunc("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware("reset_password")...))

	// ADMIN, unauthenticated and therefore development only
	if s.env == "DEV" {
		s.RegisterRouteFunc("POST "+RouteApproveManager, ChainMiddleware(s.ApproveManagerHandler(), s.APIMiddleware("approve_manager")...))
	}

	// CORS preflight for every API route
	s.RegisterRouteFunc("OPTIONS "+APIPrefix+"/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))
}
