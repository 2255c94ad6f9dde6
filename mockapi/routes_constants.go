package mockapi

// Route path constants
// All API routes live under APIPrefix, the same way the deployed API does
const (
	APIPrefix = "/api"

	// Auth Routes - Login & Signup, dispatched on {action}. A separate
	// /auth/{role}/login pattern would overlap /auth/reset-password/{token}.
	RouteAuthAction = APIPrefix + "/auth/{role}/{action}"
	ActionLogin     = "login"
	ActionSignup    = "signup"

	// Auth Routes - Session
	RouteCurrentUser = APIPrefix + "/auth/me"
	RouteVerifyTwoFA = APIPrefix + "/auth/2fa/verify"

	// Auth Routes - Email Verification
	RouteVerifyEmail = APIPrefix + "/auth/verify-email"

	// Auth Routes - Password Management
	RouteForgotPassword = APIPrefix + "/auth/forgot-password"
	RouteResetPassword  = APIPrefix + "/auth/reset-password/{token}"

	// Admin Routes
	RouteApproveManager = APIPrefix + "/admin/managers/{email}/approve"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/health"
)
