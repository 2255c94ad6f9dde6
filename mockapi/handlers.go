package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/sportify-auth-client/users"
)

const (
	maxBodyBytes      = 1 << 20
	maxMultipartBytes = 10 << 20
	msgTwoFARequired  = "2FA required"

	// wrong codes accepted against one temporary token before it is revoked
	maxTwoFactorAttempts = 5
)

// body is the JSON envelope of every response. Login style responses carry
// the user fields at the top level; /auth/me nests them under "user".
type body map[string]any

func message(msg string) body {
	return body{"msg": msg}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body{"status": "ok"})
	}
}

// userFields is the flat user shape returned by login and 2FA.
func userFields(account Account, token string) body {
	b := body{
		"fullName": account.FullName,
		"email":    account.Email,
		"role":     string(account.Role),
	}
	if token != "" {
		b["token"] = token
	}
	if account.ProfileImage != "" {
		b["profileImage"] = account.ProfileImage
	}
	return b
}

type loginRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	SecondaryProofToken string `json:"secondaryProofToken"`
}

// LoginHandler authenticates against any role path. The account's real role
// is returned and it is left to the client to reject a mismatch.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := users.ParseRole(r.PathValue("role"))
		if err != nil || role == users.RoleAdmin {
			writeJSON(w, http.StatusNotFound, message("Unknown account type"))
			return
		}

		var req loginRequest
		if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, message("Email and password are required"))
			return
		}

		account, err := s.accounts.Authenticate(req.Email, req.Password)
		if err != nil {
			s.metrics.LoginResults.WithLabelValues(role.Path(), "invalid").Inc()
			writeJSON(w, http.StatusUnauthorized, message("Invalid credentials"))
			return
		}

		switch {
		case account.Role == users.RolePlayer && !account.Verified:
			s.metrics.LoginResults.WithLabelValues(role.Path(), "unverified").Inc()
			writeJSON(w, http.StatusUnauthorized, body{
				"msg":  "Please verify your email before signing in.",
				"code": "ACCOUNT_NOT_VERIFIED",
			})
			return
		case account.Role == users.RoleManager && !account.Approved:
			s.metrics.LoginResults.WithLabelValues(role.Path(), "pending").Inc()
			writeJSON(w, http.StatusForbidden, message("Your account is pending admin approval."))
			return
		case account.TwoFactor:
			s.metrics.LoginResults.WithLabelValues(role.Path(), "2fa").Inc()
			tempToken := s.beginStepUp(account)
			writeJSON(w, http.StatusUnauthorized, body{"msg": msgTwoFARequired, "tempToken": tempToken})
			return
		}

		s.respondWithToken(w, http.StatusOK, account)
		s.metrics.LoginResults.WithLabelValues(role.Path(), "ok").Inc()
	}
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, account Account) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue token")
		writeJSON(w, http.StatusInternalServerError, message("Internal server error"))
		return
	}
	writeJSON(w, status, userFields(account, token))
}

func (s *Server) beginStepUp(account Account) string {
	s.pruneStepUps()
	tempToken := uuid.New().String()
	code := s.generateCode()

	s.pendingLock.Lock()
	s.stepUps[tempToken] = pendingStepUp{
		accountID: account.ID,
		code:      code,
		expires:   s.nowTime().Add(s.config.GetTempTokenExpiry()),
	}
	s.pendingLock.Unlock()

	s.mailer.Send(Mail{To: account.Email, Kind: MailTwoFactor, Code: code})
	return tempToken
}

type twoFactorRequest struct {
	Email     string `json:"email"`
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

func (s *Server) VerifyTwoFactorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req twoFactorRequest
		if err := decodeJSON(r, &req); err != nil || req.TempToken == "" || req.Code == "" {
			writeJSON(w, http.StatusBadRequest, message("Email, temporary token and code are required"))
			return
		}

		s.pendingLock.Lock()
		pending, ok := s.stepUps[req.TempToken]
		valid := ok && !pending.expired(s.nowTime()) && pending.code == strings.TrimSpace(req.Code)
		switch {
		case valid:
			delete(s.stepUps, req.TempToken)
		case ok:
			pending.attempts++
			if pending.attempts >= maxTwoFactorAttempts {
				delete(s.stepUps, req.TempToken)
			} else {
				s.stepUps[req.TempToken] = pending
			}
		}
		s.pendingLock.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, message("Invalid or expired verification code"))
			return
		}

		account, err := s.accounts.GetByID(pending.accountID)
		if err != nil || !strings.EqualFold(account.Email, strings.TrimSpace(req.Email)) {
			writeJSON(w, http.StatusUnauthorized, message("Invalid or expired verification code"))
			return
		}
		s.respondWithToken(w, http.StatusOK, account)
	}
}

// CurrentUserHandler answers with the nested {success, user} shape.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, body{"success": false, "msg": "No token, authorization denied"})
			return
		}

		id, err := s.tokens.Subject(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, body{"success": false, "msg": "Token is not valid"})
			return
		}
		account, err := s.accounts.GetByID(id)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, body{"success": false, "msg": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, body{"success": true, "user": userFields(account, "")})
	}
}

type playerSignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch strings.ToLower(r.PathValue("role")) {
		case users.RolePlayer.Path():
			s.playerSignup(w, r)
		case users.RoleManager.Path():
			s.managerSignup(w, r)
		default:
			writeJSON(w, http.StatusNotFound, message("Unknown account type"))
		}
	}
}

func (s *Server) playerSignup(w http.ResponseWriter, r *http.Request) {
	var req playerSignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, message("Invalid request body"))
		return
	}

	var problems []body
	if strings.TrimSpace(req.FullName) == "" {
		problems = append(problems, message("Full name is required"))
	}
	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, message("Please include a valid email"))
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		problems = append(problems, message(err.Error()))
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, body{"errors": problems})
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, message("Internal server error"))
		return
	}
	account := &Account{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        req.Email,
		Role:         users.RolePlayer,
		PasswordHash: hash,
		Verified:     s.autoVerify,
	}
	if err := s.accounts.Create(account); err != nil {
		writeJSON(w, http.StatusBadRequest, message("User already exists"))
		return
	}

	if s.autoVerify {
		s.respondWithToken(w, http.StatusCreated, *account)
		return
	}

	s.sendVerificationCode(account.Email)
	writeJSON(w, http.StatusCreated, body{
		"success": true,
		"msg":     "Registration successful. Please check your email for the verification code.",
	})
}

func (s *Server) managerSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, message("Invalid form submission"))
		return
	}

	fields := map[string]string{}
	for _, name := range []string{"fullName", "email", "companyName", "cin", "phoneNumber"} {
		fields[name] = strings.TrimSpace(r.FormValue(name))
		if fields[name] == "" {
			writeJSON(w, http.StatusBadRequest, message("All fields are required"))
			return
		}
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message("Attachment is required"))
		return
	}
	file.Close()

	account := &Account{
		FullName:       fields["fullName"],
		Email:          fields["email"],
		Role:           users.RoleManager,
		CompanyName:    fields["companyName"],
		NationalID:     fields["cin"],
		PhoneNumber:    fields["phoneNumber"],
		AttachmentName: header.Filename,
	}
	if err := s.accounts.Create(account); err != nil {
		writeJSON(w, http.StatusBadRequest, message("User already exists"))
		return
	}

	s.logger.Info().Str("email", account.Email).Str("company", account.CompanyName).Msg("manager application received")
	writeJSON(w, http.StatusCreated, body{
		"success": true,
		"msg":     "Manager registration submitted. Your application is pending admin approval.",
	})
}

func (s *Server) sendVerificationCode(email string) {
	code := s.generateCode()
	s.pendingLock.Lock()
	s.verifyCodes[normalizeEmail(email)] = code
	s.pendingLock.Unlock()
	s.mailer.Send(Mail{To: normalizeEmail(email), Kind: MailVerification, Code: code})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyEmailHandler confirms a player's email and signs them in. The user is
// returned nested under "user".
func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyEmailRequest
		if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Code == "" {
			writeJSON(w, http.StatusBadRequest, message("Email and code are required"))
			return
		}

		email := normalizeEmail(req.Email)
		s.pendingLock.Lock()
		expected, ok := s.verifyCodes[email]
		valid := ok && expected == strings.TrimSpace(req.Code)
		if valid {
			delete(s.verifyCodes, email)
		}
		s.pendingLock.Unlock()

		if !valid {
			writeJSON(w, http.StatusBadRequest, message("Invalid verification code"))
			return
		}
		if err := s.accounts.SetVerified(email); err != nil {
			writeJSON(w, http.StatusBadRequest, message("Invalid verification code"))
			return
		}

		account, _ := s.accounts.GetByEmail(email)
		token, err := s.tokens.Issue(account)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, message("Internal server error"))
			return
		}
		writeJSON(w, http.StatusOK, body{
			"success": true,
			"msg":     "Email verified successfully",
			"user":    userFields(account, token),
		})
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
			writeJSON(w, http.StatusBadRequest, message("Please include a valid email"))
			return
		}

		// Same answer whether or not the account exists
		if account, err := s.accounts.GetByEmail(req.Email); err == nil {
			s.sendResetToken(account.Email)
		}
		writeJSON(w, http.StatusOK, message("If an account exists for this email, a password reset link has been sent."))
	}
}

func (s *Server) sendResetToken(email string) {
	resetToken := uuid.New().String()
	s.pendingLock.Lock()
	s.resetTokens[resetToken] = email
	s.pendingLock.Unlock()
	s.mailer.Send(Mail{To: email, Kind: MailPasswordReset, Code: resetToken})
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, message("Invalid request body"))
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeJSON(w, http.StatusBadRequest, message(err.Error()))
			return
		}

		resetToken := r.PathValue("token")
		s.pendingLock.Lock()
		email, ok := s.resetTokens[resetToken]
		if ok {
			delete(s.resetTokens, resetToken)
		}
		s.pendingLock.Unlock()

		if !ok {
			writeJSON(w, http.StatusBadRequest, message("Invalid or expired reset token"))
			return
		}
		if err := s.accounts.SetPassword(email, req.Password); err != nil {
			writeJSON(w, http.StatusBadRequest, message("Invalid or expired reset token"))
			return
		}
		writeJSON(w, http.StatusOK, message("Password reset successful"))
	}
}

// ApproveManagerHandler stands in for the admin screens that approve manager
// applications.
func (s *Server) ApproveManagerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.accounts.GetByEmail(r.PathValue("email"))
		if err != nil || account.Role != users.RoleManager {
			writeJSON(w, http.StatusNotFound, message("Manager not found"))
			return
		}
		if err := s.accounts.SetApproved(account.Email); err != nil {
			writeJSON(w, http.StatusInternalServerError, message("Internal server error"))
			return
		}
		// Managers apply without a password and choose one through a reset link
		s.sendResetToken(account.Email)
		writeJSON(w, http.StatusOK, body{"success": true, "msg": "Manager approved"})
	}
}

// expired reports whether a pending second factor has timed out.
func (p pendingStepUp) expired(now time.Time) bool {
	return !now.Before(p.expires)
}

// pruneStepUps drops second factor attempts that were never completed.
func (s *Server) pruneStepUps() int {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	now := s.nowTime()
	pruned := 0
	for token, pending := range s.stepUps {
		if pending.expired(now) {
			delete(s.stepUps, token)
			pruned++
		}
	}
	return pruned
}
