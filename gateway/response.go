package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/sportify-auth-client/internal/utils"
	"github.com/jrsteele09/sportify-auth-client/users"
)

// CodeAccountNotVerified is the API code for a player that has not confirmed
// their email address yet.
const CodeAccountNotVerified = "ACCOUNT_NOT_VERIFIED"

// UserPayload is the canonical user shape, whatever nesting the API used.
type UserPayload struct {
	FullName     string
	Email        string
	Role         string
	Token        string
	ProfileImage string
}

// Response is the normalized body of every auth endpoint.
type Response struct {
	Msg       string
	Code      string
	TempToken string
	Success   *bool
	User      UserPayload
}

// Result is what every gateway call returns for a completed HTTP exchange.
// Callers branch on Status and Body; a non-2xx status is not an error.
type Result struct {
	Status int
	Body   Response
}

func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r Result) Unauthorized() bool {
	return r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden
}

// StepUpRequired reports whether the login needs a second factor before it
// can complete.
func (r Result) StepUpRequired() bool {
	if r.Status != http.StatusUnauthorized || r.Body.TempToken == "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.Body.Msg), "2fa")
}

func (r Result) NotVerified() bool {
	return r.Status == http.StatusUnauthorized && r.Body.Code == CodeAccountNotVerified
}

// Succeeded is OK() unless the body explicitly says otherwise.
func (r Result) Succeeded() bool {
	return r.OK() && (r.Body.Success == nil || *r.Body.Success)
}

// Message returns the API message or fallback when the API gave none.
func (r Result) Message(fallback string) string {
	return utils.FirstNonEmpty(r.Body.Msg, fallback)
}

// Profile builds the profile summary from the normalized user fields.
func (r Result) Profile() (users.Profile, error) {
	role, err := users.ParseRole(r.Body.User.Role)
	if err != nil {
		return users.Profile{}, fmt.Errorf("[Result.Profile] %w", err)
	}
	return users.Profile{
		FullName:         r.Body.User.FullName,
		Email:            r.Body.User.Email,
		Role:             role,
		ProfileImagePath: r.Body.User.ProfileImage,
	}, nil
}

type rawUser struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Token        string `json:"token"`
	ProfileImage string `json:"profileImage"`
}

type rawResponse struct {
	rawUser
	Msg       string   `json:"msg"`
	Message   string   `json:"message"`
	Code      string   `json:"code"`
	TempToken string   `json:"tempToken"`
	Success   *bool    `json:"success"`
	User      *rawUser `json:"user"`
	Errors    []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// normalize decodes a response body into the canonical shape. Top level
// fields win over the nested "user" object. Bodies that are not JSON yield an
// empty Response.
func normalize(body []byte) Response {
	var raw rawResponse
	if len(body) == 0 || json.Unmarshal(body, &raw) != nil {
		return Response{}
	}

	nested := utils.Value(raw.User)
	var firstError string
	if len(raw.Errors) > 0 {
		firstError = raw.Errors[0].Msg
	}

	return Response{
		Msg:       utils.FirstNonEmpty(raw.Msg, raw.Message, firstError),
		Code:      raw.Code,
		TempToken: raw.TempToken,
		Success:   raw.Success,
		User: UserPayload{
			FullName:     utils.FirstNonEmpty(raw.FullName, nested.FullName),
			Email:        utils.FirstNonEmpty(raw.Email, nested.Email),
			Role:         utils.FirstNonEmpty(raw.Role, nested.Role),
			Token:        utils.FirstNonEmpty(raw.Token, nested.Token),
			ProfileImage: utils.FirstNonEmpty(raw.ProfileImage, nested.ProfileImage),
		},
	}
}
