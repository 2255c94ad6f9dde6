package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role is the account category returned by the API
type Role string

const (
	RolePlayer  Role = "Player"
	RoleManager Role = "Manager"
	RoleAdmin   Role = "Admin"
)

// ParseRole maps an API role string onto a Role, ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return RolePlayer, nil
	case "manager":
		return RoleManager, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Path returns the lower case form used in API routes (/auth/player/login).
func (r Role) Path() string {
	return strings.ToLower(string(r))
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Profile is the summary of the logged in user kept alongside the token.
type Profile struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Role             Role   `json:"role"`
	ProfileImagePath string `json:"profileImagePath,omitempty"`
}

// Valid reports whether every mandatory profile field is populated.
func (p Profile) Valid() bool {
	return strings.TrimSpace(p.FullName) != "" && strings.TrimSpace(p.Email) != "" && p.Role.Valid()
}

func (p Profile) IsPlayer() bool {
	return p.Role == RolePlayer
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
