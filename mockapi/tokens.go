package mockapi

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
)

// TokenIssuer signs the bearer tokens handed out on login (HS256).
type TokenIssuer struct {
	secret  []byte
	expiry  time.Duration
	nowTime func() time.Time
}

func NewTokenIssuer(secret string, expiry time.Duration, nowTime func() time.Time) *TokenIssuer {
	return &TokenIssuer{
		secret:  []byte(secret),
		expiry:  expiry,
		nowTime: nowTime,
	}
}

// Issue creates a signed token for account.
func (t *TokenIssuer) Issue(account Account) (string, error) {
	now := t.nowTime()
	claims := jwtlib.MapClaims{
		"sub":   account.ID,               // Account id
		"email": account.Email,            // Email the account registered with
		"role":  string(account.Role),     // Player, Manager or Admin
		"iat":   now.Unix(),               // Issued At
		"exp":   now.Add(t.expiry).Unix(), // Expiry
		"jti":   uuid.New().String(),      // Unique token ID
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("[TokenIssuer.Issue] sign: %w", err)
	}
	return signed, nil
}

// Subject verifies raw and returns the account id it was issued for.
func (t *TokenIssuer) Subject(raw string) (string, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwtlib.WithTimeFunc(t.nowTime), jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", sperrors.Wrapf(sperrors.ErrInvalidToken, "[TokenIssuer.Subject] %v", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", sperrors.Wrapf(sperrors.ErrInvalidToken, "[TokenIssuer.Subject] missing subject")
	}
	return sub, nil
}
