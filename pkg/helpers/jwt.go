package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/showbase/showbase/pkg/apperrors"
)

// JWTManager issues and verifies the signed bearer tokens presented on every
// protected request. A single HS256 secret is set at process start and never
// rotated mid-request.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl}
}

// TokenClaims is what a verified bearer token proves: who, and since when.
type TokenClaims struct {
	UserID   string
	IssuedAt time.Time
}

// Issue signs a token for userID with the given issue time. The expiry is
// issuedAt + TTL.
func (m *JWTManager) Issue(userID string, issuedAt time.Time) (string, time.Time, error) {
	exp := issuedAt.Add(m.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify checks signature and expiry and returns the claims. Expired tokens
// and structurally invalid or foreign-key tokens are reported as distinct
// error kinds so the caller can surface the right message.
func (m *JWTManager) Verify(tokenStr string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.ExpiredToken, "token has expired, please log in again", err)
		}
		return nil, apperrors.Wrap(apperrors.InvalidToken, "invalid token, please log in again", err)
	}
	if !tkn.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, apperrors.New(apperrors.InvalidToken, "invalid token, please log in again")
	}
	return &TokenClaims{UserID: claims.Subject, IssuedAt: claims.IssuedAt.Time}, nil
}
