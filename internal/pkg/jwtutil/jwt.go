// Package jwtutil issues and verifies the HS256 bearer tokens that carry a
// user's email and nonce snapshot.
package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"conduit-api/internal/config"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// Claims is the token payload. Without a configured TTL only email and
// nonce are present, which makes tokens deterministic for the same inputs.
type Claims struct {
	Email string `json:"email"`
	Nonce int64  `json:"nonce"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg *config.AuthConfig
	now func() time.Time
}

// NewService binds the token service to the process-wide auth configuration.
func NewService(cfg *config.AuthConfig) *Service {
	return &Service{
		cfg: cfg,
		now: time.Now,
	}
}

func (s *Service) Issue(email string, nonce int64) (string, error) {
	claims := Claims{
		Email: email,
		Nonce: nonce,
	}
	if s.cfg.TokenTTLMinute > 0 {
		now := s.now()
		claims.IssuedAt = jwt.NewNumericDate(now)
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(s.cfg.TokenTTLMinute) * time.Minute))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
