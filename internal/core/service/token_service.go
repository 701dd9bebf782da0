package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrMissingSecret is returned when the service is built without a signing key.
var ErrMissingSecret = errors.New("token service: signing secret is required")

// TokenService issues and verifies HS256 session tokens. The secret is fixed
// at construction; there is no fallback key.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for userID carrying role, a unique token id and the
// issue/expiry instants.
func (s *TokenService) Issue(userID, role string) (string, time.Time, error) {
	if userID == "" || role == "" {
		return "", time.Time{}, domain.ErrInvalidInput
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}

// Verify checks algorithm, signature and expiry. Every failure collapses to
// domain.ErrInvalidToken.
func (s *TokenService) Verify(raw string) (*domain.TokenClaims, error) {
	if raw == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || role == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.TokenClaims{UserID: sub, Role: role, TokenID: jti}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}
	return out, nil
}
