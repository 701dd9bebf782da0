package domain

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the verified content of a session token. Role is the value
// embedded at issuance and may be stale; authorization decisions reload the
// user instead.
type TokenClaims struct {
	UserID    string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
