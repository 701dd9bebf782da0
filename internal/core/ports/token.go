package ports

import (
	"context"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID, role string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*domain.TokenClaims, error)
}

// RevocationList remembers tokens that were logged out before expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
