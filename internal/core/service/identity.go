package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// DefaultCookieName is the cookie that carries the session token when no
// Authorization header is sent.
const DefaultCookieName = "token"

// IdentityResolver turns a request's credential into a live user.
//
// Claims reads the token alone and is only fit for advisory decisions such as
// page redirects. Resolve reloads the user so that role changes and deleted
// accounts take effect immediately; authorization must go through it.
type IdentityResolver struct {
	tokens     ports.TokenIssuer
	users      ports.UserRepository
	revoked    ports.RevocationList
	cookieName string
	log        zerolog.Logger
}

// NewIdentityResolver builds a resolver. revoked may be nil when no
// revocation store is configured.
func NewIdentityResolver(tokens ports.TokenIssuer, users ports.UserRepository, revoked ports.RevocationList, cookieName string, log zerolog.Logger) *IdentityResolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &IdentityResolver{tokens: tokens, users: users, revoked: revoked, cookieName: cookieName, log: log}
}

// CookieName reports the cookie the resolver reads.
func (r *IdentityResolver) CookieName() string { return r.cookieName }

// Credential extracts the raw token: Authorization header first, then the
// session cookie. It returns "" when neither is present.
func (r *IdentityResolver) Credential(req *http.Request) string {
	if h := strings.TrimSpace(req.Header.Get("Authorization")); h != "" {
		const prefix = "bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	if c, err := req.Cookie(r.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Claims verifies the request credential without touching storage.
func (r *IdentityResolver) Claims(req *http.Request) *domain.TokenClaims {
	raw := r.Credential(req)
	if raw == "" {
		return nil
	}
	claims, err := r.tokens.Verify(raw)
	if err != nil {
		return nil
	}
	return claims
}

// Resolve returns the live user behind the request, or nil with no error when
// the request is anonymous, the token is invalid or revoked, or the account no
// longer exists. Storage faults are returned as errors.
func (r *IdentityResolver) Resolve(req *http.Request) (*domain.User, *domain.TokenClaims, error) {
	claims := r.Claims(req)
	if claims == nil {
		return nil, nil, nil
	}
	ctx := req.Context()

	if r.revoked != nil && claims.TokenID != "" {
		revoked, err := r.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			r.log.Warn().Err(err).Str("jti", claims.TokenID).Msg("revocation check failed")
		} else if revoked {
			return nil, nil, nil
		}
	}

	user, err := r.lookup(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, nil
	}
	return user, claims, nil
}

func (r *IdentityResolver) lookup(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Verified:  u.Verified,
		Phone:     u.Phone,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Location:  u.Location,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}
