package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

func newResolverFixture(t *testing.T) (*IdentityResolver, *TokenService, *stubUserRepo, *stubRevocations) {
	t.Helper()
	tokens, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := newStubUserRepo()
	users.add(&domain.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: domain.RoleUser, PasswordHash: "hash"})
	revoked := newStubRevocations()
	return NewIdentityResolver(tokens, users, revoked, "", zerolog.Nop()), tokens, users, revoked
}

func TestIdentityResolver_NoCredential(t *testing.T) {
	r, _, _, _ := newResolverFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	user, claims, err := r.Resolve(req)
	if err != nil || user != nil || claims != nil {
		t.Fatalf("expected anonymous, got %v %v %v", user, claims, err)
	}
}

func TestIdentityResolver_BearerHeader(t *testing.T) {
	r, tokens, _, _ := newResolverFixture(t)
	token, _, _ := tokens.Issue("u1", domain.RoleUser)

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", prefix+token)

		user, _, err := r.Resolve(req)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if user == nil || user.ID != "u1" || user.Role != domain.RoleUser {
			t.Fatalf("prefix %q: unexpected user %+v", prefix, user)
		}
		if user.PasswordHash != "" {
			t.Fatalf("password hash must not be projected")
		}
	}
}

func TestIdentityResolver_CookieFallback(t *testing.T) {
	r, tokens, _, _ := newResolverFixture(t)
	token, _, _ := tokens.Issue("u1", domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	user, claims, err := r.Resolve(req)
	if err != nil || user == nil || claims == nil {
		t.Fatalf("expected user from cookie, got %v %v %v", user, claims, err)
	}
}

func TestIdentityResolver_HeaderWinsOverCookie(t *testing.T) {
	r, tokens, users, _ := newResolverFixture(t)
	users.add(&domain.User{ID: "u2", Email: "bob@example.com", Role: domain.RoleOwner})
	headerToken, _, _ := tokens.Issue("u2", domain.RoleOwner)
	cookieToken, _, _ := tokens.Issue("u1", domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+headerToken)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: cookieToken})

	user, _, _ := r.Resolve(req)
	if user == nil || user.ID != "u2" {
		t.Fatalf("expected header identity, got %+v", user)
	}
}

func TestIdentityResolver_InvalidTokenIsAnonymous(t *testing.T) {
	r, _, _, _ := newResolverFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	user, _, err := r.Resolve(req)
	if err != nil || user != nil {
		t.Fatalf("expected anonymous, got %v %v", user, err)
	}
}

func TestIdentityResolver_DeletedUserIsAnonymous(t *testing.T) {
	r, tokens, users, _ := newResolverFixture(t)
	token, _, _ := tokens.Issue("u1", domain.RoleUser)
	delete(users.users, "u1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	user, _, err := r.Resolve(req)
	if err != nil || user != nil {
		t.Fatalf("expected anonymous, got %v %v", user, err)
	}
}

func TestIdentityResolver_LiveRoleWins(t *testing.T) {
	r, tokens, _, _ := newResolverFixture(t)
	token, _, _ := tokens.Issue("u1", domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	user, claims, _ := r.Resolve(req)
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("expected token role ADMIN, got %s", claims.Role)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected live role USER, got %s", user.Role)
	}
}

func TestIdentityResolver_RevokedToken(t *testing.T) {
	r, tokens, _, revoked := newResolverFixture(t)
	token, _, _ := tokens.Issue("u1", domain.RoleUser)
	claims, _ := tokens.Verify(token)
	revoked.revoked[claims.TokenID] = time.Hour

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	user, _, err := r.Resolve(req)
	if err != nil || user != nil {
		t.Fatalf("expected revoked token to be anonymous, got %v %v", user, err)
	}
}

func TestIdentityResolver_StorageFault(t *testing.T) {
	r, tokens, users, _ := newResolverFixture(t)
	boom := errors.New("mongo down")
	users.findFn = func(string) (*domain.User, error) { return nil, boom }
	token, _, _ := tokens.Issue("u1", domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, _, err := r.Resolve(req); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestIdentityResolver_ClaimsSkipsStorage(t *testing.T) {
	r, tokens, users, _ := newResolverFixture(t)
	users.findFn = func(string) (*domain.User, error) {
		t.Fatalf("Claims must not hit storage")
		return nil, nil
	}
	token, _, _ := tokens.Issue("u1", domain.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	claims := r.Claims(req)
	if claims == nil || claims.Role != domain.RoleOwner {
		t.Fatalf("unexpected claims %+v", claims)
	}
}
