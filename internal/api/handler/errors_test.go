package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pawhaven/adoption-api/internal/api/middleware"
	"github.com/pawhaven/adoption-api/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		code   int
		msg    string
		mapped bool
	}{
		{fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input: email is not valid", true},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials", true},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden", true},
		{fmt.Errorf("find pet: %w", domain.ErrPetNotFound), http.StatusNotFound, "pet not found", true},
		{domain.ErrChatNotFound, http.StatusNotFound, "chat not found", true},
		{domain.ErrFavoriteExists, http.StatusConflict, "pet already in favorites", true},
		{domain.ErrAdoptionExists, http.StatusConflict, domain.ErrAdoptionExists.Error(), true},
		{domain.ErrAdminUndeletable, http.StatusForbidden, domain.ErrAdminUndeletable.Error(), true},
		{errors.New("connection reset"), 0, "", false},
	}

	for _, tt := range tests {
		code, msg, ok := StatusFor(tt.err)
		if code != tt.code || msg != tt.msg || ok != tt.mapped {
			t.Errorf("StatusFor(%v) = %d %q %v, want %d %q %v", tt.err, code, msg, ok, tt.code, tt.msg, tt.mapped)
		}
	}
}

func TestPage_EchoesForwardedIdentity(t *testing.T) {
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserRole, domain.RoleOwner)
	rec := httptest.NewRecorder()

	if err := Page(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := `{"page":"/dashboard","user_id":"u1","role":"OWNER"}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("expected %s, got %s", want, rec.Body.String())
	}
}
