package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

var testAdmin = &domain.User{ID: "a1", Role: domain.RoleAdmin}

func TestAdminHandler_VerifyUser(t *testing.T) {
	e := newTestEcho()
	stub := &stubAdminService{verified: map[string]bool{}}
	h := NewAdminHandler(stub, nil)

	for _, tt := range []struct {
		body   string
		status int
	}{
		{`{"verified":true}`, http.StatusNoContent},
		{`{}`, http.StatusBadRequest},
	} {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u1/verify", strings.NewReader(tt.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("u1")
		if err := asUser(testAdmin, h.VerifyUser)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.body, tt.status, rec.Code)
		}
	}
	if !stub.verified["u1"] {
		t.Fatal("user should be verified")
	}
}

func TestAdminHandler_DeleteAdminRefused(t *testing.T) {
	e := newTestEcho()
	h := NewAdminHandler(&stubAdminService{
		deleteFn: func(ctx context.Context, actor *domain.User, id string) error {
			return domain.ErrAdminUndeletable
		},
	}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/a2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := asUser(testAdmin, h.DeleteUser)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminHandler_Users_EmptyPage(t *testing.T) {
	e := newTestEcho()
	h := NewAdminHandler(&stubAdminService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?page=abc", nil)
	rec := httptest.NewRecorder()
	if err := h.Users(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) || !strings.Contains(rec.Body.String(), `"page":1`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
